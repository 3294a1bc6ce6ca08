package audit

import (
	"testing"

	"github.com/openclause/clauseguard/internal/model"
)

func systemRecord(id string, kind model.RecordKind, party, source string) model.ScoredRecord {
	return model.ScoredRecord{
		Record: model.CandidateRecord{
			ID:                id,
			Kind:              kind,
			Party:             party,
			ClaimedSourceText: source,
		},
	}
}

func TestCompare_PerfectMatch(t *testing.T) {
	system := []model.ScoredRecord{
		systemRecord("s1", model.KindObligation, "Tenant", "Tenant shall pay rent on the first of each month"),
		systemRecord("s2", model.KindRiskFlag, "", "This agreement renews automatically unless cancelled"),
	}
	truth := []model.CandidateRecord{
		{ID: "g1", Kind: model.KindObligation, Party: "Tenant", ClaimedSourceText: "Tenant shall pay rent on the first of each month"},
		{ID: "g2", Kind: model.KindRiskFlag, ClaimedSourceText: "This agreement renews automatically unless cancelled"},
	}

	c := Compare(system, truth, 0)

	if c.Obligations.TruePositives != 1 || c.Obligations.FalsePositives != 0 || c.Obligations.FalseNegatives != 0 {
		t.Errorf("Unexpected obligation metrics: %+v", c.Obligations)
	}
	if c.Obligations.Precision != 1.0 || c.Obligations.Recall != 1.0 || c.Obligations.F1 != 1.0 {
		t.Errorf("Expected perfect obligation scores, got %+v", c.Obligations)
	}
	if c.RiskFlags.TruePositives != 1 {
		t.Errorf("Expected risk flag match, got %+v", c.RiskFlags)
	}
	if c.OverallF1 != 1.0 {
		t.Errorf("Expected overall F1 1.0, got %f", c.OverallF1)
	}
}

func TestCompare_FalsePositiveAndNegative(t *testing.T) {
	system := []model.ScoredRecord{
		systemRecord("s1", model.KindObligation, "Tenant", "Tenant shall pay rent on the first of each month"),
		systemRecord("s2", model.KindObligation, "Landlord", "completely unrelated fabricated obligation text here"),
	}
	truth := []model.CandidateRecord{
		{ID: "g1", Kind: model.KindObligation, Party: "Tenant", ClaimedSourceText: "Tenant shall pay rent on the first of each month"},
		{ID: "g2", Kind: model.KindObligation, Party: "Tenant", ClaimedSourceText: "Tenant shall maintain renter's insurance during the term"},
	}

	c := Compare(system, truth, 0)

	if c.Obligations.TruePositives != 1 {
		t.Errorf("Expected 1 true positive, got %d", c.Obligations.TruePositives)
	}
	if c.Obligations.FalsePositives != 1 {
		t.Errorf("Expected 1 false positive, got %d", c.Obligations.FalsePositives)
	}
	if c.Obligations.FalseNegatives != 1 {
		t.Errorf("Expected 1 false negative, got %d", c.Obligations.FalseNegatives)
	}
	if c.Obligations.Precision != 0.5 || c.Obligations.Recall != 0.5 {
		t.Errorf("Expected precision and recall 0.5, got %+v", c.Obligations)
	}

	// TP+FP covers the system records, TP+FN covers the ground truth
	if c.Obligations.TruePositives+c.Obligations.FalsePositives != 2 {
		t.Error("TP+FP should equal the system record count")
	}
	if c.Obligations.TruePositives+c.Obligations.FalseNegatives != 2 {
		t.Error("TP+FN should equal the ground-truth record count")
	}
}

func TestCompare_KindsNeverCross(t *testing.T) {
	system := []model.ScoredRecord{
		systemRecord("s1", model.KindRiskFlag, "Tenant", "Tenant shall pay rent on the first of each month"),
	}
	truth := []model.CandidateRecord{
		{ID: "g1", Kind: model.KindObligation, Party: "Tenant", ClaimedSourceText: "Tenant shall pay rent on the first of each month"},
	}

	c := Compare(system, truth, 0)

	if c.RiskFlags.TruePositives != 0 {
		t.Errorf("Risk flag matched an obligation: %+v", c.RiskFlags)
	}
	if c.Obligations.FalseNegatives != 1 {
		t.Errorf("Expected the obligation to be a miss, got %+v", c.Obligations)
	}
}

func TestCompare_TruthConsumedOnce(t *testing.T) {
	// Two identical system records cannot both claim one truth record
	system := []model.ScoredRecord{
		systemRecord("s1", model.KindObligation, "Tenant", "Tenant shall pay rent on the first of each month"),
		systemRecord("s2", model.KindObligation, "Tenant", "Tenant shall pay rent on the first of each month"),
	}
	truth := []model.CandidateRecord{
		{ID: "g1", Kind: model.KindObligation, Party: "Tenant", ClaimedSourceText: "Tenant shall pay rent on the first of each month"},
	}

	c := Compare(system, truth, 0)

	if c.Obligations.TruePositives != 1 || c.Obligations.FalsePositives != 1 {
		t.Errorf("Expected exactly one truth assignment, got %+v", c.Obligations)
	}
}

func TestCompare_Empty(t *testing.T) {
	c := Compare(nil, nil, 0)

	if c.Obligations.TruePositives != 0 || c.RiskFlags.TruePositives != 0 {
		t.Errorf("Expected zeroed metrics, got %+v", c)
	}
	if len(c.Matches) != 0 {
		t.Errorf("Expected no matches, got %v", c.Matches)
	}
}
