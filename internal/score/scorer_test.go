package score

import (
	"testing"

	"github.com/openclause/clauseguard/internal/model"
)

func defaultScorer() *Scorer {
	return NewScorer(model.DefaultConfig().Thresholds)
}

func outcomeWith(status model.VerificationStatus, similarity float64) model.VerificationOutcome {
	o := model.VerificationOutcome{Status: status}
	if status != model.StatusFlagged || similarity > 0 {
		o.Match = &model.MatchResult{Start: 0, End: 10, Similarity: similarity, Matched: "stub"}
	}
	return o
}

func TestScore_RoutingTable(t *testing.T) {
	scorer := defaultScorer()

	tests := []struct {
		name       string
		status     model.VerificationStatus
		similarity float64
		severity   string
		want       model.Routing
	}{
		{"exact low severity", model.StatusExact, 1.0, model.SeverityLow, model.RouteAutoInclude},
		{"exact medium severity", model.StatusExact, 0.99, model.SeverityMedium, model.RouteAutoInclude},
		{"exact no severity", model.StatusExact, 1.0, "", model.RouteAutoInclude},
		{"exact high severity", model.StatusExact, 1.0, model.SeverityHigh, model.RouteTagVerify},
		{"likely low severity", model.StatusLikely, 0.85, model.SeverityLow, model.RouteTagVerify},
		{"likely high severity", model.StatusLikely, 0.85, model.SeverityHigh, model.RouteTagVerify},
		{"flagged low severity", model.StatusFlagged, 0.30, model.SeverityLow, model.RouteHumanReview},
		{"flagged high severity", model.StatusFlagged, 0.30, model.SeverityHigh, model.RouteHumanReview},
		{"flagged no match", model.StatusFlagged, 0, "", model.RouteHumanReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := model.CandidateRecord{
				ID:                "r1",
				Kind:              model.KindObligation,
				Severity:          tt.severity,
				ClaimedSourceText: "x",
			}
			scored := scorer.Score(record, outcomeWith(tt.status, tt.similarity))
			if scored.Routing != tt.want {
				t.Errorf("Expected routing %s, got %s", tt.want, scored.Routing)
			}
		})
	}
}

func TestScore_ConfidenceIsSimilarity(t *testing.T) {
	scorer := defaultScorer()
	record := model.CandidateRecord{ID: "r1", Kind: model.KindRiskFlag, ClaimedSourceText: "x"}

	scored := scorer.Score(record, outcomeWith(model.StatusLikely, 0.87))
	if scored.Confidence != 0.87 {
		t.Errorf("Expected confidence 0.87, got %f", scored.Confidence)
	}

	scored = scorer.Score(record, model.VerificationOutcome{Status: model.StatusFlagged})
	if scored.Confidence != 0 {
		t.Errorf("Expected confidence 0 without a match, got %f", scored.Confidence)
	}
}

func TestScore_HighSeverityNeverAutoIncludes(t *testing.T) {
	// Zeroed penalty must not loosen the guarantee
	scorer := NewScorer(model.ThresholdConfig{THigh: 0.98, TLow: 0.60, SeverityPenalty: 0})

	record := model.CandidateRecord{
		ID:                "r1",
		Kind:              model.KindRiskFlag,
		Severity:          model.SeverityHigh,
		ClaimedSourceText: "x",
	}
	for _, status := range []model.VerificationStatus{model.StatusExact, model.StatusLikely, model.StatusFlagged} {
		scored := scorer.Score(record, outcomeWith(status, 1.0))
		if scored.Routing == model.RouteAutoInclude {
			t.Errorf("High-severity record auto-included with outcome %s", status)
		}
	}
}

func TestScore_FlaggedNeverAutoIncludes(t *testing.T) {
	// Extreme tunings must not route flagged records anywhere but review
	for _, th := range []model.ThresholdConfig{
		{THigh: 0.98, TLow: 0.60, SeverityPenalty: 0.10},
		{THigh: 0.50, TLow: 0.01, SeverityPenalty: 0},
	} {
		scorer := NewScorer(th)
		record := model.CandidateRecord{ID: "r1", Kind: model.KindObligation, ClaimedSourceText: "x"}
		scored := scorer.Score(record, outcomeWith(model.StatusFlagged, 0.99))
		if scored.Routing != model.RouteHumanReview {
			t.Errorf("Flagged record routed to %s with thresholds %+v", scored.Routing, th)
		}
	}
}

func TestScoreAll(t *testing.T) {
	scorer := defaultScorer()

	records := []model.CandidateRecord{
		{ID: "r1", Kind: model.KindObligation, ClaimedSourceText: "a"},
		{ID: "r2", Kind: model.KindRiskFlag, Severity: model.SeverityHigh, ClaimedSourceText: "b"},
	}
	outcomes := []model.VerificationOutcome{
		outcomeWith(model.StatusExact, 1.0),
		outcomeWith(model.StatusExact, 1.0),
	}

	scored, err := scorer.ScoreAll(records, outcomes)
	if err != nil {
		t.Fatalf("ScoreAll failed: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("Expected 2 scored records, got %d", len(scored))
	}
	if scored[0].Record.ID != "r1" || scored[1].Record.ID != "r2" {
		t.Error("ScoreAll must preserve input order")
	}
	if scored[0].Routing != model.RouteAutoInclude {
		t.Errorf("Expected auto_include for r1, got %s", scored[0].Routing)
	}
	if scored[1].Routing != model.RouteTagVerify {
		t.Errorf("Expected tag_verify for high-severity r2, got %s", scored[1].Routing)
	}

	if _, err := scorer.ScoreAll(records, outcomes[:1]); err == nil {
		t.Error("Expected an error on record/outcome count mismatch")
	}
}

func TestScore_Deterministic(t *testing.T) {
	scorer := defaultScorer()
	record := model.CandidateRecord{ID: "r1", Kind: model.KindObligation, Severity: model.SeverityMedium, ClaimedSourceText: "x"}
	outcome := outcomeWith(model.StatusLikely, 0.75)

	first := scorer.Score(record, outcome)
	for i := 0; i < 5; i++ {
		again := scorer.Score(record, outcome)
		if again.Routing != first.Routing || again.Confidence != first.Confidence {
			t.Fatalf("Scoring not deterministic: %+v vs %+v", again, first)
		}
	}
}
