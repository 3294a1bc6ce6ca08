package score

import (
	"fmt"

	"github.com/openclause/clauseguard/internal/model"
)

// Scorer converts verification outcomes into confidence values and routing
// decisions. Routing is a pure function of (outcome, severity, confidence).
type Scorer struct {
	thresholds model.ThresholdConfig
}

// NewScorer creates a scorer with the given thresholds.
func NewScorer(thresholds model.ThresholdConfig) *Scorer {
	return &Scorer{thresholds: thresholds}
}

// Score combines a record and its verification outcome into a ScoredRecord.
// Confidence is the match similarity ratio, 0 when no match exists.
func (s *Scorer) Score(record model.CandidateRecord, outcome model.VerificationOutcome) model.ScoredRecord {
	confidence := 0.0
	if outcome.Match != nil {
		confidence = outcome.Match.Similarity
	}
	return model.ScoredRecord{
		Record:     record,
		Outcome:    outcome,
		Confidence: confidence,
		Routing:    s.route(&record, &outcome, confidence),
	}
}

// ScoreAll pairs records with their outcomes positionally.
func (s *Scorer) ScoreAll(records []model.CandidateRecord, outcomes []model.VerificationOutcome) ([]model.ScoredRecord, error) {
	if len(records) != len(outcomes) {
		return nil, fmt.Errorf("record/outcome count mismatch: %d vs %d", len(records), len(outcomes))
	}
	scored := make([]model.ScoredRecord, len(records))
	for i := range records {
		scored[i] = s.Score(records[i], outcomes[i])
	}
	return scored, nil
}

// route applies the triage decision table. Two invariants hold regardless of
// threshold tuning: a flagged record always routes to human review, and a
// high-severity record never auto-includes.
func (s *Scorer) route(record *model.CandidateRecord, outcome *model.VerificationOutcome, confidence float64) model.Routing {
	switch outcome.Status {
	case model.StatusFlagged:
		return model.RouteHumanReview
	case model.StatusLikely:
		return model.RouteTagVerify
	}

	// Exact outcomes auto-include only above the severity-adjusted bar.
	// High stakes raise the bar; they are also an unconditional stop on
	// auto-inclusion so retuning the penalty cannot loosen the guarantee.
	bar := s.thresholds.THigh
	if record.IsHighSeverity() {
		bar += s.thresholds.SeverityPenalty
	}
	if record.IsHighSeverity() || confidence < bar {
		return model.RouteTagVerify
	}
	return model.RouteAutoInclude
}
