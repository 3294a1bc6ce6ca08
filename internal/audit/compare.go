package audit

import (
	"fmt"
	"strings"

	"github.com/openclause/clauseguard/internal/match"
	"github.com/openclause/clauseguard/internal/model"
)

// DefaultMatchThreshold is the minimum weighted score for a system record
// to count as matching a ground-truth record.
const DefaultMatchThreshold = 0.6

// exactMatchScore separates exact from partial ground-truth matches.
const exactMatchScore = 0.85

// Metrics holds precision/recall figures for one record kind.
type Metrics struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// RecordMatch pairs one system record with its best ground-truth candidate.
type RecordMatch struct {
	SystemID  string  `json:"system_id"`
	TruthID   string  `json:"truth_id,omitempty"`
	MatchType string  `json:"match_type"` // "exact", "partial" or "none"
	Score     float64 `json:"score"`
	Details   string  `json:"details,omitempty"`
}

// Comparison is the result of evaluating a run against ground truth.
type Comparison struct {
	Obligations Metrics       `json:"obligations"`
	RiskFlags   Metrics       `json:"risk_flags"`
	Matches     []RecordMatch `json:"matches"`
	OverallF1   float64       `json:"overall_f1"`
}

// Compare evaluates the records of a run against ground-truth annotations.
// Records are compared within their kind only; a system obligation never
// matches a ground-truth risk flag.
func Compare(system []model.ScoredRecord, truth []model.CandidateRecord, threshold float64) Comparison {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	sysByKind := make(map[model.RecordKind][]model.CandidateRecord)
	for _, s := range system {
		sysByKind[s.Record.Kind] = append(sysByKind[s.Record.Kind], s.Record)
	}
	truthByKind := make(map[model.RecordKind][]model.CandidateRecord)
	for _, tr := range truth {
		truthByKind[tr.Kind] = append(truthByKind[tr.Kind], tr)
	}

	oblMatches, oblMetrics := matchKind(sysByKind[model.KindObligation], truthByKind[model.KindObligation], threshold)
	riskMatches, riskMetrics := matchKind(sysByKind[model.KindRiskFlag], truthByKind[model.KindRiskFlag], threshold)

	c := Comparison{
		Obligations: oblMetrics,
		RiskFlags:   riskMetrics,
		Matches:     append(oblMatches, riskMatches...),
		OverallF1:   (oblMetrics.F1 + riskMetrics.F1) / 2,
	}
	return c
}

// matchKind greedily assigns each system record its best-scoring unmatched
// ground-truth record. Ground truth is consumed at most once.
func matchKind(system, truth []model.CandidateRecord, threshold float64) ([]RecordMatch, Metrics) {
	matches := make([]RecordMatch, 0, len(system))
	matchedTruth := make(map[string]bool)

	for _, sys := range system {
		bestScore := 0.0
		bestID := ""
		for _, gt := range truth {
			if matchedTruth[gt.ID] {
				continue
			}
			score := pairScore(&sys, &gt)
			if score > bestScore {
				bestScore = score
				bestID = gt.ID
			}
		}

		if bestScore >= threshold {
			matchType := "partial"
			if bestScore >= exactMatchScore {
				matchType = "exact"
			}
			matchedTruth[bestID] = true
			matches = append(matches, RecordMatch{
				SystemID:  sys.ID,
				TruthID:   bestID,
				MatchType: matchType,
				Score:     bestScore,
				Details:   fmt.Sprintf("matched %s (score %.2f)", bestID, bestScore),
			})
		} else {
			matches = append(matches, RecordMatch{
				SystemID:  sys.ID,
				MatchType: "none",
				Score:     bestScore,
				Details:   fmt.Sprintf("no match (best score %.2f)", bestScore),
			})
		}
	}

	tp := 0
	for _, m := range matches {
		if m.MatchType != "none" {
			tp++
		}
	}
	metrics := Metrics{
		TruePositives:  tp,
		FalsePositives: len(system) - tp,
		FalseNegatives: len(truth) - len(matchedTruth),
	}
	if len(system) > 0 {
		metrics.Precision = float64(tp) / float64(len(system))
	}
	if len(truth) > 0 {
		metrics.Recall = float64(tp) / float64(len(truth))
	}
	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}
	return matches, metrics
}

// pairScore weights the claimed source text most heavily; classification
// fields refine rather than dominate the score.
func pairScore(sys, gt *model.CandidateRecord) float64 {
	sourceSim := textSimilarity(sys.ClaimedSourceText, gt.ClaimedSourceText)
	descSim := textSimilarity(sys.Description, gt.Description)

	partyMatch := 0.0
	if strings.EqualFold(sys.Party, gt.Party) {
		partyMatch = 1.0
	}
	categoryMatch := 0.5
	if strings.EqualFold(sys.Category, gt.Category) {
		categoryMatch = 1.0
	}

	return sourceSim*0.5 + descSim*0.25 + partyMatch*0.15 + categoryMatch*0.1
}

func textSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	return match.Similarity(a, b)
}
