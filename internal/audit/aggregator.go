package audit

import (
	"github.com/openclause/clauseguard/internal/model"
)

// Summarize reduces scored records into a RunSummary. The reduction is a
// pure function of counts and sums; input order only affects the order of
// the HumanReview ID list, which mirrors it.
func Summarize(scored []model.ScoredRecord) model.RunSummary {
	summary := model.RunSummary{
		Total:     len(scored),
		ByKind:    make(map[model.RecordKind]int),
		ByStatus:  make(map[model.VerificationStatus]int),
		ByRouting: make(map[model.Routing]int),
	}

	var confidenceSum float64
	matched := 0
	exact := 0

	for _, s := range scored {
		summary.ByKind[s.Record.Kind]++
		summary.ByStatus[s.Outcome.Status]++
		summary.ByRouting[s.Routing]++
		confidenceSum += s.Confidence

		if s.Outcome.Verified() {
			matched++
		}
		if s.Outcome.Status == model.StatusExact {
			exact++
		}
		if s.Routing == model.RouteHumanReview {
			summary.HumanReview = append(summary.HumanReview, s.Record.ID)
		}
	}

	if summary.Total > 0 {
		summary.MatchRate = float64(matched) / float64(summary.Total) * 100
		summary.ExactRate = float64(exact) / float64(summary.Total) * 100
		summary.AvgConfidence = confidenceSum / float64(summary.Total)
	}
	return summary
}
