package model

// RunSummary aggregates per-record outcomes for one verification run.
// It is derived data: regenerable at any time from the scored records
// and never independently mutated.
type RunSummary struct {
	Total int `json:"total"`

	ByKind    map[RecordKind]int         `json:"by_kind"`
	ByStatus  map[VerificationStatus]int `json:"by_status"`
	ByRouting map[Routing]int            `json:"by_routing"`

	// MatchRate is the fraction of records with status exact or likely,
	// expressed as a percentage of the total. ExactRate counts exact only.
	MatchRate float64 `json:"match_rate_pct"`
	ExactRate float64 `json:"exact_rate_pct"`

	AvgConfidence float64 `json:"avg_confidence"`

	// HumanReview lists the IDs of records routed to human review,
	// in input order.
	HumanReview []string `json:"human_review,omitempty"`
}
