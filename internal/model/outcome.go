package model

// MatchResult is the fuzzy matcher's best-aligned span for one claimed quote.
// Offsets point into the original, non-normalized document text.
type MatchResult struct {
	Start      int     `json:"start"`           // Byte offset of the span start
	End        int     `json:"end"`             // Byte offset one past the span end
	Similarity float64 `json:"similarity"`      // Ratio in [0,1]
	Matched    string  `json:"matched_text"`    // The document substring that matched
}

// VerificationStatus is the outcome class of source-text verification
type VerificationStatus string

const (
	StatusExact   VerificationStatus = "exact"   // Similarity at or above the high threshold
	StatusLikely  VerificationStatus = "likely"  // Similarity in the middle band
	StatusFlagged VerificationStatus = "flagged" // Unverified; possible hallucination
)

// VerificationOutcome is the verifier's result for a single record.
// Match is nil when no candidate span exists at all (empty claimed text).
type VerificationOutcome struct {
	Status   VerificationStatus `json:"status"`
	Match    *MatchResult       `json:"match,omitempty"`
	Line     int                `json:"line,omitempty"`     // 1-based line of the match in the document
	Location string             `json:"location,omitempty"` // Resolved location, hint-aware
	Issues   []string           `json:"issues,omitempty"`   // Warnings accumulated during verification
}

// Verified reports whether the claimed quote was found in the document.
func (o *VerificationOutcome) Verified() bool {
	return o.Status == StatusExact || o.Status == StatusLikely
}

// Routing is the triage decision for a scored record
type Routing string

const (
	RouteAutoInclude Routing = "auto_include" // Safe to include without review
	RouteTagVerify   Routing = "tag_verify"   // Include but tag for verification
	RouteHumanReview Routing = "human_review" // Requires a human decision
)

// ScoredRecord is a candidate record augmented with its verification outcome,
// confidence and routing decision. Routing is a deterministic pure function of
// (outcome, severity, confidence); it never depends on processing order.
type ScoredRecord struct {
	Record     CandidateRecord     `json:"record"`
	Outcome    VerificationOutcome `json:"outcome"`
	Confidence float64             `json:"confidence"` // In [0,1]
	Routing    Routing             `json:"routing"`
}
