package model

import "time"

// Report is the complete analysis result for one document.
// This is plain structured data; persistence formats beyond JSON are the
// caller's concern.
type Report struct {
	Source      string    `json:"source"`                // File path or URL analyzed
	Fingerprint string    `json:"fingerprint"`           // SHA-256 of the document text
	AnalyzedAt  time.Time `json:"analyzed_at"`
	Lines       int       `json:"lines"`                 // Line count of the document
	Bytes       int       `json:"bytes"`                 // Size of the document text

	Records []ScoredRecord `json:"records"` // In input order
	Summary RunSummary     `json:"summary"`

	Extraction *ExtractionMeta `json:"extraction,omitempty"` // Present when the LLM collaborator ran
}

// ExtractionMeta describes the upstream LLM extraction pass.
type ExtractionMeta struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Chunks     int    `json:"chunks"`
	TokensUsed int    `json:"tokens_used,omitempty"`
	Notes      string `json:"notes,omitempty"`
}
