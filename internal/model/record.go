package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is returned when a candidate record fails boundary validation.
var ErrInvalidRecord = errors.New("invalid candidate record")

// RecordKind classifies a candidate record
type RecordKind string

const (
	KindObligation RecordKind = "obligation" // A duty or commitment one party owes
	KindRiskFlag   RecordKind = "risk_flag"  // A clause flagged as potentially risky
)

// Recognized severity levels. Severity is an opaque string to the core,
// but "high" triggers stricter routing.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// CandidateRecord is one proposed obligation or risk flag awaiting verification.
// Records are produced by the extraction collaborator and are read-only inside
// the core; verification augments them into ScoredRecords, never in place.
type CandidateRecord struct {
	ID                string     `json:"id" validate:"required"`
	Kind              RecordKind `json:"kind" validate:"required,oneof=obligation risk_flag"`
	Party             string     `json:"party,omitempty"`              // Who carries the obligation
	Category          string     `json:"category,omitempty"`           // e.g. payment, deadline, restriction
	Severity          string     `json:"severity,omitempty"`           // Externally assigned stakes level
	Description       string     `json:"description,omitempty"`        // Plain-language explanation
	ClaimedSourceText string     `json:"claimed_source_text"`          // Quote asserted to appear verbatim
	ClaimedLocation   string     `json:"claimed_location,omitempty"`   // Advisory hint only, never trusted
}

var recordValidator = validator.New()

// Validate checks that the record carries the fields the core requires.
// An empty claimed source text is not an error; it resolves to a flagged
// outcome during verification.
func (r *CandidateRecord) Validate() error {
	if err := recordValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// IsHighSeverity reports whether the record carries the high stakes level.
func (r *CandidateRecord) IsHighSeverity() bool {
	return r.Severity == SeverityHigh
}
