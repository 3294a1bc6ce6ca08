package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/openclause/clauseguard/internal/model"
)

// recordEnvelope is the JSON shape extraction models are instructed to return.
type recordEnvelope struct {
	Obligations []obligationJSON `json:"obligations"`
	RiskFlags   []riskJSON       `json:"risk_flags"`
	Notes       string           `json:"extraction_notes"`
}

type obligationJSON struct {
	ID             string `json:"id"`
	Party          string `json:"party"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	SourceText     string `json:"source_text"`
	SourceLocation string `json:"source_location"`
}

type riskJSON struct {
	ID             string `json:"id"`
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Title          string `json:"title"`
	SourceText     string `json:"source_text"`
	SourceLocation string `json:"source_location"`
}

// Models often wrap their JSON answer in a fenced markdown block.
var fencedJSONRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ParseRecords decodes an extraction response into candidate records.
// A fenced markdown block around the JSON is tolerated. Records missing an
// ID get a generated one. Structurally invalid records are dropped and
// reported in warnings; they never fail the whole response. An empty claimed
// source text is kept: it resolves to a flagged outcome downstream.
func ParseRecords(response, locationHint string) ([]model.CandidateRecord, []string, error) {
	payload := response
	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		payload = m[1]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil, fmt.Errorf("empty extraction response")
	}

	var envelope recordEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, nil, fmt.Errorf("decode extraction response: %w", err)
	}

	var records []model.CandidateRecord
	var warnings []string
	if envelope.Notes != "" {
		warnings = append(warnings, envelope.Notes)
	}

	for _, o := range envelope.Obligations {
		rec := model.CandidateRecord{
			ID:                o.ID,
			Kind:              model.KindObligation,
			Party:             o.Party,
			Category:          o.Type,
			Description:       o.Description,
			ClaimedSourceText: o.SourceText,
			ClaimedLocation:   pickLocation(o.SourceLocation, locationHint),
		}
		records, warnings = appendRecord(records, warnings, rec)
	}

	for _, r := range envelope.RiskFlags {
		rec := model.CandidateRecord{
			ID:                r.ID,
			Kind:              model.KindRiskFlag,
			Category:          r.Category,
			Severity:          strings.ToLower(r.Severity),
			Description:       r.Title,
			ClaimedSourceText: r.SourceText,
			ClaimedLocation:   pickLocation(r.SourceLocation, locationHint),
		}
		records, warnings = appendRecord(records, warnings, rec)
	}

	return records, warnings, nil
}

func appendRecord(records []model.CandidateRecord, warnings []string, rec model.CandidateRecord) ([]model.CandidateRecord, []string) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := rec.Validate(); err != nil {
		warnings = append(warnings, fmt.Sprintf("dropped record %s: %v", rec.ID, err))
		return records, warnings
	}
	return append(records, rec), warnings
}

func pickLocation(fromModel, hint string) string {
	if fromModel != "" {
		return fromModel
	}
	return hint
}
