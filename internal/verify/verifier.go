package verify

import (
	"context"
	"fmt"
	"sync"

	"github.com/openclause/clauseguard/internal/match"
	"github.com/openclause/clauseguard/internal/model"
)

// Verifier checks candidate records against a single document and classifies
// each claimed quote as exact, likely or flagged. A verifier is tied to one
// document; build a new one per document.
type Verifier struct {
	index      *match.Index
	doc        *model.Document
	thresholds model.ThresholdConfig
	maxWorkers int
}

// NewVerifier builds a verifier over the given document. The document is
// indexed once up front; verifying individual records is then cheap.
func NewVerifier(doc *model.Document, thresholds model.ThresholdConfig, maxWorkers int) (*Verifier, error) {
	if doc == nil {
		return nil, model.ErrNilDocument
	}
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	return &Verifier{
		index:      match.NewIndex(doc),
		doc:        doc,
		thresholds: thresholds,
		maxWorkers: maxWorkers,
	}, nil
}

// Verify classifies one record's claimed source text against the document.
// It never returns an error: malformed records and empty claims resolve to
// a flagged outcome with the reason recorded in Issues.
func (v *Verifier) Verify(record *model.CandidateRecord) model.VerificationOutcome {
	outcome := model.VerificationOutcome{Status: model.StatusFlagged}

	if err := record.Validate(); err != nil {
		outcome.Issues = append(outcome.Issues, err.Error())
		return outcome
	}

	result := v.index.FindBestMatch(record.ClaimedSourceText)
	if result == nil {
		outcome.Issues = append(outcome.Issues, "claimed source text is empty")
		return outcome
	}
	outcome.Match = result

	switch {
	case result.Similarity >= v.thresholds.THigh:
		outcome.Status = model.StatusExact
	case result.Similarity >= v.thresholds.TLow:
		outcome.Status = model.StatusLikely
	}

	if outcome.Verified() {
		outcome.Line = v.doc.LineAt(result.Start)
		outcome.Location = fmt.Sprintf("line %d", outcome.Line)
		return outcome
	}

	outcome.Issues = append(outcome.Issues,
		fmt.Sprintf("claimed text not found in document (best similarity %.2f)", result.Similarity))
	if record.ClaimedLocation != "" {
		// The location hint comes from the extractor and is never trusted
		// on its own; record it so a reviewer knows where to look.
		outcome.Issues = append(outcome.Issues,
			fmt.Sprintf("extractor claimed location %q could not be confirmed", record.ClaimedLocation))
	}
	return outcome
}

// VerifyAll verifies all records concurrently. The result slice preserves
// input order: results[i] always corresponds to records[i]. A record that
// fails verification never aborts the batch.
func (v *Verifier) VerifyAll(ctx context.Context, records []model.CandidateRecord) ([]model.VerificationOutcome, error) {
	if len(records) == 0 {
		return []model.VerificationOutcome{}, nil
	}

	results := make([]model.VerificationOutcome, len(records))
	var wg sync.WaitGroup

	// Semaphore bounds concurrent verifications
	semaphore := make(chan struct{}, v.maxWorkers)

	for i := range records {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.VerificationOutcome{
					Status: model.StatusFlagged,
					Issues: []string{"context cancelled"},
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = v.Verify(&records[idx])
		}(i)
	}

	wg.Wait()
	return results, nil
}
