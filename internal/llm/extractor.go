package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/openclause/clauseguard/internal/extract"
	"github.com/openclause/clauseguard/internal/model"
)

// Extractor runs a document through the extraction provider chunk by chunk
// and merges the proposed records.
type Extractor struct {
	provider Provider
	chunker  *extract.Chunker
	limiter  *rate.Limiter
	config   Config
}

// NewExtractor creates an extractor around a provider. A nil provider is
// allowed; extraction then returns no records.
func NewExtractor(provider Provider, config Config) *Extractor {
	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return &Extractor{
		provider: provider,
		chunker:  extract.NewChunker(extract.DefaultChunkSize, extract.DefaultOverlap),
		limiter:  limiter,
		config:   config,
	}
}

// ExtractRecords proposes candidate records for the document. Chunks are
// processed sequentially under the provider rate limit; a chunk whose
// response cannot be parsed is reported in the meta notes and skipped,
// it never fails the whole document.
func (e *Extractor) ExtractRecords(ctx context.Context, doc *model.Document) ([]model.CandidateRecord, *model.ExtractionMeta, error) {
	if doc == nil {
		return nil, nil, model.ErrNilDocument
	}
	if e.provider == nil {
		return nil, nil, nil
	}

	chunks := e.chunker.Chunk(doc.Text())
	meta := &model.ExtractionMeta{
		Provider: e.provider.Name(),
		Model:    e.config.Model,
		Chunks:   len(chunks),
	}

	var records []model.CandidateRecord
	var notes []string

	for _, chunk := range chunks {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, err := e.provider.Extract(ctx, ExtractRequest{
			ChunkText:   chunk.Text,
			Location:    chunk.Location(),
			ChunkIndex:  chunk.Index,
			TotalChunks: chunk.Total,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			notes = append(notes, fmt.Sprintf("chunk %d/%d failed: %v", chunk.Index+1, chunk.Total, err))
			continue
		}

		meta.TokensUsed += resp.TokensUsed
		if resp.Model != "" {
			meta.Model = resp.Model
		}

		parsed, warnings, err := extract.ParseRecords(resp.Content, chunk.Location())
		if err != nil {
			notes = append(notes, fmt.Sprintf("chunk %d/%d unparseable: %v", chunk.Index+1, chunk.Total, err))
			continue
		}
		notes = append(notes, warnings...)
		records = append(records, parsed...)
	}

	meta.Notes = strings.Join(notes, "; ")
	return dedupeRecords(records), meta, nil
}

// dedupeRecords drops records whose kind and claimed text duplicate an
// earlier one. Overlapping chunks routinely produce such duplicates.
func dedupeRecords(records []model.CandidateRecord) []model.CandidateRecord {
	seen := make(map[string]bool)
	var unique []model.CandidateRecord

	for _, rec := range records {
		key := string(rec.Kind) + "|" + strings.ToLower(strings.TrimSpace(rec.ClaimedSourceText))
		if rec.ClaimedSourceText == "" {
			// Empty claims are kept individually; they flag downstream
			unique = append(unique, rec)
			continue
		}
		if !seen[key] {
			seen[key] = true
			unique = append(unique, rec)
		}
	}
	return unique
}
