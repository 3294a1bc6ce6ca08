package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/openclause/clauseguard/internal/extract"
	"github.com/openclause/clauseguard/internal/model"
)

// newTestChunker forces small chunks so multi-chunk behavior is testable.
func newTestChunker(t *testing.T) *extract.Chunker {
	t.Helper()
	return extract.NewChunker(120, 20)
}

func multiChunkText() string {
	return "1. RENT. Tenant shall pay rent of $2,500 on the first day of each calendar month without deduction or setoff.\n\n" +
		"2. MAINTENANCE. Landlord shall maintain the premises in good repair and comply with all applicable housing codes."
}

// mockProvider returns canned responses keyed by chunk index.
type mockProvider struct {
	responses map[int]string
	errs      map[int]error
	calls     int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	m.calls++
	if err, ok := m.errs[req.ChunkIndex]; ok {
		return nil, err
	}
	content, ok := m.responses[req.ChunkIndex]
	if !ok {
		content = `{"obligations": [], "risk_flags": []}`
	}
	return &ExtractResponse{
		Content:    content,
		Model:      "mock-model",
		TokensUsed: 10,
	}, nil
}

func obligationResponse(sourceText string) string {
	return fmt.Sprintf(`{"obligations": [{"party": "Tenant", "type": "payment", "description": "Pay rent", "source_text": %q, "source_location": "1. RENT"}], "risk_flags": []}`, sourceText)
}

func TestExtractor_ExtractRecords(t *testing.T) {
	provider := &mockProvider{
		responses: map[int]string{
			0: obligationResponse("Tenant shall pay rent of $2,500"),
		},
	}
	extractor := NewExtractor(provider, Config{Model: "mock-model"})

	doc := model.NewDocument("lease.txt", "1. RENT. Tenant shall pay rent of $2,500.")
	records, meta, err := extractor.ExtractRecords(context.Background(), doc)
	if err != nil {
		t.Fatalf("ExtractRecords failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Kind != model.KindObligation {
		t.Errorf("Expected obligation kind, got %s", records[0].Kind)
	}
	if records[0].ClaimedSourceText != "Tenant shall pay rent of $2,500" {
		t.Errorf("Unexpected claimed text: %s", records[0].ClaimedSourceText)
	}

	if meta.Provider != "mock" {
		t.Errorf("Expected provider mock, got %s", meta.Provider)
	}
	if meta.Model != "mock-model" {
		t.Errorf("Expected model mock-model, got %s", meta.Model)
	}
	if meta.Chunks != 1 {
		t.Errorf("Expected 1 chunk, got %d", meta.Chunks)
	}
	if meta.TokensUsed != 10 {
		t.Errorf("Expected 10 tokens, got %d", meta.TokensUsed)
	}
}

func TestExtractor_NilProvider(t *testing.T) {
	extractor := NewExtractor(nil, Config{})

	doc := model.NewDocument("lease.txt", "Tenant shall pay rent.")
	records, meta, err := extractor.ExtractRecords(context.Background(), doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if records != nil || meta != nil {
		t.Error("Expected extraction to be disabled without a provider")
	}
}

func TestExtractor_NilDocument(t *testing.T) {
	extractor := NewExtractor(&mockProvider{}, Config{})

	_, _, err := extractor.ExtractRecords(context.Background(), nil)
	if !errors.Is(err, model.ErrNilDocument) {
		t.Errorf("Expected ErrNilDocument, got %v", err)
	}
}

func TestExtractor_ChunkFailureIsTolerated(t *testing.T) {
	provider := &mockProvider{
		responses: map[int]string{
			0: obligationResponse("Tenant shall pay rent"),
		},
		errs: map[int]error{
			1: errors.New("upstream timeout"),
		},
	}
	extractor := NewExtractor(provider, Config{})
	extractor.chunker = newTestChunker(t)

	doc := model.NewDocument("lease.txt", multiChunkText())
	records, meta, err := extractor.ExtractRecords(context.Background(), doc)
	if err != nil {
		t.Fatalf("ExtractRecords failed: %v", err)
	}

	if len(records) != 1 {
		t.Errorf("Expected 1 record from the surviving chunk, got %d", len(records))
	}
	if !strings.Contains(meta.Notes, "failed") {
		t.Errorf("Expected the failed chunk in the notes, got %q", meta.Notes)
	}
}

func TestExtractor_UnparseableChunkIsSkipped(t *testing.T) {
	provider := &mockProvider{
		responses: map[int]string{
			0: "I could not find any clauses, sorry!",
			1: obligationResponse("Landlord shall maintain the premises"),
		},
	}
	extractor := NewExtractor(provider, Config{})
	extractor.chunker = newTestChunker(t)

	doc := model.NewDocument("lease.txt", multiChunkText())
	records, meta, err := extractor.ExtractRecords(context.Background(), doc)
	if err != nil {
		t.Fatalf("ExtractRecords failed: %v", err)
	}

	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
	if !strings.Contains(meta.Notes, "unparseable") {
		t.Errorf("Expected the unparseable chunk in the notes, got %q", meta.Notes)
	}
}

func TestExtractor_DeduplicatesAcrossChunks(t *testing.T) {
	// Overlapping chunks report the same clause twice
	provider := &mockProvider{
		responses: map[int]string{
			0: obligationResponse("Tenant shall pay rent of $2,500"),
			1: obligationResponse("Tenant shall pay rent of $2,500"),
		},
	}
	extractor := NewExtractor(provider, Config{})
	extractor.chunker = newTestChunker(t)

	doc := model.NewDocument("lease.txt", multiChunkText())
	records, _, err := extractor.ExtractRecords(context.Background(), doc)
	if err != nil {
		t.Fatalf("ExtractRecords failed: %v", err)
	}

	if len(records) != 1 {
		t.Errorf("Expected duplicates to collapse to 1 record, got %d", len(records))
	}
}

func TestExtractor_ContextCancellation(t *testing.T) {
	provider := &mockProvider{
		errs: map[int]error{0: context.Canceled},
	}
	extractor := NewExtractor(provider, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := model.NewDocument("lease.txt", "Tenant shall pay rent.")
	_, _, err := extractor.ExtractRecords(ctx, doc)
	if err == nil {
		t.Fatal("Expected error on cancelled context, got nil")
	}
}

func TestDedupeRecords_KeepsEmptyClaims(t *testing.T) {
	records := []model.CandidateRecord{
		{ID: "a", Kind: model.KindObligation, ClaimedSourceText: ""},
		{ID: "b", Kind: model.KindObligation, ClaimedSourceText: ""},
		{ID: "c", Kind: model.KindObligation, ClaimedSourceText: "Tenant shall pay rent"},
		{ID: "d", Kind: model.KindRiskFlag, ClaimedSourceText: "Tenant shall pay rent"},
	}

	unique := dedupeRecords(records)
	if len(unique) != 4 {
		t.Errorf("Expected 4 records (empty claims kept, kinds kept apart), got %d", len(unique))
	}
}
