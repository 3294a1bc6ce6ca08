package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openclause/clauseguard/internal/audit"
	"github.com/openclause/clauseguard/internal/cache"
	"github.com/openclause/clauseguard/internal/extract"
	"github.com/openclause/clauseguard/internal/llm"
	"github.com/openclause/clauseguard/internal/model"
	"github.com/openclause/clauseguard/internal/score"
	"github.com/openclause/clauseguard/internal/verify"
)

// Pipeline orchestrates the complete analysis: load, extract, verify,
// score, aggregate, persist.
type Pipeline struct {
	fetcher   *Fetcher
	provider  llm.Provider // nil when extraction is disabled
	extractor *llm.Extractor
	scorer    *score.Scorer
	renderer  *Renderer
	cache     cache.Cache  // nil when caching is disabled
	store     *audit.Store // nil when run history is disabled
	logger    *zap.Logger
	config    *model.Config
}

// NewPipeline creates a pipeline from the given configuration. The caller
// owns the pipeline and must Close it to release the audit store.
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	llmConfig := llm.ConfigFromModel(cfg.LLM)
	provider, err := llm.NewProvider(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.RespectRobots, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	if cfg.HTTP.InsecureTLS {
		fetcher.AllowInsecureTLS()
	}

	var docCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			docCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			docCache = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
	}

	var store *audit.Store
	if cfg.Audit.DBPath != "" {
		store, err = audit.OpenStore(cfg.Audit.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
	}

	return &Pipeline{
		fetcher:   fetcher,
		provider:  provider,
		extractor: llm.NewExtractor(provider, llmConfig),
		scorer:    score.NewScorer(cfg.Thresholds),
		renderer:  NewRenderer(nil),
		cache:     docCache,
		store:     store,
		logger:    logger,
		config:    cfg,
	}, nil
}

// Close releases the audit store connection.
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Store exposes the audit history store; nil when history is disabled.
func (p *Pipeline) Store() *audit.Store {
	return p.store
}

// LoadDocument loads a contract document from a local path or URL.
// Fetched bodies are cached; local files are always re-read.
func (p *Pipeline) LoadDocument(ctx context.Context, source string) (*model.Document, error) {
	if !isURL(source) {
		return extract.LoadFile(source)
	}

	key := cache.DocumentKey(source)
	if p.cache != nil {
		if body, found := p.cache.Get(key); found {
			p.logger.Debug("document cache hit", zap.String("source", source))
			return extract.LoadHTML(source, string(body))
		}
	}

	result, err := p.fetcher.FetchWithRetry(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}

	var doc *model.Document
	if result.IsHTML() {
		doc, err = extract.LoadHTML(source, result.Body)
		if err != nil {
			return nil, err
		}
	} else {
		doc = model.NewDocument(source, result.Body)
	}

	if p.cache != nil && result.IsHTML() {
		if err := p.cache.Set(key, []byte(result.Body), p.config.Cache.TTL); err != nil {
			p.logger.Warn("document cache write failed", zap.Error(err))
		}
	}

	return doc, nil
}

// Analyze runs the full pipeline on one source: the extraction collaborator
// proposes candidate records and the core verifies them against the document.
// Requires a configured LLM provider.
func (p *Pipeline) Analyze(ctx context.Context, source string) (*model.Report, error) {
	if p.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured; use verify mode with a records file instead")
	}

	doc, err := p.LoadDocument(ctx, source)
	if err != nil {
		return nil, err
	}

	records, meta, err := p.extractRecords(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extract records: %w", err)
	}
	p.logger.Info("extraction complete",
		zap.String("source", source),
		zap.Int("records", len(records)),
		zap.Int("chunks", meta.Chunks))

	report, err := p.VerifyRecords(ctx, doc, records)
	if err != nil {
		return nil, err
	}
	report.Extraction = meta
	return report, nil
}

// VerifyRecords verifies externally supplied candidate records against a
// document and assembles the report. This is the LLM-free entry point.
func (p *Pipeline) VerifyRecords(ctx context.Context, doc *model.Document, records []model.CandidateRecord) (*model.Report, error) {
	verifier, err := verify.NewVerifier(doc, p.config.Thresholds, p.config.Concurrency.VerifyWorkers)
	if err != nil {
		return nil, fmt.Errorf("init verifier: %w", err)
	}

	outcomes, err := verifier.VerifyAll(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("verify records: %w", err)
	}
	scored, err := p.scorer.ScoreAll(records, outcomes)
	if err != nil {
		return nil, fmt.Errorf("score records: %w", err)
	}

	report := &model.Report{
		Source:      doc.Source(),
		Fingerprint: doc.Fingerprint(),
		AnalyzedAt:  time.Now().UTC(),
		Lines:       strings.Count(doc.Text(), "\n") + 1,
		Bytes:       doc.Len(),
		Records:     scored,
		Summary:     audit.Summarize(scored),
	}

	if p.store != nil {
		if err := p.store.SaveRun(report); err != nil {
			// History is best-effort; the report itself already succeeded
			p.logger.Warn("audit history write failed", zap.Error(err))
		}
	}

	return report, nil
}

// extractRecords runs the LLM extraction, serving repeat runs over the same
// document, provider and model from the cache.
func (p *Pipeline) extractRecords(ctx context.Context, doc *model.Document) ([]model.CandidateRecord, *model.ExtractionMeta, error) {
	key := cache.ExtractionKey(doc.Fingerprint(), p.provider.Name(), p.config.LLM.Model)
	if p.cache != nil {
		if data, found := p.cache.Get(key); found {
			var records []model.CandidateRecord
			if err := json.Unmarshal(data, &records); err == nil {
				p.logger.Debug("extraction cache hit", zap.String("fingerprint", doc.Fingerprint()))
				meta := &model.ExtractionMeta{
					Provider: p.provider.Name(),
					Model:    p.config.LLM.Model,
					Notes:    "served from cache",
				}
				return records, meta, nil
			}
		}
	}

	records, meta, err := p.extractor.ExtractRecords(ctx, doc)
	if err != nil {
		return nil, nil, err
	}

	if p.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			if err := p.cache.Set(key, data, p.config.Cache.TTL); err != nil {
				p.logger.Warn("extraction cache write failed", zap.Error(err))
			}
		}
	}

	return records, meta, nil
}

// RenderReport renders the report to the configured outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, summary bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	if summary {
		p.renderer.RenderSummary(report)
	}
	return nil
}

// LoadRecordsFile reads candidate records from a JSON file. Both a bare
// array and the extraction envelope shape are accepted. Warnings describe
// entries that were dropped or repaired.
func LoadRecordsFile(path string) ([]model.CandidateRecord, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read records file: %w", err)
	}

	var records []model.CandidateRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil, nil
	}

	records, warnings, err := extract.ParseRecords(string(data), "")
	if err != nil {
		return nil, nil, fmt.Errorf("parse records file: %w", err)
	}
	return records, warnings, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
