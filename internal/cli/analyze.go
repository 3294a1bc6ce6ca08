package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclause/clauseguard/internal/logging"
	"github.com/openclause/clauseguard/internal/model"
	"github.com/openclause/clauseguard/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	cacheDir    string
	noRobots    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string

	llmProvider string
	llmModel    string
	llmRate     float64

	tHigh           float64
	tLow            float64
	severityPenalty float64
	verifyWorkers   int

	auditDB string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file-or-url>",
	Short: "Extract and verify obligations and risk flags from a contract",
	Long: `Analyze runs the full pipeline on one contract:
- Load the document (plain text, HTML file, or URL)
- Chunk it and ask the configured LLM provider for obligations and risk flags
- Verify every claimed quote against the document with fuzzy matching
- Score confidence and route each record (auto-include, tag-verify, human-review)

Example:
  clauseguard analyze lease.txt --llm-provider anthropic
  clauseguard analyze https://example.com/msa.html --llm-provider openai --json report.json
  clauseguard analyze lease.txt --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (\"-\" for stdout)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// HTTP flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "ClauseGuard/0.1 (+https://github.com/openclause/clauseguard)", "HTTP User-Agent")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch and extraction)")
	analyzeCmd.Flags().StringVar(&cacheDir, "cache-dir", defaultDataPath("cache"), "disk cache directory")
	analyzeCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks for URL sources")
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	analyzeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	analyzeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	analyzeCmd.Flags().Float64Var(&llmRate, "llm-rate", 1.0, "LLM requests per second")

	// Threshold flags
	addThresholdFlags(analyzeCmd)

	// Audit flags
	analyzeCmd.Flags().StringVar(&auditDB, "audit-db", "", "sqlite path for run history (empty disables)")
}

func addThresholdFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tHigh, "t-high", 0.98, "similarity threshold for exact matches")
	cmd.Flags().Float64Var(&tLow, "t-low", 0.60, "similarity threshold below which records are flagged")
	cmd.Flags().Float64Var(&severityPenalty, "severity-penalty", 0.10, "extra confidence required to auto-include high severity records")
	cmd.Flags().IntVar(&verifyWorkers, "workers", 8, "concurrent record verifications")
}

// buildConfig assembles the runtime configuration from flags and environment
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Thresholds.THigh = tHigh
	cfg.Thresholds.TLow = tLow
	cfg.Thresholds.SeverityPenalty = severityPenalty
	// Commands register only the flags they need; zero values keep defaults
	if timeout > 0 {
		cfg.HTTP.Timeout = timeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.HTTP.RespectRobots = !noRobots
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Concurrency.VerifyWorkers = verifyWorkers
	cfg.Output.Verbose = verbose
	cfg.Audit.DBPath = auditDB

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.RateLimit = llmRate

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("analyze requires an LLM provider; pass --llm-provider or use 'clauseguard verify' with a records file")
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	report, err := p.Analyze(ctx, source)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD, true); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
