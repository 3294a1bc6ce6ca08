package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the complete runtime configuration.
// Thresholds drive the verification core; the remaining sections configure
// the collaborators around it (document fetching, LLM extraction, caching).
type Config struct {
	Thresholds  ThresholdConfig   `yaml:"thresholds"`
	HTTP        HTTPConfig        `yaml:"http"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
	Audit       AuditConfig       `yaml:"audit"`
}

// ThresholdConfig centralizes the similarity cutoffs and routing penalty.
// Named fields replace the magic numbers scattered through earlier heuristics
// so callers can retune without touching core logic.
type ThresholdConfig struct {
	// THigh is the exact-match cutoff: similarity at or above it
	// classifies as exact.
	THigh float64 `yaml:"t_high" validate:"gt=0,lte=1"`

	// TLow is the minimum-acceptable cutoff: similarity below it
	// classifies as flagged (possible hallucination).
	TLow float64 `yaml:"t_low" validate:"gte=0,lt=1"`

	// SeverityPenalty raises the auto-include bar for high-severity
	// records. It adjusts the routing threshold, not the score.
	SeverityPenalty float64 `yaml:"severity_penalty" validate:"gte=0,lte=1"`
}

// HTTPConfig configures remote document fetching.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
	RespectRobots bool         `yaml:"respect_robots"`
}

// LLMConfig configures the extraction collaborator.
type LLMConfig struct {
	Provider  string  `yaml:"provider"` // "openai", "anthropic", "ollama", "" = disabled
	Model     string  `yaml:"model"`
	APIKey    string  `yaml:"api_key"`
	BaseURL   string  `yaml:"base_url"`
	Timeout   int     `yaml:"timeout_seconds"`
	MaxTokens int     `yaml:"max_tokens"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per host
}

// CacheConfig configures document and extraction caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	VerifyWorkers int `yaml:"verify_workers"` // concurrent record verifications
	BatchWorkers  int `yaml:"batch_workers"`  // concurrent documents in batch mode
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// AuditConfig configures the audit history store.
type AuditConfig struct {
	DBPath string `yaml:"db_path"` // empty disables run-history persistence
}

var configValidator = validator.New()

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			THigh:           0.98,
			TLow:            0.60,
			SeverityPenalty: 0.10,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "ClauseGuard/0.1 (+https://github.com/openclause/clauseguard)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		LLM: LLMConfig{
			Timeout:   60,
			MaxTokens: 4096,
			RateLimit: 1.0,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			VerifyWorkers: 8,
			BatchWorkers:  4,
		},
	}
}

// Validate checks cross-field consistency of the threshold configuration.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Thresholds.TLow >= c.Thresholds.THigh {
		return fmt.Errorf("invalid config: t_low (%.2f) must be below t_high (%.2f)",
			c.Thresholds.TLow, c.Thresholds.THigh)
	}
	return nil
}
