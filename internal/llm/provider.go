package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface for LLM extraction backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract asks the model to propose obligation and risk-flag records
	// for one chunk of contract text
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one extraction call
type ExtractRequest struct {
	// ChunkText is the contract text window to analyze
	ChunkText string

	// Location is a human-readable label for where the chunk sits in the
	// document (section header or chunk position)
	Location string

	// ChunkIndex / TotalChunks give the model multi-chunk context
	ChunkIndex  int
	TotalChunks int

	// Prompt overrides the default extraction prompt when non-empty
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse is the raw model output for one chunk. Parsing into
// candidate records happens in the Extractor, not in providers.
type ExtractResponse struct {
	// Content is the model's text response (expected to be JSON)
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// RateLimit is the request rate toward the provider, per second
	RateLimit float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   60,
		MaxTokens: 4096,
		RateLimit: 1.0,
	}
}

// extractionSystemPrompt pins the model to verbatim quoting. The verifier
// downstream flags any quote that does not appear in the document.
const extractionSystemPrompt = `You are a contract analysis assistant. You extract obligations and risk flags from contract text and return them as strict JSON. Every source_text value MUST be copied verbatim from the contract, character for character. Never paraphrase inside source_text; paraphrase only in description fields.`

// BuildExtractionPrompt constructs the default user prompt for one chunk.
func BuildExtractionPrompt(req ExtractRequest) string {
	context := ""
	if req.TotalChunks > 1 {
		context = fmt.Sprintf("[This is chunk %d of %d from the contract. Location: %s]\n\n",
			req.ChunkIndex+1, req.TotalChunks, req.Location)
	}

	return fmt.Sprintf(`%sAnalyze the contract text below. Return ONLY a JSON object with this shape:

{
  "obligations": [
    {"party": "who owes the duty", "type": "payment|deadline|restriction|other", "description": "plain-language summary", "source_text": "VERBATIM quote from the contract", "source_location": "section label if visible"}
  ],
  "risk_flags": [
    {"category": "auto_renewal|penalty|indemnification|termination|other", "severity": "high|medium|low", "title": "short title", "source_text": "VERBATIM quote from the contract", "source_location": "section label if visible"}
  ],
  "extraction_notes": "optional caveats"
}

Rules:
1. source_text must appear verbatim in the contract text. Do not normalize quotes, numbers or spacing.
2. If no obligations or risks are present, return empty arrays.
3. Do not invent clauses that are not in the text.

CONTRACT TEXT:

%s`, context, req.ChunkText)
}
