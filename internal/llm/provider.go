package llm

import "context"

// TextGenerator is the text-generation service boundary. It returns raw
// response text; the caller owns JSON parsing and validation — the service
// does not guarantee valid JSON even when JSONOnly is set.
type TextGenerator interface {
	// Name returns the provider name
	Name() string

	// Generate runs one completion request and returns the raw response text
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SpeechTranscriber is the speech-to-text service boundary
type SpeechTranscriber interface {
	// Transcribe recognizes speech in the audio file at path.
	// An empty transcript is a valid result, not an error.
	Transcribe(ctx context.Context, path string, model string) (string, error)
}

// GenerateRequest describes one text-generation call
type GenerateRequest struct {
	// System is an optional system instruction
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model for this call
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// JSONOnly asks the service for JSON-object output mode
	JSONOnly bool

	// Deterministic disables sampling temperature so the same input
	// reproduces the same output
	Deterministic bool
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "groq", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Groq
	APIKey string

	// BaseURL for custom endpoints (Groq, Ollama, mock servers)
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   60,
		MaxTokens: 1024,
	}
}
