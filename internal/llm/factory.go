package llm

import (
	"fmt"
	"strings"

	"github.com/clipcheck/clipcheck/internal/model"
)

// NewTextGenerator creates a text-generation provider from configuration
func NewTextGenerator(config Config) (TextGenerator, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "groq":
		return NewGroqProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, groq, ollama)", config.Provider)
	}
}

// NewSpeechTranscriber creates a speech-to-text provider from configuration.
// Speech always goes through an OpenAI-compatible audio endpoint, regardless
// of which provider serves text generation.
func NewSpeechTranscriber(config Config) (SpeechTranscriber, error) {
	switch strings.ToLower(config.Provider) {
	case "groq":
		return NewGroqProvider(config)
	case "ollama":
		// Ollama serves text only; its BaseURL must not leak into the
		// speech client.
		config.BaseURL = ""
		return NewGroqProvider(config)
	default:
		return NewOpenAIProvider(config)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
	}
}
