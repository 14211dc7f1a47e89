package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clipcheck/clipcheck/internal/errs"
	"github.com/clipcheck/clipcheck/internal/util"
)

// groqBaseURL is the OpenAI-compatible endpoint Groq exposes
const groqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIProvider serves any OpenAI-compatible API (OpenAI itself, Groq via
// BaseURL). It implements both TextGenerator and SpeechTranscriber: chat
// completions for generation, the audio transcriptions endpoint for speech.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	config Config
}

// NewOpenAIProvider creates a provider against the OpenAI API
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return newCompatibleProvider("openai", config)
}

// NewGroqProvider creates a provider against Groq's OpenAI-compatible API
func NewGroqProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = groqBaseURL
	}
	return newCompatibleProvider("groq", config)
}

func newCompatibleProvider(name string, config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		name:   name,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Generate runs one chat completion and returns the raw response text
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		return "", errs.E(errs.KindService, "llm.generate", fmt.Errorf("%s model must be specified", p.name))
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.Deterministic {
		// Temperature zero so identical transcripts produce identical claims.
		// The client's Temperature field is omitempty, so a literal 0 would
		// vanish from the wire request and the provider default would apply;
		// the smallest non-zero float32 is the explicit stand-in.
		chatReq.Temperature = math.SmallestNonzeroFloat32
	}
	if req.JSONOnly {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", errs.E(errs.KindService, "llm.generate", fmt.Errorf("%s API error: %w", p.name, err))
	}
	if len(resp.Choices) == 0 {
		return "", errs.E(errs.KindService, "llm.generate", fmt.Errorf("no response from %s", p.name))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Transcribe recognizes speech in the audio file at path
func (p *OpenAIProvider) Transcribe(ctx context.Context, path string, model string) (string, error) {
	if model == "" {
		model = openai.Whisper1
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: path,
	})
	if err != nil {
		return "", errs.E(errs.KindService, "llm.transcribe", fmt.Errorf("%s API error: %w", p.name, err))
	}

	return strings.TrimSpace(resp.Text), nil
}
