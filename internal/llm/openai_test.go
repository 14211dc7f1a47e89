package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clipcheck/clipcheck/internal/errs"
)

func chatServer(t *testing.T, content string, inspect func(body []byte, r openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("Failed to read request body: %v", err)
		}
		var req openai.ChatCompletionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if inspect != nil {
			inspect(body, req)
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Index:        0,
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIProvider_Generate_Success(t *testing.T) {
	var seenBody []byte
	var seen openai.ChatCompletionRequest
	server := chatServer(t, `{"claims":["a"]}`, func(body []byte, r openai.ChatCompletionRequest) {
		seenBody = body
		seen = r
	})
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	out, err := provider.Generate(context.Background(), GenerateRequest{
		Prompt:        "Extract claims",
		JSONOnly:      true,
		Deterministic: true,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != `{"claims":["a"]}` {
		t.Errorf("Unexpected output: %s", out)
	}

	// The temperature field must actually be on the wire: its struct tag is
	// omitempty, so a decoded zero could also mean the field was never sent.
	if !strings.Contains(string(seenBody), `"temperature"`) {
		t.Errorf("Expected temperature in request body, got %s", seenBody)
	}
	if seen.Temperature < 0 || seen.Temperature > 1e-9 {
		t.Errorf("Expected effectively-zero temperature for deterministic request, got %v", seen.Temperature)
	}
	if seen.ResponseFormat == nil || seen.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("Expected json_object response format")
	}
}

func TestOpenAIProvider_Generate_NonDeterministicOmitsTemperature(t *testing.T) {
	var seenBody []byte
	server := chatServer(t, "{}", func(body []byte, r openai.ChatCompletionRequest) { seenBody = body })
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Model: "m"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(string(seenBody), `"temperature"`) {
		t.Errorf("Expected no temperature field for sampling request, got %s", seenBody)
	}
}

func TestOpenAIProvider_Generate_SystemMessage(t *testing.T) {
	server := chatServer(t, "{}", func(_ []byte, r openai.ChatCompletionRequest) {
		if len(r.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(r.Messages))
		}
		if r.Messages[0].Role != openai.ChatMessageRoleSystem {
			t.Errorf("Expected system role first, got %s", r.Messages[0].Role)
		}
	})
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Model: "m"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Generate(context.Background(), GenerateRequest{
		System: "Output JSON only.",
		Prompt: "Verify",
	}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func TestOpenAIProvider_Generate_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Model: "m"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errs.IsKind(err, errs.KindService) {
		t.Errorf("Expected service kind, got %v", errs.KindOf(err))
	}
}

func TestOpenAIProvider_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("Expected path /audio/transcriptions, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(openai.AudioResponse{Text: "  hello world  "})
	}))
	defer server.Close()

	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("Failed to write audio fixture: %v", err)
	}

	provider, err := NewGroqProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "groq" {
		t.Errorf("Expected provider name groq, got %s", provider.Name())
	}

	text, err := provider.Transcribe(context.Background(), audio, "whisper-large-v3-turbo")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello world" {
		t.Errorf("Expected trimmed transcript, got %q", text)
	}
}

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestNewTextGenerator_UnknownProvider(t *testing.T) {
	if _, err := NewTextGenerator(Config{Provider: "bedrock"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
