package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipcheck/clipcheck/internal/cache"
	"github.com/clipcheck/clipcheck/internal/errs"
	"github.com/clipcheck/clipcheck/internal/model"
)

type fakeRunner struct {
	result *model.Result
	err    error
	calls  int
}

func (f *fakeRunner) Run(ctx context.Context, videoPath string) (*model.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeAudio struct{}

func (fakeAudio) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	return videoPath + ".wav", nil
}

type fakeTranscriber struct{ text string }

func (f fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f.text, nil
}

type fakeClaims struct {
	claims []string
	err    error
}

func (f fakeClaims) Extract(ctx context.Context, transcript string) ([]string, error) {
	return f.claims, f.err
}

type fakeVerifier struct {
	verdict model.Verdict
	err     error
}

func (f fakeVerifier) Verify(ctx context.Context, claim string) (model.Verdict, error) {
	return f.verdict, f.err
}

func testServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	cfg := model.DefaultConfig().Server
	cfg.UploadDir = t.TempDir()
	cfg.AllowedOrigins = []string{"http://localhost:5173"}
	return New(cfg, deps, zerolog.Nop())
}

func videoForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("video", "clip.mp4")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	_, _ = part.Write([]byte("fake video bytes"))
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestPing(t *testing.T) {
	s := testServer(t, Deps{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Errorf("Expected 200 pong, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestVerifyVideo_Success(t *testing.T) {
	result := &model.Result{
		OK:      true,
		Text:    "the earth is flat",
		Claims:  []string{"the earth is flat"},
		Results: []model.Verdict{{Claim: "the earth is flat", Category: "Science", FakeScore: 0.97, Confidence: 0.9}},
	}
	runner := &fakeRunner{result: result}
	store := cache.NewResultStore(time.Minute)
	s := testServer(t, Deps{Runner: runner, Store: store})

	body, contentType := videoForm(t)
	req := httptest.NewRequest(http.MethodPost, "/video/verify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope model.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !envelope.OK || len(envelope.Results) != 1 || envelope.Results[0].FakeScore != 0.97 {
		t.Errorf("Unexpected envelope: %+v", envelope)
	}

	jobID := rec.Header().Get("X-Job-Id")
	if jobID == "" {
		t.Fatal("Expected X-Job-Id header")
	}
	if _, found := store.Get(jobID); !found {
		t.Error("Expected result stored under job id")
	}
}

func TestVerifyVideo_NoFile(t *testing.T) {
	runner := &fakeRunner{}
	s := testServer(t, Deps{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/video/verify", strings.NewReader(""))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Errorf("Expected pipeline never invoked, got %d calls", runner.calls)
	}

	var envelope map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	if _, ok := envelope["error"]; !ok {
		t.Errorf("Expected error envelope, got %s", rec.Body.String())
	}
	if _, ok := envelope["ok"]; ok {
		t.Error("Error envelope must not carry ok")
	}
}

func TestVerifyVideo_PipelineFailureIsUniformEnvelope(t *testing.T) {
	runner := &fakeRunner{err: errs.E(errs.KindService, "llm.generate", errors.New("rate limited"))}
	s := testServer(t, Deps{Runner: runner})

	body, contentType := videoForm(t)
	req := httptest.NewRequest(http.MethodPost, "/video/verify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}

	var envelope map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	if len(envelope) != 1 {
		t.Errorf("Expected only the error field, got %v", envelope)
	}
	// No partial verdicts may leak into the failure response.
	if strings.Contains(rec.Body.String(), "fake_score") {
		t.Errorf("Failure envelope leaked verdicts: %s", rec.Body.String())
	}
}

func TestUpload_ExtractsAudio(t *testing.T) {
	s := testServer(t, Deps{Audio: fakeAudio{}})

	body, contentType := videoForm(t)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK    bool   `json:"ok"`
		Video string `json:"video"`
		Audio string `json:"audio"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.OK || resp.Audio != resp.Video+".wav" {
		t.Errorf("Unexpected response: %s", rec.Body.String())
	}
}

func TestTranscribe_Success(t *testing.T) {
	s := testServer(t, Deps{Transcriber: fakeTranscriber{text: "hello world"}})

	audioPath := filepath.Join(t.TempDir(), "a.wav")
	if err := os.WriteFile(audioPath, []byte("riff"), 0o644); err != nil {
		t.Fatalf("Failed to write audio file: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"audio_path": audioPath})
	req := httptest.NewRequest(http.MethodPost, "/stt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK   bool   `json:"ok"`
		Text string `json:"text"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.OK || resp.Text != "hello world" {
		t.Errorf("Unexpected response: %s", rec.Body.String())
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	s := testServer(t, Deps{Transcriber: fakeTranscriber{}})

	req := httptest.NewRequest(http.MethodPost, "/stt", strings.NewReader(`{"audio_path":"/no/such.wav"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestExtractClaims_TooShortText(t *testing.T) {
	s := testServer(t, Deps{Claims: fakeClaims{}})

	req := httptest.NewRequest(http.MethodPost, "/claims/extract", strings.NewReader(`{"text":"ab"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestExtractClaims_Success(t *testing.T) {
	s := testServer(t, Deps{Claims: fakeClaims{claims: []string{"a", "b"}}})

	req := httptest.NewRequest(http.MethodPost, "/claims/extract", strings.NewReader(`{"text":"long enough text"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp struct {
		OK     bool     `json:"ok"`
		Claims []string `json:"claims"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.OK || len(resp.Claims) != 2 {
		t.Errorf("Unexpected response: %s", rec.Body.String())
	}
}

func TestVerifyClaim_Success(t *testing.T) {
	verdict := model.Verdict{Claim: "c", Category: "Unknown", FakeScore: 0.5, Confidence: 0.5}
	s := testServer(t, Deps{Verifier: fakeVerifier{verdict: verdict}})

	req := httptest.NewRequest(http.MethodPost, "/claims/verify", strings.NewReader(`{"claim":"c"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK      bool          `json:"ok"`
		Verdict model.Verdict `json:"verdict"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.OK || resp.Verdict != verdict {
		t.Errorf("Unexpected response: %s", rec.Body.String())
	}
}

func TestVerifyClaim_Missing(t *testing.T) {
	s := testServer(t, Deps{Verifier: fakeVerifier{}})

	req := httptest.NewRequest(http.MethodPost, "/claims/verify", strings.NewReader(`{"claim":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestResults_UnknownID(t *testing.T) {
	s := testServer(t, Deps{Store: cache.NewResultStore(time.Minute)})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := testServer(t, Deps{})

	req := httptest.NewRequest(http.MethodOptions, "/video/verify", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin echoed, got %q", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	s := testServer(t, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header for disallowed origin, got %q", got)
	}
}
