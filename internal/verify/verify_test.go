package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/clipcheck/clipcheck/internal/errs"
	"github.com/clipcheck/clipcheck/internal/llm"
	"github.com/clipcheck/clipcheck/internal/model"
)

// scriptedGenerator returns one scripted response (or error) per call,
// keyed by call order.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	errAt     int // 0-based call index that fails; -1 disables
	errVal    error
	calls     int
	prompts   []string
}

func newScripted(responses []string) *scriptedGenerator {
	return &scriptedGenerator{responses: responses, errAt: -1}
}

func (s *scriptedGenerator) Name() string                         { return "scripted" }
func (s *scriptedGenerator) IsAvailable(ctx context.Context) bool { return true }

func (s *scriptedGenerator) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, req.Prompt)
	if s.errAt >= 0 && i == s.errAt {
		return "", s.errVal
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "{}", nil
}

func testConfig() model.VerifyConfig {
	return model.VerifyConfig{Concurrency: 1, RequestsPerSecond: 1000, Burst: 1000}
}

func TestVerify_FullVerdict(t *testing.T) {
	gen := newScripted([]string{`{"category":"Health","fake_score":0.9,"confidence":0.8,"reasoning":"r"}`})
	v := NewVerifier(gen, testConfig())

	verdict, err := v.Verify(context.Background(), "5G causes illness")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := model.Verdict{Claim: "5G causes illness", Category: "Health", FakeScore: 0.9, Confidence: 0.8, Reasoning: "r"}
	if verdict != want {
		t.Errorf("Expected %+v, got %+v", want, verdict)
	}
	if !strings.Contains(gen.prompts[0], "5G causes illness") {
		t.Errorf("Expected claim in prompt, got %q", gen.prompts[0])
	}
}

func TestVerify_EmptyObjectDefaults(t *testing.T) {
	gen := newScripted([]string{`{}`})
	v := NewVerifier(gen, testConfig())

	verdict, err := v.Verify(context.Background(), "c")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if verdict.Category != model.DefaultCategory || verdict.FakeScore != 0.5 || verdict.Confidence != 0.5 {
		t.Errorf("Expected defaulted verdict, got %+v", verdict)
	}
}

func TestVerify_SyntaxFailureIsFatal(t *testing.T) {
	gen := newScripted([]string{"I think this claim is false."})
	v := NewVerifier(gen, testConfig())

	_, err := v.Verify(context.Background(), "c")
	if err == nil {
		t.Fatal("Expected error for non-JSON verdict")
	}
	if !errs.IsKind(err, errs.KindMalformed) {
		t.Errorf("Expected malformed_output kind, got %v", errs.KindOf(err))
	}
}

func TestVerifyAll_OrderPreserved(t *testing.T) {
	gen := newScripted([]string{
		`{"category":"A"}`,
		`{"category":"B"}`,
		`{"category":"C"}`,
	})
	v := NewVerifier(gen, testConfig())

	verdicts, err := v.VerifyAll(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(verdicts) != 3 {
		t.Fatalf("Expected 3 verdicts, got %d", len(verdicts))
	}

	for i, wantCat := range []string{"A", "B", "C"} {
		if verdicts[i].Category != wantCat {
			t.Errorf("verdicts[%d].Category: expected %s, got %s", i, wantCat, verdicts[i].Category)
		}
	}
	if verdicts[1].Claim != "two" {
		t.Errorf("Expected verdict aligned with claim, got %q", verdicts[1].Claim)
	}
}

func TestVerifyAll_SecondFailureDiscardsFirstVerdict(t *testing.T) {
	gen := newScripted([]string{`{"category":"A"}`})
	gen.errAt = 1
	gen.errVal = errs.E(errs.KindService, "llm.generate", errors.New("rate limited"))
	v := NewVerifier(gen, testConfig())

	verdicts, err := v.VerifyAll(context.Background(), []string{"one", "two", "three"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if verdicts != nil {
		t.Errorf("Expected no partial verdicts, got %+v", verdicts)
	}
	if !errs.IsKind(err, errs.KindService) {
		t.Errorf("Expected service kind, got %v", errs.KindOf(err))
	}
	// Sequential contract: the third claim's request was never issued.
	if gen.calls > 2 {
		t.Errorf("Expected 2 generation calls, got %d", gen.calls)
	}
}

func TestVerifyAll_EmptyClaimList(t *testing.T) {
	gen := newScripted(nil)
	v := NewVerifier(gen, testConfig())

	verdicts, err := v.VerifyAll(context.Background(), []string{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(verdicts) != 0 {
		t.Errorf("Expected 0 verdicts, got %d", len(verdicts))
	}
	if gen.calls != 0 {
		t.Errorf("Expected no generation calls, got %d", gen.calls)
	}
}

func TestVerifyAll_DuplicateClaimsVerifiedIndependently(t *testing.T) {
	gen := newScripted([]string{`{"category":"A"}`, `{"category":"B"}`})
	v := NewVerifier(gen, testConfig())

	verdicts, err := v.VerifyAll(context.Background(), []string{"same", "same"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("Expected 2 calls for duplicate claims, got %d", gen.calls)
	}
	if verdicts[0].Category == verdicts[1].Category {
		t.Errorf("Expected independent verdicts, got %+v", verdicts)
	}
}
