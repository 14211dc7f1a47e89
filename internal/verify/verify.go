// Package verify is the claim-verification stage: one deterministic JSON-only
// generation call per claim, normalized into a Verdict. The fan-out across a
// claim list is all-or-nothing — a single failed verification discards every
// verdict already computed for the run.
package verify

import (
	"context"
	"fmt"

	"github.com/clipcheck/clipcheck/internal/llm"
	"github.com/clipcheck/clipcheck/internal/model"
	"github.com/clipcheck/clipcheck/internal/normalize"
	"github.com/clipcheck/clipcheck/internal/worker"
)

const verifySystem = "Output JSON only. json. no markdown."

const verifyPrompt = `Verify this potential misinformation claim: %q.
Return clean json like:
{
  "category": "...",
  "fake_score": 0-1,
  "confidence": 0-1,
  "reasoning": "..."
}`

// Verifier verifies claims against the text-generation service
type Verifier struct {
	gen     llm.TextGenerator
	pool    *worker.Pool
	limiter *worker.Limiter
}

// NewVerifier creates the verification stage. Concurrency 1 keeps the
// baseline contract: verdict N+1 is requested only after verdict N completes.
func NewVerifier(gen llm.TextGenerator, cfg model.VerifyConfig) *Verifier {
	return &Verifier{
		gen:     gen,
		pool:    worker.NewPool(cfg.Concurrency),
		limiter: worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// Verify produces the verdict for a single claim. Syntax failure in the
// response is fatal; missing fields are defaulted by the normalizer.
func (v *Verifier) Verify(ctx context.Context, claim string) (model.Verdict, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return model.Verdict{}, fmt.Errorf("verify claim: %w", err)
	}

	raw, err := v.gen.Generate(ctx, llm.GenerateRequest{
		System:        verifySystem,
		Prompt:        fmt.Sprintf(verifyPrompt, claim),
		JSONOnly:      true,
		Deterministic: true,
	})
	if err != nil {
		return model.Verdict{}, fmt.Errorf("verify claim: %w", err)
	}

	obj, err := normalize.DecodeObject("verify.verdict", raw)
	if err != nil {
		return model.Verdict{}, err
	}

	return normalize.Verdict(obj, claim), nil
}

// VerifyAll verifies every claim and returns verdicts index-aligned with the
// input. Any single failure aborts the run and the partial verdicts are
// discarded; the caller never sees an incomplete result sequence.
func (v *Verifier) VerifyAll(ctx context.Context, claims []string) ([]model.Verdict, error) {
	verdicts := make([]model.Verdict, len(claims))

	err := v.pool.Run(ctx, len(claims), func(ctx context.Context, i int) error {
		verdict, err := v.Verify(ctx, claims[i])
		if err != nil {
			return err
		}
		verdicts[i] = verdict
		return nil
	})
	if err != nil {
		return nil, err
	}

	return verdicts, nil
}
