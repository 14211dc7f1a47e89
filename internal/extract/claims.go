// Package extract is the claim-extraction stage: one deterministic
// JSON-only generation call over the transcript, parsed through the
// normalizer into an ordered claim list.
package extract

import (
	"context"
	"fmt"

	"github.com/clipcheck/clipcheck/internal/llm"
	"github.com/clipcheck/clipcheck/internal/normalize"
)

const claimsPrompt = `Extract factual claims from: %q.
Return valid JSON only like:
{"claims":["claim1","claim2"]}`

// ClaimExtractor extracts factual claims from transcript text
type ClaimExtractor struct {
	gen llm.TextGenerator
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor(gen llm.TextGenerator) *ClaimExtractor {
	return &ClaimExtractor{gen: gen}
}

// Extract asks the generation service for the claim list in the transcript.
// Output order matches the model's output; duplicates are kept and verified
// independently. A syntactically invalid response is fatal to the request;
// a parsed response without claims yields an empty list.
func (e *ClaimExtractor) Extract(ctx context.Context, transcript string) ([]string, error) {
	raw, err := e.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:        fmt.Sprintf(claimsPrompt, transcript),
		JSONOnly:      true,
		Deterministic: true,
	})
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	obj, err := normalize.DecodeObject("extract.claims", raw)
	if err != nil {
		return nil, err
	}

	return normalize.ClaimList(obj), nil
}
