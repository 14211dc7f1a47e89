// Package normalize coerces untrusted generative-model JSON into validated
// domain records. The line it draws: a response that is not parsable JSON at
// all is a malformed_output error the caller must raise; a parsed response
// with missing or garbled fields is clamped and defaulted, never rejected.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/clipcheck/clipcheck/internal/errs"
	"github.com/clipcheck/clipcheck/internal/model"
)

// MalformedClaim is the literal stand-in for a claim-list element that is
// neither a string nor a record with a claim field. Keeping a marker instead
// of dropping the element preserves index alignment with whatever the model
// intended.
const MalformedClaim = "[unparseable claim]"

// DecodeObject parses raw model output as a JSON object. Syntax failure is a
// contract violation by the generation service and surfaces as
// errs.KindMalformed.
func DecodeObject(op, raw string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, errs.E(errs.KindMalformed, op, err)
	}
	return obj, nil
}

// ClaimList reduces the parsed value of a claim-extraction response to an
// ordered list of claim strings. A missing or non-array claims field means
// "no claims found" and yields an empty list. Elements are reduced in place:
// strings pass through, records contribute their claim field, anything else
// becomes MalformedClaim. No deduplication, no sorting; duplicates are legal
// and verified independently.
func ClaimList(obj map[string]any) []string {
	raw, ok := obj["claims"].([]any)
	if !ok {
		return []string{}
	}

	claims := make([]string, 0, len(raw))
	for _, item := range raw {
		claims = append(claims, claimText(item))
	}
	return claims
}

func claimText(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["claim"].(string); ok {
			return s
		}
	}
	return MalformedClaim
}

// Verdict applies field-level defaults to the parsed value of a verification
// response. Numeric coercion failures fall back to 0.5: partial or garbled
// verdict output is low-confidence data, not a request failure.
func Verdict(obj map[string]any, claim string) model.Verdict {
	return model.Verdict{
		Claim:      claim,
		Category:   stringField(obj, "category", model.DefaultCategory),
		FakeScore:  scoreField(obj, "fake_score"),
		Confidence: scoreField(obj, "confidence"),
		Reasoning:  stringField(obj, "reasoning", ""),
	}
}

func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// scoreField coerces a score field to a float in [0,1]. Accepts JSON numbers
// and numeric strings; everything else, including absence, becomes 0.5.
// An explicit numeric zero stays zero.
func scoreField(obj map[string]any, key string) float64 {
	v, ok := obj[key]
	if !ok {
		return model.DefaultScore
	}

	// Unmarshal into map[string]any yields float64 for every JSON number.
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return model.DefaultScore
		}
		f = parsed
	default:
		return model.DefaultScore
	}

	return clamp(f)
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
