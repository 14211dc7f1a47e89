package model

// Verdict is the structured assessment of one claim
type Verdict struct {
	Claim      string  `json:"claim"`      // The claim that was verified
	Category   string  `json:"category"`   // Misinformation category, "Unknown" when the model omits it
	FakeScore  float64 `json:"fake_score"` // Likelihood the claim is false, always in [0,1]
	Confidence float64 `json:"confidence"` // Model confidence in the verdict, always in [0,1]
	Reasoning  string  `json:"reasoning"`  // Rationale text, empty when the model omits it
}

// Verdict field defaults applied by the normalizer when the model
// omits or garbles a field. Partial output is low-confidence data,
// not a request failure.
const (
	DefaultCategory = "Unknown"
	DefaultScore    = 0.5
)
