// Package score aggregates per-claim verdicts into one transparent risk
// summary for reports. The summary is derived data layered on top of the
// pipeline result; it never feeds back into verification and is absent from
// the service's response envelope.
package score

import (
	"math"

	"github.com/clipcheck/clipcheck/internal/model"
)

// FlagThreshold is the fake_score at or above which a verdict counts as flagged
const FlagThreshold = 0.7

// Summary is the aggregate risk view over one run's verdicts
type Summary struct {
	RiskIndex  int            `json:"risk_index"`  // 0-100, confidence-weighted mean fake_score
	Confidence string         `json:"confidence"`  // "low", "medium", "high"
	Claims     int            `json:"claims"`      // verdicts aggregated
	Flagged    int            `json:"flagged"`     // verdicts at or above FlagThreshold
	Categories map[string]int `json:"categories"`  // verdict count per category
}

// Scorer calculates risk summaries
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate aggregates verdicts into a Summary. The index is the
// confidence-weighted mean of fake scores scaled to 0-100; with all
// confidences equal it degrades to a plain mean, and with no verdicts
// everything is zero.
func (s *Scorer) Calculate(verdicts []model.Verdict) Summary {
	summary := Summary{
		Confidence: "low",
		Claims:     len(verdicts),
		Categories: make(map[string]int),
	}
	if len(verdicts) == 0 {
		return summary
	}

	var weightedScore, weightSum, confidenceSum float64
	for _, v := range verdicts {
		weight := v.Confidence
		if weight == 0 {
			weight = 0.01 // zero-confidence verdicts still count, barely
		}
		weightedScore += v.FakeScore * weight
		weightSum += weight
		confidenceSum += v.Confidence

		summary.Categories[v.Category]++
		if v.FakeScore >= FlagThreshold {
			summary.Flagged++
		}
	}

	summary.RiskIndex = int(math.Round(weightedScore / weightSum * 100))
	summary.Confidence = confidenceLevel(confidenceSum / float64(len(verdicts)))
	return summary
}

func confidenceLevel(mean float64) string {
	switch {
	case mean >= 0.7:
		return "high"
	case mean >= 0.4:
		return "medium"
	default:
		return "low"
	}
}
