package ml

import "math"

// RiskLevel is the discrete tier derived from the blended score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Action is the recommended response for a risk tier.
type Action string

const (
	ActionAllow Action = "Allow"
	ActionWarn  Action = "Warn"
	ActionBlock Action = "Block"
)

// Tier boundaries on the blended percentage. Semantics are exact:
// < 20 is Low, [20, 60) is Medium, >= 60 is High.
const (
	warnBoundary  = 20.0
	blockBoundary = 60.0
)

// suspectThreshold is the auxiliary binary cutoff on the heuristic path.
const suspectThreshold = 50.0

// Weights configures the model-path blend. The pair does not have to sum
// to 1; defaults follow the final training revision (0.9 model, 0.1
// homoglyph, with the homoglyph score pre-scaled to [0,1]).
type Weights struct {
	ML        float64
	Homoglyph float64
}

// DefaultWeights returns the documented blend defaults.
func DefaultWeights() Weights {
	return Weights{ML: 0.9, Homoglyph: 0.1}
}

// BlendModel combines a calibrated probability in [0,1] with a homoglyph
// score and reports the result as a percentage rounded to 2 decimals.
// A homoglyph score above 1 is treated as a [0,100] value and pre-scaled.
func (w Weights) BlendModel(probability, homoglyph float64) float64 {
	h := homoglyph
	if h > 1 {
		h /= 100.0
	}
	return round2((probability*w.ML + h*w.Homoglyph) * 100.0)
}

// BlendHeuristic is the classifier-unavailable fallback:
// round(0.7*homoglyph + 0.3*behavior, 2), both inputs in [0,100].
func BlendHeuristic(homoglyph, behavior float64) float64 {
	return round2(0.7*homoglyph + 0.3*behavior)
}

// ClassifyRisk maps a blended percentage onto its tier and action.
func ClassifyRisk(score float64) (RiskLevel, Action) {
	switch {
	case score < warnBoundary:
		return RiskLow, ActionAllow
	case score < blockBoundary:
		return RiskMedium, ActionWarn
	default:
		return RiskHigh, ActionBlock
	}
}

// round2 rounds half away from zero to 2 decimals, matching the rounding
// of the historical verdict log.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
