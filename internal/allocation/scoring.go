package allocation

import "math"

// Fallback values for signals that arrive without the optional numeric
// fields. They keep malformed signals from crashing the pass; combined they
// score well below any sensible quality gate.
const (
	defaultWinRate    = 0.55
	defaultConfidence = 0.5
	defaultRRRatio    = 1.0
)

// Geometric-mean weights: win rate and confidence matter equally, reward:risk
// least. They sum to 1 so the score stays in [0, 1] for inputs in [0, 1].
const (
	winRateWeight    = 0.4
	confidenceWeight = 0.4
	rrRatioWeight    = 0.2
)

// CalculateSignalScore maps a signal's (win rate, confidence, reward:risk)
// into a single quality score in [0, 1] via a weighted geometric mean.
//
// Inputs are clamped into their domains but never lifted to configured
// minimums: a 0.40 win rate scores as 0.40. The quality gate exists to reject
// weak signals, not to dress them up. Pure function, no logging.
func CalculateSignalScore(sig Signal, cfg *Config) float64 {
	winRate := valueOrDefault(sig.WinProbability, defaultWinRate)
	confidence := valueOrDefault(sig.Confidence, defaultConfidence)
	rrRatio := valueOrDefault(sig.RRRatio, defaultRRRatio)

	winRate = clamp(winRate, 0, 1)
	confidence = clamp(confidence, 0, 1)
	rrRatio = clamp(rrRatio, 0, cfg.MaxRRRatio)

	score := math.Pow(winRate, winRateWeight) *
		math.Pow(confidence, confidenceWeight) *
		math.Pow(rrRatio, rrRatioWeight)

	// rrRatio above 1 can push the product past 1.
	return math.Min(1.0, score)
}

func valueOrDefault(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return def
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
