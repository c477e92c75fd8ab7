package allocation

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

// ============================================================================
// TEST: Score matches the weighted geometric mean on raw inputs
// ============================================================================

func TestCalculateSignalScoreFormula(t *testing.T) {
	cfg := DefaultConfig()

	testCases := []struct {
		name    string
		winRate float64
		conf    float64
		rr      float64
	}{
		{"strong signal", 0.70, 0.80, 2.0},
		{"weak signal scores on its raw values", 0.40, 0.30, 1.0},
		{"marginal signal", 0.55, 0.50, 1.2},
		{"high reward ratio", 0.60, 0.60, 5.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sig := Signal{
				Symbol:         "BTCUSDT",
				WinProbability: fp(tc.winRate),
				Confidence:     fp(tc.conf),
				RRRatio:        fp(tc.rr),
				Leverage:       10,
			}
			want := math.Min(1.0,
				math.Pow(tc.winRate, 0.4)*math.Pow(tc.conf, 0.4)*math.Pow(tc.rr, 0.2))
			got := CalculateSignalScore(sig, cfg)
			if !floatEquals(got, want, 1e-12) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

// Weak inputs are never lifted to passable values: a 0.40/0.30/1.0 signal
// scores well under both quality thresholds.
func TestCalculateSignalScoreNoFloorLifting(t *testing.T) {
	cfg := DefaultConfig()
	sig := Signal{
		Symbol:         "DOGEUSDT",
		WinProbability: fp(0.40),
		Confidence:     fp(0.30),
		RRRatio:        fp(1.0),
		Leverage:       5,
	}

	score := CalculateSignalScore(sig, cfg)
	want := math.Pow(0.40, 0.4) * math.Pow(0.30, 0.4)
	if !floatEquals(score, want, 1e-12) {
		t.Fatalf("expected raw-input score %v, got %v", want, score)
	}
	if score >= cfg.SignalQualityThreshold {
		t.Errorf("weak signal score %v should not pass normal threshold %v",
			score, cfg.SignalQualityThreshold)
	}
	if score >= cfg.BootstrapSignalQualityThreshold {
		t.Errorf("weak signal score %v should not pass bootstrap threshold %v",
			score, cfg.BootstrapSignalQualityThreshold)
	}
}

// ============================================================================
// TEST: Missing and NaN fields fall back to defaults
// ============================================================================

func TestCalculateSignalScoreDefaults(t *testing.T) {
	cfg := DefaultConfig()

	want := math.Pow(0.55, 0.4) * math.Pow(0.5, 0.4) * math.Pow(1.0, 0.2)

	// All optional fields missing
	got := CalculateSignalScore(Signal{Symbol: "ETHUSDT", Leverage: 10}, cfg)
	if !floatEquals(got, want, 1e-12) {
		t.Errorf("nil fields: expected %v, got %v", want, got)
	}

	// NaN is treated like missing
	got = CalculateSignalScore(Signal{
		Symbol:         "ETHUSDT",
		WinProbability: fp(math.NaN()),
		Confidence:     fp(math.NaN()),
		RRRatio:        fp(math.NaN()),
		Leverage:       10,
	}, cfg)
	if !floatEquals(got, want, 1e-12) {
		t.Errorf("NaN fields: expected %v, got %v", want, got)
	}
}

// ============================================================================
// TEST: Domain clamps and the score ceiling
// ============================================================================

func TestCalculateSignalScoreClamping(t *testing.T) {
	cfg := DefaultConfig()

	// Out-of-domain probabilities clamp to [0, 1]
	over := CalculateSignalScore(Signal{
		WinProbability: fp(1.5), Confidence: fp(2.0), RRRatio: fp(1.0), Leverage: 1,
	}, cfg)
	exact := CalculateSignalScore(Signal{
		WinProbability: fp(1.0), Confidence: fp(1.0), RRRatio: fp(1.0), Leverage: 1,
	}, cfg)
	if over != exact {
		t.Errorf("over-domain inputs should clamp: got %v, want %v", over, exact)
	}

	// Reward:risk clamps to MaxRRRatio
	atMax := CalculateSignalScore(Signal{
		WinProbability: fp(0.6), Confidence: fp(0.6), RRRatio: fp(cfg.MaxRRRatio), Leverage: 1,
	}, cfg)
	beyond := CalculateSignalScore(Signal{
		WinProbability: fp(0.6), Confidence: fp(0.6), RRRatio: fp(cfg.MaxRRRatio * 10), Leverage: 1,
	}, cfg)
	if atMax != beyond {
		t.Errorf("reward:risk beyond max should clamp: got %v, want %v", beyond, atMax)
	}

	// Score never exceeds 1 even with a large reward:risk multiplier
	capped := CalculateSignalScore(Signal{
		WinProbability: fp(1.0), Confidence: fp(1.0), RRRatio: fp(10.0), Leverage: 1,
	}, cfg)
	if capped != 1.0 {
		t.Errorf("expected score capped at 1.0, got %v", capped)
	}

	// Zero win rate zeroes the whole score
	zeroed := CalculateSignalScore(Signal{
		WinProbability: fp(0), Confidence: fp(0.9), RRRatio: fp(3.0), Leverage: 1,
	}, cfg)
	if zeroed != 0 {
		t.Errorf("expected zero score for zero win rate, got %v", zeroed)
	}
}

// ============================================================================
// TEST: Score is monotonic in each component
// ============================================================================

func TestCalculateSignalScoreMonotonic(t *testing.T) {
	cfg := DefaultConfig()

	base := Signal{WinProbability: fp(0.5), Confidence: fp(0.5), RRRatio: fp(2.0), Leverage: 1}
	baseScore := CalculateSignalScore(base, cfg)

	betterWin := base
	betterWin.WinProbability = fp(0.7)
	if CalculateSignalScore(betterWin, cfg) <= baseScore {
		t.Error("expected higher win rate to raise the score")
	}

	betterConf := base
	betterConf.Confidence = fp(0.7)
	if CalculateSignalScore(betterConf, cfg) <= baseScore {
		t.Error("expected higher confidence to raise the score")
	}

	betterRR := base
	betterRR.RRRatio = fp(4.0)
	if CalculateSignalScore(betterRR, cfg) <= baseScore {
		t.Error("expected higher reward:risk to raise the score")
	}
}
