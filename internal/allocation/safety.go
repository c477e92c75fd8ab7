package allocation

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Leverage bounds enforced by ValidateLeverage. Values below MinLeverage are
// clamped up; values above MaxLeverage are flagged but passed through so the
// caller can still decide to reject.
const (
	MinLeverage = 0.5
	MaxLeverage = 100.0
)

// divisionEpsilon is the smallest denominator magnitude SafeDivision accepts.
const divisionEpsilon = 1e-10

// ValidationError reports a non-recoverable numeric domain violation. The
// allocator treats it as batch-fatal for available margin and total score,
// and as signal-local for leverage.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s (value: %v)", e.Field, e.Reason, e.Value)
}

// SafetyValidator guards the allocation arithmetic against NaN, Infinity and
// out-of-domain values. Hard violations return a *ValidationError; soft
// violations are clamped in place and logged at warn level.
type SafetyValidator struct {
	log zerolog.Logger
}

// NewSafetyValidator creates a validator that logs clamp events to the given
// logger.
func NewSafetyValidator(log zerolog.Logger) *SafetyValidator {
	return &SafetyValidator{log: log.With().Str("component", "safety_validator").Logger()}
}

// ValidateLeverage checks a signal's leverage. NaN, Infinity and non-positive
// values are hard errors. Leverage below MinLeverage is clamped up with a
// warning; leverage above MaxLeverage is logged but not clamped.
func (v *SafetyValidator) ValidateLeverage(leverage float64, symbol string) (float64, error) {
	if math.IsNaN(leverage) || math.IsInf(leverage, 0) {
		return 0, &ValidationError{Field: "leverage", Value: leverage, Reason: "not a finite number for " + symbol}
	}
	if leverage <= 0 {
		return 0, &ValidationError{Field: "leverage", Value: leverage, Reason: "must be positive for " + symbol}
	}
	if leverage < MinLeverage {
		v.log.Warn().
			Str("symbol", symbol).
			Float64("leverage", leverage).
			Float64("clamped_to", MinLeverage).
			Msg("leverage below minimum, clamping up")
		return MinLeverage, nil
	}
	if leverage > MaxLeverage {
		v.log.Warn().
			Str("symbol", symbol).
			Float64("leverage", leverage).
			Float64("max", MaxLeverage).
			Msg("leverage above maximum, passing through unclamped")
	}
	return leverage, nil
}

// SafeDivision divides numerator by denominator, returning def when the
// denominator is zero or effectively zero, or when the quotient is not a
// finite number. Fallbacks are logged with the supplied context.
func (v *SafetyValidator) SafeDivision(numerator, denominator float64, context string, def float64) float64 {
	if denominator == 0 || math.Abs(denominator) < divisionEpsilon {
		v.log.Warn().
			Str("context", context).
			Float64("numerator", numerator).
			Float64("denominator", denominator).
			Float64("default", def).
			Msg("division by zero or near-zero denominator, using default")
		return def
	}
	quotient := numerator / denominator
	if math.IsNaN(quotient) || math.IsInf(quotient, 0) {
		v.log.Error().
			Str("context", context).
			Float64("numerator", numerator).
			Float64("denominator", denominator).
			Float64("default", def).
			Msg("division produced non-finite result, using default")
		return def
	}
	return quotient
}

// ValidateTotalScore checks the summed score over surviving signals. Signals
// that individually passed a positive quality gate must sum to a usable
// positive denominator; anything else is an internal invariant violation.
func (v *SafetyValidator) ValidateTotalScore(totalScore float64, numSignals int) (float64, error) {
	if math.IsNaN(totalScore) || math.IsInf(totalScore, 0) {
		return 0, &ValidationError{Field: "total_score", Value: totalScore, Reason: "not a finite number"}
	}
	if totalScore == 0 {
		return 0, &ValidationError{Field: "total_score", Value: totalScore,
			Reason: fmt.Sprintf("zero across %d signals that passed the quality gate", numSignals)}
	}
	if totalScore < 0 {
		return 0, &ValidationError{Field: "total_score", Value: totalScore, Reason: "negative"}
	}
	return totalScore, nil
}

// ValidateBudget checks a budget figure. NaN and Infinity are hard errors;
// negative budgets are clamped to zero with a warning.
func (v *SafetyValidator) ValidateBudget(budget float64, context string) (float64, error) {
	if math.IsNaN(budget) || math.IsInf(budget, 0) {
		return 0, &ValidationError{Field: context, Value: budget, Reason: "not a finite number"}
	}
	if budget < 0 {
		v.log.Warn().
			Str("context", context).
			Float64("budget", budget).
			Msg("negative budget, clamping to zero")
		return 0, nil
	}
	return budget, nil
}

// ValidateRatio checks that value lies within [minVal, maxVal]. Out-of-range
// values are clamped with a warning when autoClamp is set, otherwise they are
// hard errors. NaN and Infinity are always hard errors.
func (v *SafetyValidator) ValidateRatio(value float64, name string, minVal, maxVal float64, autoClamp bool) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &ValidationError{Field: name, Value: value, Reason: "not a finite number"}
	}
	if value < minVal || value > maxVal {
		if !autoClamp {
			return 0, &ValidationError{Field: name, Value: value,
				Reason: fmt.Sprintf("outside [%v, %v]", minVal, maxVal)}
		}
		clamped := math.Min(math.Max(value, minVal), maxVal)
		v.log.Warn().
			Str("ratio", name).
			Float64("value", value).
			Float64("clamped_to", clamped).
			Msg("ratio out of range, clamping")
		return clamped, nil
	}
	return value, nil
}
