package allocation

import (
	"fmt"

	"github.com/rs/zerolog"
)

// MarginStatus is the margin-usage tier for one allocation pass.
type MarginStatus string

const (
	MarginHealthy  MarginStatus = "HEALTHY"
	MarginWarning  MarginStatus = "WARNING"
	MarginCritical MarginStatus = "CRITICAL"
	MarginLocked   MarginStatus = "LOCKED"
)

// Default usage-ratio thresholds for the tier ladder.
const (
	DefaultWarningThreshold  = 0.80
	DefaultCriticalThreshold = 0.90
	DefaultLockThreshold     = 0.95
)

// MarginHealthStatus is the result of one margin-health check. Computed fresh
// on every pass, never persisted.
type MarginHealthStatus struct {
	Status           MarginStatus `json:"status"`
	Action           string       `json:"action"`
	UsageRatio       float64      `json:"usage_ratio"`
	CurrentMargin    float64      `json:"current_margin"`
	MaxMargin        float64      `json:"max_margin"`
	Message          string       `json:"message"`
	BudgetMultiplier float64      `json:"budget_multiplier"`
}

// marginTier is one rung of the ladder: the first tier whose lower bound the
// usage ratio meets (evaluated top-down, most severe first) wins.
type marginTier struct {
	lowerBound float64
	status     MarginStatus
	multiplier float64
	action     string
}

// MarginSafetyController translates margin usage into a budget-shrinking
// action. Stateless; every check is computed from its arguments.
type MarginSafetyController struct {
	tiers []marginTier
	log   zerolog.Logger
}

// NewMarginSafetyController builds a controller with the given thresholds.
// Non-ascending or non-positive thresholds fall back to the defaults.
func NewMarginSafetyController(warning, critical, lock float64, log zerolog.Logger) *MarginSafetyController {
	if !(warning > 0 && warning < critical && critical < lock) {
		warning = DefaultWarningThreshold
		critical = DefaultCriticalThreshold
		lock = DefaultLockThreshold
	}
	return &MarginSafetyController{
		tiers: []marginTier{
			{lowerBound: lock, status: MarginLocked, multiplier: 0.0, action: "block_new_allocations"},
			{lowerBound: critical, status: MarginCritical, multiplier: 0.1, action: "minimal_new_allocations"},
			{lowerBound: warning, status: MarginWarning, multiplier: 0.5, action: "reduce_new_allocations"},
			{lowerBound: 0, status: MarginHealthy, multiplier: 1.0, action: "allow"},
		},
		log: log.With().Str("component", "margin_safety").Logger(),
	}
}

// CheckMarginHealth computes the tier for currentMargin against maxMargin.
// A non-positive maxMargin is treated as "no room" and locks the pass.
func (c *MarginSafetyController) CheckMarginHealth(currentMargin, maxMargin float64) MarginHealthStatus {
	if maxMargin <= 0 {
		return MarginHealthStatus{
			Status:           MarginLocked,
			Action:           "block_new_allocations",
			UsageRatio:       1.0,
			CurrentMargin:    currentMargin,
			MaxMargin:        maxMargin,
			Message:          fmt.Sprintf("invalid margin ceiling %.2f, treating as locked", maxMargin),
			BudgetMultiplier: 0.0,
		}
	}

	usageRatio := currentMargin / maxMargin
	for _, tier := range c.tiers {
		if usageRatio >= tier.lowerBound {
			return MarginHealthStatus{
				Status:           tier.status,
				Action:           tier.action,
				UsageRatio:       usageRatio,
				CurrentMargin:    currentMargin,
				MaxMargin:        maxMargin,
				Message:          fmt.Sprintf("margin usage %.1f%% (%s)", usageRatio*100, tier.status),
				BudgetMultiplier: tier.multiplier,
			}
		}
	}

	// Negative usage ratio still lands on the HEALTHY rung.
	return MarginHealthStatus{
		Status:           MarginHealthy,
		Action:           "allow",
		UsageRatio:       usageRatio,
		CurrentMargin:    currentMargin,
		MaxMargin:        maxMargin,
		Message:          fmt.Sprintf("margin usage %.1f%% (HEALTHY)", usageRatio*100),
		BudgetMultiplier: 1.0,
	}
}

// ApplyBudgetProtection shrinks totalBudget by the tier's multiplier.
func (c *MarginSafetyController) ApplyBudgetProtection(totalBudget float64, health MarginHealthStatus) float64 {
	protected := totalBudget * health.BudgetMultiplier

	evt := c.log.Debug()
	if health.Status != MarginHealthy {
		evt = c.log.Warn()
	}
	evt.
		Str("status", string(health.Status)).
		Float64("usage_ratio", health.UsageRatio).
		Float64("multiplier", health.BudgetMultiplier).
		Float64("budget_before", totalBudget).
		Float64("budget_after", protected).
		Msg("applied margin budget protection")

	return protected
}

// GetRemainingMarginSpace returns how much margin headroom is left, never
// negative.
func (c *MarginSafetyController) GetRemainingMarginSpace(currentMargin, maxMargin float64) float64 {
	remaining := maxMargin - currentMargin
	if remaining < 0 {
		remaining = 0
	}
	if remaining == 0 {
		c.log.Warn().
			Float64("current_margin", currentMargin).
			Float64("max_margin", maxMargin).
			Msg("no remaining margin space")
	}
	return remaining
}
