// Package allocation implements the capital allocation pass: candidate
// signals are scored, ranked competitively and funded from a shared margin
// budget subject to per-position caps and margin-health throttling.
package allocation

// Signal is one candidate trade produced by the upstream signal generator.
// WinProbability, Confidence and RRRatio are optional; absent values fall
// back to conservative defaults at scoring time and almost always fail the
// quality gate downstream. Leverage is required and must be a positive,
// finite number.
type Signal struct {
	Symbol         string   `json:"symbol"`
	WinProbability *float64 `json:"win_probability,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
	RRRatio        *float64 `json:"rr_ratio,omitempty"`
	Leverage       float64  `json:"leverage"`
}

// AllocatedSignal is one funded allocation. Immutable once emitted.
type AllocatedSignal struct {
	Signal          Signal  `json:"signal"`
	AllocatedBudget float64 `json:"allocated_budget"`
	AllocationRatio float64 `json:"allocation_ratio"`
	QualityScore    float64 `json:"quality_score"`
}

// RejectReason classifies why a single candidate was dropped from a pass.
type RejectReason string

const (
	RejectInvalidLeverage RejectReason = "invalid_leverage"
	RejectBelowThreshold  RejectReason = "below_quality_threshold"
	RejectBudgetExhausted RejectReason = "budget_exhausted"
	RejectZeroBudget      RejectReason = "zero_budget_after_caps"
)

// RejectedSignal records one dropped candidate and why.
type RejectedSignal struct {
	Symbol       string       `json:"symbol"`
	Reason       RejectReason `json:"reason"`
	Detail       string       `json:"detail,omitempty"`
	QualityScore float64      `json:"quality_score,omitempty"`
}

// AbortReason classifies why a whole pass produced no allocations.
type AbortReason string

const (
	AbortNone          AbortReason = ""
	AbortInvalidMargin AbortReason = "invalid_available_margin"
	AbortNoSurvivors   AbortReason = "no_signals_passed_quality_gate"
	AbortNoBudget      AbortReason = "no_budget_after_margin_protection"
	AbortInvalidScore  AbortReason = "invalid_total_score"
)

// AllocationSummary describes one completed allocation pass.
type AllocationSummary struct {
	PassID           string       `json:"pass_id"`
	QualityThreshold float64      `json:"quality_threshold"`
	Bootstrap        bool         `json:"bootstrap"`
	MarginStatus     MarginStatus `json:"margin_status"`
	BudgetMultiplier float64      `json:"budget_multiplier"`
	// MarginHealth is the full health check this pass was computed against.
	// Zero-valued when the pass aborted before the budget stage.
	MarginHealth MarginHealthStatus `json:"margin_health"`
	RawBudget        float64      `json:"raw_budget"`
	ProtectedBudget  float64      `json:"protected_budget"`
	SpentBudget      float64      `json:"spent_budget"`
	RemainingBudget  float64      `json:"remaining_budget"`
	InputCount       int          `json:"input_count"`
	ScoredCount      int          `json:"scored_count"`
	FundedCount      int          `json:"funded_count"`
	RejectedCount    int          `json:"rejected_count"`
	AbortReason      AbortReason  `json:"abort_reason,omitempty"`
}

// AllocationResult is the full outcome of one pass. Allocations is ordered by
// quality score descending; an empty slice is a valid, expected result and
// must be treated as a no-op by callers.
type AllocationResult struct {
	Allocations []AllocatedSignal `json:"allocations"`
	Rejections  []RejectedSignal  `json:"rejections"`
	Summary     AllocationSummary `json:"summary"`
}

// Aborted reports whether the whole pass was terminated before the greedy
// allocation loop could fund anything.
func (r *AllocationResult) Aborted() bool {
	return r.Summary.AbortReason != AbortNone
}
