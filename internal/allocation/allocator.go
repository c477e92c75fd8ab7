package allocation

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountSnapshot is the account-state input for one decision epoch, supplied
// fresh by the caller at allocator construction.
type AccountSnapshot struct {
	TotalEquity  float64 `json:"total_equity"`
	TotalBalance float64 `json:"total_balance"`
	TotalMargin  float64 `json:"total_margin"`
	TotalTrades  int     `json:"total_trades"`
}

// CapitalAllocator runs one competitive allocation pass over candidate
// signals. Each instance is a fresh decision epoch over one account snapshot;
// construct a new one per pass rather than sharing across goroutines.
type CapitalAllocator struct {
	cfg       *Config
	validator *SafetyValidator
	marginCtl *MarginSafetyController
	account   AccountSnapshot

	qualityThreshold float64
	bootstrap        bool

	log zerolog.Logger
}

// NewCapitalAllocator creates an allocator for one decision epoch. The
// quality gate is relaxed while the account's trade count is still below the
// bootstrap limit, so a young system can accumulate history.
func NewCapitalAllocator(cfg *Config, marginCtl *MarginSafetyController, account AccountSnapshot, log zerolog.Logger) *CapitalAllocator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := log.With().Str("component", "capital_allocator").Logger()

	a := &CapitalAllocator{
		cfg:       cfg,
		validator: NewSafetyValidator(log),
		marginCtl: marginCtl,
		account:   account,
		log:       logger,
	}

	if account.TotalTrades < cfg.BootstrapTradeLimit {
		a.qualityThreshold = cfg.BootstrapSignalQualityThreshold
		a.bootstrap = true
	} else {
		a.qualityThreshold = cfg.SignalQualityThreshold
	}
	return a
}

// QualityThreshold returns the active quality gate for this epoch.
func (a *CapitalAllocator) QualityThreshold() float64 {
	return a.qualityThreshold
}

// scoredSignal pairs a surviving signal with its score. Leverage on the
// embedded signal is already validated and clamped.
type scoredSignal struct {
	signal Signal
	score  float64
}

// Allocate runs the full allocation pass. It never panics and never returns
// an error: every failure mode ends in an empty (or truncated) allocation
// list plus structured rejection records and log lines. Allocations come back
// in quality-score-descending order.
func (a *CapitalAllocator) Allocate(signals []Signal, availableMargin float64) *AllocationResult {
	result := &AllocationResult{
		Allocations: []AllocatedSignal{},
		Rejections:  []RejectedSignal{},
		Summary: AllocationSummary{
			PassID:           uuid.New().String(),
			QualityThreshold: a.qualityThreshold,
			Bootstrap:        a.bootstrap,
			InputCount:       len(signals),
		},
	}
	log := a.log.With().Str("pass_id", result.Summary.PassID).Logger()

	// Step 1: available margin is batch-fatal on hard validation failure.
	margin, err := a.validator.ValidateBudget(availableMargin, "available_margin")
	if err != nil {
		log.Error().Err(err).Msg("invalid available margin, aborting pass")
		result.Summary.AbortReason = AbortInvalidMargin
		return result
	}

	// Step 2: validate leverage, score, filter. Leverage failures reject just
	// that candidate; the batch continues.
	survivors := make([]scoredSignal, 0, len(signals))
	for _, sig := range signals {
		lev, err := a.validator.ValidateLeverage(sig.Leverage, sig.Symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("rejecting signal with invalid leverage")
			result.Rejections = append(result.Rejections, RejectedSignal{
				Symbol: sig.Symbol,
				Reason: RejectInvalidLeverage,
				Detail: err.Error(),
			})
			continue
		}
		sig.Leverage = lev

		score := CalculateSignalScore(sig, a.cfg)
		if score < a.qualityThreshold {
			result.Rejections = append(result.Rejections, RejectedSignal{
				Symbol:       sig.Symbol,
				Reason:       RejectBelowThreshold,
				QualityScore: score,
			})
			continue
		}
		survivors = append(survivors, scoredSignal{signal: sig, score: score})
	}
	result.Summary.ScoredCount = len(survivors)

	if len(survivors) == 0 {
		log.Info().Int("input_count", len(signals)).
			Float64("quality_threshold", a.qualityThreshold).
			Msg("no signals passed the quality gate")
		result.Summary.AbortReason = AbortNoSurvivors
		result.Summary.RejectedCount = len(result.Rejections)
		return result
	}

	// Step 3: competitive ranking, stable so ties keep input order.
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].score > survivors[j].score
	})

	// Step 4: budget pool, shrunk by margin health.
	totalBudget := margin * a.cfg.MaxTotalBudgetRatio
	maxSingleBudget := a.account.TotalEquity * a.cfg.MaxSinglePositionRatio
	maxAllowedTotalMargin := a.account.TotalBalance * a.cfg.MaxTotalMarginRatio

	health := a.marginCtl.CheckMarginHealth(a.account.TotalMargin, maxAllowedTotalMargin)
	result.Summary.MarginStatus = health.Status
	result.Summary.BudgetMultiplier = health.BudgetMultiplier
	result.Summary.MarginHealth = health
	result.Summary.RawBudget = totalBudget

	totalBudget = a.marginCtl.ApplyBudgetProtection(totalBudget, health)
	result.Summary.ProtectedBudget = totalBudget

	if totalBudget <= 0 {
		log.Warn().
			Str("margin_status", string(health.Status)).
			Float64("usage_ratio", health.UsageRatio).
			Msg("no budget after margin protection, aborting pass")
		result.Summary.AbortReason = AbortNoBudget
		result.Summary.RejectedCount = len(result.Rejections)
		return result
	}

	// Step 5: total score is batch-fatal. Survivors each cleared a positive
	// gate, so a non-positive sum means corrupted arithmetic upstream.
	var totalScore float64
	for _, s := range survivors {
		totalScore += s.score
	}
	totalScore, err = a.validator.ValidateTotalScore(totalScore, len(survivors))
	if err != nil {
		log.Error().Err(err).Msg("invalid total score, aborting pass")
		result.Summary.AbortReason = AbortInvalidScore
		result.Summary.RejectedCount = len(result.Rejections)
		return result
	}

	// Step 6: greedy depleting allocation in rank order. Shares are fixed
	// against the original pool; a rejected candidate's share is not
	// redistributed, it just stays unspent.
	remainingBudget := totalBudget
	for i, s := range survivors {
		if remainingBudget <= 0 {
			for _, rest := range survivors[i:] {
				result.Rejections = append(result.Rejections, RejectedSignal{
					Symbol:       rest.signal.Symbol,
					Reason:       RejectBudgetExhausted,
					QualityScore: rest.score,
				})
			}
			break
		}

		allocationRatio := a.validator.SafeDivision(s.score, totalScore, "allocation_ratio", 0)
		theoreticalBudget := totalBudget * allocationRatio
		maxBudgetForLeverage := a.validator.SafeDivision(
			maxSingleBudget, s.signal.Leverage, "max_budget_for_leverage", maxSingleBudget)

		actualBudget := min3(theoreticalBudget, maxBudgetForLeverage, remainingBudget)
		if actualBudget <= 0 {
			log.Debug().
				Str("symbol", s.signal.Symbol).
				Float64("score", s.score).
				Float64("theoretical_budget", theoreticalBudget).
				Float64("leverage_cap", maxBudgetForLeverage).
				Msg("zero budget after cap intersection, skipping signal")
			result.Rejections = append(result.Rejections, RejectedSignal{
				Symbol:       s.signal.Symbol,
				Reason:       RejectZeroBudget,
				QualityScore: s.score,
			})
			continue
		}

		result.Allocations = append(result.Allocations, AllocatedSignal{
			Signal:          s.signal,
			AllocatedBudget: actualBudget,
			AllocationRatio: allocationRatio,
			QualityScore:    s.score,
		})
		remainingBudget -= actualBudget
	}

	result.Summary.FundedCount = len(result.Allocations)
	result.Summary.RejectedCount = len(result.Rejections)
	result.Summary.RemainingBudget = remainingBudget
	result.Summary.SpentBudget = totalBudget - remainingBudget

	log.Info().
		Int("input_count", result.Summary.InputCount).
		Int("funded", result.Summary.FundedCount).
		Int("rejected", result.Summary.RejectedCount).
		Float64("budget", totalBudget).
		Float64("spent", result.Summary.SpentBudget).
		Str("margin_status", string(health.Status)).
		Msg("allocation pass complete")

	return result
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
