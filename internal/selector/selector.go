// Package selector implements strategy meta-selection: on every bar it
// re-evaluates a set of candidate strategies over recent history, persists
// the winner per symbol, and delegates the trading decision to it.
package selector

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/Atypix/Smart100-sub002/internal/backtest"
	"github.com/Atypix/Smart100-sub002/internal/logger"
	"github.com/Atypix/Smart100-sub002/internal/metrics"
	"github.com/Atypix/Smart100-sub002/internal/optimizer"
	"github.com/Atypix/Smart100-sub002/internal/strategy"
	"github.com/Atypix/Smart100-sub002/internal/types"
	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// SelectorID is the registry id of the meta selector. It is excluded from
// its own candidate set.
const SelectorID = "meta_selector"

// SelectionState is the read surface over the per-symbol selection memory.
type SelectionState struct {
	ChosenStrategyID   string         `json:"chosenStrategyId" yaml:"chosen_strategy_id"`
	ChosenStrategyName string         `json:"chosenStrategyName" yaml:"chosen_strategy_name"`
	ParametersUsed     map[string]any `json:"parametersUsed" yaml:"parameters_used"`
}

// MetaSelector is a strategy that trades by delegation. Each bar it scores
// every candidate strategy over the evaluation window, records the winner
// for the symbol, and executes the winner against the live context. Every
// failure mode degrades to a hold signal; evaluation never aborts a run.
type MetaSelector struct {
	registry strategy.Registry
	store    SelectionStore
	sim      *backtest.Simulator
	logger   *logger.Logger
	opts     Options
}

// NewMetaSelector creates a selector over the given registry and store.
func NewMetaSelector(registry strategy.Registry, store SelectionStore, logger *logger.Logger, opts Options) (*MetaSelector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &MetaSelector{
		registry: registry,
		store:    store,
		sim:      backtest.NewSimulator(logger),
		logger:   logger,
		opts:     opts,
	}, nil
}

// ID implements strategy.Strategy.
func (s *MetaSelector) ID() string { return SelectorID }

// Name implements strategy.Strategy.
func (s *MetaSelector) Name() string { return "Meta Selector" }

// ParameterSchema implements strategy.Strategy. The selector is tuned
// through Options rather than the parameter grid, so the schema is empty.
func (s *MetaSelector) ParameterSchema() []optimizer.ParameterSpec { return nil }

// Execute implements strategy.Strategy using the constructor options.
func (s *MetaSelector) Execute(ctx *strategy.StrategyContext) (types.Signal, error) {
	return s.EvaluateAndExecute(ctx, s.opts)
}

// EvaluateAndExecute evaluates all candidates over the window of bars
// strictly preceding the current one, persists the winning selection for
// the symbol, and executes the winner with its winning parameters merged
// over its defaults.
func (s *MetaSelector) EvaluateAndExecute(ctx *strategy.StrategyContext, opts Options) (types.Signal, error) {
	bar := ctx.CurrentBar()

	candidates := s.candidates(opts)
	if len(candidates) == 0 {
		s.logger.Debug("no candidate strategies available",
			zap.String("symbol", ctx.Symbol))

		return s.hold(ctx.Symbol, bar.Time, "no candidate strategies"), nil
	}

	// The window holds fully known bars only, so the current bar never
	// leaks into its own evaluation.
	lookback := opts.EvaluationLookbackPeriod
	if ctx.CurrentIndex < lookback {
		return s.hold(ctx.Symbol, bar.Time, "insufficient history for evaluation"), nil
	}

	window := ctx.HistoricalData[ctx.CurrentIndex-lookback : ctx.CurrentIndex]
	metric := opts.metric(s.logger)

	evalStart := time.Now()

	best := optional.None[types.EvaluationResult]()
	for _, candidate := range candidates {
		eval := s.evaluateCandidate(candidate, window, metric, opts)

		// Strictly greater wins; on a tie the earlier candidate in
		// registration order stands.
		if best.IsNone() || eval.BestScore > best.Unwrap().BestScore {
			best = optional.Some(eval)
		}
	}

	metrics.SelectionDuration.Observe(time.Since(evalStart).Seconds())

	if best.IsNone() {
		return s.hold(ctx.Symbol, bar.Time, "no candidate produced a score"), nil
	}

	winner := best.Unwrap()

	record := types.SelectionRecord{
		StrategyID:   winner.StrategyID,
		StrategyName: s.candidateName(candidates, winner.StrategyID),
		Parameters:   winner.BestParameters,
		Score:        winner.BestScore,
		Metric:       string(metric),
		SelectedAt:   bar.Time,
	}

	if err := s.store.Put(ctx.Symbol, record); err != nil {
		s.logger.Error("failed to persist selection",
			zap.String("symbol", ctx.Symbol),
			zap.String("strategy", winner.StrategyID),
			zap.Error(err))
	}

	resolved, err := s.registry.Get(winner.StrategyID)
	if err != nil {
		s.logger.Error("winning strategy could not be resolved",
			zap.String("symbol", ctx.Symbol),
			zap.String("strategy", winner.StrategyID),
			zap.Error(err))

		return s.hold(ctx.Symbol, bar.Time, "winning strategy could not be resolved"), nil
	}

	execCtx := *ctx
	execCtx.Parameters = strategy.MergeParams(resolved.ParameterSchema(), winner.BestParameters)

	signal, err := resolved.Execute(&execCtx)
	if err != nil {
		s.logger.Error("winning strategy failed to execute",
			zap.String("symbol", ctx.Symbol),
			zap.String("strategy", winner.StrategyID),
			zap.Error(err))

		return s.hold(ctx.Symbol, bar.Time, "winning strategy failed to execute"), nil
	}

	return signal, nil
}

// hold builds a hold signal and counts the fallback.
func (s *MetaSelector) hold(symbol string, t time.Time, reason string) types.Signal {
	metrics.HoldFallbacksTotal.WithLabelValues(reason).Inc()

	return types.Hold(symbol, t, reason)
}

// GetSelectionState reports the current selection for a symbol, or none
// when no evaluation has completed for it. The strategy name is resolved
// from the registry when the strategy is still registered.
func (s *MetaSelector) GetSelectionState(symbol string) (optional.Option[SelectionState], error) {
	record, err := s.store.Get(symbol)
	if err != nil {
		return optional.None[SelectionState](), errors.Wrapf(errors.ErrCodeQueryFailed, err, "GetSelectionState: reading selection for %s", symbol)
	}

	if record.IsNone() {
		return optional.None[SelectionState](), nil
	}

	rec := record.Unwrap()

	name := rec.StrategyName
	if resolved, err := s.registry.Get(rec.StrategyID); err == nil {
		name = resolved.Name()
	}

	return optional.Some(SelectionState{
		ChosenStrategyID:   rec.StrategyID,
		ChosenStrategyName: name,
		ParametersUsed:     rec.Parameters,
	}), nil
}

// candidates lists evaluable strategies in registration order, excluding
// the selector itself and, when an allowlist is configured, anything not
// on it.
func (s *MetaSelector) candidates(opts Options) []strategy.Strategy {
	var allowed map[string]struct{}
	if len(opts.CandidateStrategyIDs) > 0 {
		allowed = make(map[string]struct{}, len(opts.CandidateStrategyIDs))
		for _, id := range opts.CandidateStrategyIDs {
			allowed[id] = struct{}{}
		}
	}

	candidates := make([]strategy.Strategy, 0, s.registry.Count())
	for _, strat := range s.registry.List() {
		if strat.ID() == s.ID() {
			continue
		}

		if allowed != nil {
			if _, ok := allowed[strat.ID()]; !ok {
				continue
			}
		}

		candidates = append(candidates, strat)
	}

	return candidates
}

func (s *MetaSelector) candidateName(candidates []strategy.Strategy, id string) string {
	for _, candidate := range candidates {
		if candidate.ID() == id {
			return candidate.Name()
		}
	}

	return id
}

// evaluateCandidate scores the candidate over the window, sweeping its
// parameter grid when optimization is on and its schema has optimizable
// dimensions. Ties keep the earliest combination in grid order.
func (s *MetaSelector) evaluateCandidate(candidate strategy.Strategy, window []types.MarketData, metric backtest.Metric, opts Options) types.EvaluationResult {
	metrics.EvaluationsTotal.WithLabelValues(candidate.ID()).Inc()

	combos := []optimizer.Combination{optimizer.Defaults(candidate.ParameterSchema())}

	if opts.OptimizeParameters {
		expanded, warnings := optimizer.Expand(candidate.ParameterSchema())
		for _, warning := range warnings {
			metrics.GridWarningsTotal.WithLabelValues(candidate.ID()).Inc()
			s.logger.Warn("parameter grid warning",
				zap.String("strategy", candidate.ID()),
				zap.String("warning", warning))
		}

		combos = expanded
	}

	scores := s.sweep(candidate, window, combos, metric, opts.Parallelism)

	bestIdx := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[bestIdx] {
			bestIdx = i
		}
	}

	return types.EvaluationResult{
		StrategyID:     candidate.ID(),
		BestScore:      scores[bestIdx],
		BestParameters: combos[bestIdx],
	}
}

// sweep scores every combination, sequentially or with a bounded worker
// pool. Scores land at their combination's index either way, so the
// caller's first-found tie-break is independent of completion order.
func (s *MetaSelector) sweep(candidate strategy.Strategy, window []types.MarketData, combos []optimizer.Combination, metric backtest.Metric, parallelism int) []float64 {
	scores := make([]float64, len(combos))

	if parallelism <= 1 || len(combos) == 1 {
		for i, combo := range combos {
			scores[i] = s.sim.Run(candidate, window, combo).Score(metric)
		}

		return scores
	}

	var wg sync.WaitGroup

	sem := make(chan struct{}, parallelism)

	for i, combo := range combos {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, combo optimizer.Combination) {
			defer wg.Done()
			defer func() { <-sem }()

			scores[i] = s.sim.Run(candidate, window, combo).Score(metric)
		}(i, combo)
	}

	wg.Wait()

	return scores
}
