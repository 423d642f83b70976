package selector

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Atypix/Smart100-sub002/internal/backtest"
	"github.com/Atypix/Smart100-sub002/internal/logger"
	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// Options configures candidate evaluation.
type Options struct {
	// EvaluationLookbackPeriod is the number of fully known bars each
	// candidate is replayed over. Required.
	EvaluationLookbackPeriod int `json:"evaluationLookbackPeriod" yaml:"evaluation_lookback_period" validate:"required,gt=0"`
	// CandidateStrategyIDs restricts evaluation to the listed strategy ids
	// when non-empty. Ids absent from the registry are ignored.
	CandidateStrategyIDs []string `json:"candidateStrategyIds" yaml:"candidate_strategy_ids"`
	// EvaluationMetric scores candidate runs. Empty or unrecognized values
	// fall back to pnl.
	EvaluationMetric backtest.Metric `json:"evaluationMetric" yaml:"evaluation_metric"`
	// OptimizeParameters sweeps each candidate's parameter grid when true
	// instead of evaluating defaults only.
	OptimizeParameters bool `json:"optimizeParameters" yaml:"optimize_parameters"`
	// Parallelism caps concurrent simulator runs during a sweep.
	// Values below 2 run the sweep sequentially.
	Parallelism int `json:"parallelism" yaml:"parallelism" validate:"gte=0"`
}

// Validate checks the options against their constraints.
func (o Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, "Validate: invalid selector options", err)
	}

	return nil
}

// metric resolves the configured evaluation metric, falling back to pnl
// for empty or unknown names.
func (o Options) metric(log *logger.Logger) backtest.Metric {
	if o.EvaluationMetric == "" {
		return backtest.MetricPnl
	}

	metric, err := backtest.ParseMetric(string(o.EvaluationMetric))
	if err != nil {
		log.Warn("unknown evaluation metric, falling back to pnl",
			zap.String("metric", string(o.EvaluationMetric)))

		return backtest.MetricPnl
	}

	return metric
}
