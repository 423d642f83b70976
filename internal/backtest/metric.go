package backtest

import (
	"math"

	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// Metric names a scoring function over a simulation result.
type Metric string

const (
	// MetricPnl scores by cumulative realized profit and loss.
	MetricPnl Metric = "pnl"
	// MetricWinRate scores by the share of profitable trades.
	MetricWinRate Metric = "winRate"
	// MetricSharpe scores by the ratio of the mean per-bar return to its
	// sample standard deviation.
	MetricSharpe Metric = "sharpe"
)

// AllMetrics lists every metric name accepted by ParseMetric.
var AllMetrics = []any{
	MetricPnl,
	MetricWinRate,
	MetricSharpe,
}

// sharpeSentinel stands in for an unbounded ratio when the returns carry a
// non-zero mean but no variance at all.
const sharpeSentinel = 1000.0

// ParseMetric maps a metric name to its Metric, rejecting unknown names.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricPnl, MetricWinRate, MetricSharpe:
		return Metric(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidMetric, "ParseMetric: unknown metric %q", s)
	}
}

// Score reduces the result to the requested metric.
func (r *Result) Score(metric Metric) float64 {
	switch metric {
	case MetricWinRate:
		return r.WinRate()
	case MetricSharpe:
		return r.Sharpe()
	default:
		return r.Pnl
	}
}

// WinRate is the share of profitable trades, 0 when no trade completed.
func (r *Result) WinRate() float64 {
	if len(r.Trades) == 0 {
		return 0
	}

	return float64(r.Wins) / float64(len(r.Trades))
}

// Sharpe is the mean per-bar return divided by the sample standard
// deviation of the returns. Fewer than two returns score 0. A zero
// standard deviation scores the sentinel with the sign of the mean.
func (r *Result) Sharpe() float64 {
	if len(r.Returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, ret := range r.Returns {
		mean += ret
	}

	mean /= float64(len(r.Returns))

	variance := 0.0
	for _, ret := range r.Returns {
		variance += math.Pow(ret-mean, 2)
	}

	variance /= float64(len(r.Returns) - 1)

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		switch {
		case mean > 0:
			return sharpeSentinel
		case mean < 0:
			return -sharpeSentinel
		default:
			return 0
		}
	}

	return mean / stdDev
}
