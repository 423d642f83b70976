package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"

	"github.com/Atypix/Smart100-sub002/internal/optimizer"
	"github.com/Atypix/Smart100-sub002/internal/types"
)

// SMACrossover buys when the fast moving average crosses above the slow one
// and sells when it crosses below.
type SMACrossover struct{}

// NewSMACrossover creates a new SMA crossover strategy.
func NewSMACrossover() *SMACrossover {
	return &SMACrossover{}
}

// ID implements Strategy.
func (s *SMACrossover) ID() string {
	return "sma_crossover"
}

// Name implements Strategy.
func (s *SMACrossover) Name() string {
	return "SMA Crossover"
}

// ParameterSchema implements Strategy.
func (s *SMACrossover) ParameterSchema() []optimizer.ParameterSpec {
	return []optimizer.ParameterSpec{
		{
			Name:        "fastPeriod",
			Description: "Period of the fast moving average",
			Type:        optimizer.TypeInt,
			Default:     10,
			Min:         optional.Some(5.0),
			Max:         optional.Some(20.0),
			Step:        optional.Some(5.0),
		},
		{
			Name:        "slowPeriod",
			Description: "Period of the slow moving average",
			Type:        optimizer.TypeInt,
			Default:     30,
			Min:         optional.Some(20.0),
			Max:         optional.Some(50.0),
			Step:        optional.Some(10.0),
		},
	}
}

// Execute implements Strategy.
func (s *SMACrossover) Execute(ctx *StrategyContext) (types.Signal, error) {
	fastPeriod := ParamInt(ctx.Parameters, "fastPeriod", 10)
	slowPeriod := ParamInt(ctx.Parameters, "slowPeriod", 30)

	bar := ctx.CurrentBar()

	if fastPeriod >= slowPeriod {
		return types.Hold(ctx.Symbol, bar.Time, fmt.Sprintf("fast period %d not below slow period %d", fastPeriod, slowPeriod)), nil
	}

	known := ctx.KnownBars()

	// The crossover needs the slow average at the latest known bar and at
	// the bar before it.
	if len(known) < slowPeriod+1 {
		return types.Hold(ctx.Symbol, bar.Time, "insufficient history for slow moving average"), nil
	}

	fastMA := calculateSMA(known, fastPeriod)
	slowMA := calculateSMA(known, slowPeriod)

	prev := known[:len(known)-1]
	prevFastMA := calculateSMA(prev, fastPeriod)
	prevSlowMA := calculateSMA(prev, slowPeriod)

	// Buy signal: fast MA crosses above slow MA
	if fastMA > slowMA && prevFastMA <= prevSlowMA {
		return types.Signal{
			Time:       bar.Time,
			Type:       types.SignalTypeBuy,
			Amount:     1,
			Reason:     fmt.Sprintf("fast SMA %.4f crossed above slow SMA %.4f", fastMA, slowMA),
			Symbol:     ctx.Symbol,
			StrategyID: s.ID(),
		}, nil
	}

	// Sell signal: fast MA crosses below slow MA
	if fastMA < slowMA && prevFastMA >= prevSlowMA {
		return types.Signal{
			Time:       bar.Time,
			Type:       types.SignalTypeSell,
			Amount:     1,
			Reason:     fmt.Sprintf("fast SMA %.4f crossed below slow SMA %.4f", fastMA, slowMA),
			Symbol:     ctx.Symbol,
			StrategyID: s.ID(),
		}, nil
	}

	return types.Hold(ctx.Symbol, bar.Time, "no crossover"), nil
}

// calculateSMA calculates the simple moving average over the last period bars.
func calculateSMA(data []types.MarketData, period int) float64 {
	if len(data) < period || period <= 0 {
		return 0
	}

	sum := 0.0
	for i := len(data) - period; i < len(data); i++ {
		sum += data[i].Close
	}

	return sum / float64(period)
}
