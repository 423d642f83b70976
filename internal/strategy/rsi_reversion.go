package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"

	"github.com/Atypix/Smart100-sub002/internal/optimizer"
	"github.com/Atypix/Smart100-sub002/internal/types"
)

// RSIReversion trades mean reversion on the Relative Strength Index: buy
// when the market is oversold, sell when it is overbought.
type RSIReversion struct{}

// NewRSIReversion creates a new RSI reversion strategy.
func NewRSIReversion() *RSIReversion {
	return &RSIReversion{}
}

// ID implements Strategy.
func (r *RSIReversion) ID() string {
	return "rsi_reversion"
}

// Name implements Strategy.
func (r *RSIReversion) Name() string {
	return "RSI Reversion"
}

// ParameterSchema implements Strategy.
func (r *RSIReversion) ParameterSchema() []optimizer.ParameterSpec {
	return []optimizer.ParameterSpec{
		{
			Name:        "period",
			Description: "RSI lookback period",
			Type:        optimizer.TypeInt,
			Default:     14,
			Min:         optional.Some(7.0),
			Max:         optional.Some(21.0),
			Step:        optional.Some(7.0),
		},
		{
			Name:        "oversold",
			Description: "RSI level below which the market counts as oversold",
			Type:        optimizer.TypeFloat,
			Default:     30.0,
		},
		{
			Name:        "overbought",
			Description: "RSI level above which the market counts as overbought",
			Type:        optimizer.TypeFloat,
			Default:     70.0,
		},
	}
}

// Execute implements Strategy.
func (r *RSIReversion) Execute(ctx *StrategyContext) (types.Signal, error) {
	period := ParamInt(ctx.Parameters, "period", 14)
	oversold := ParamFloat(ctx.Parameters, "oversold", 30)
	overbought := ParamFloat(ctx.Parameters, "overbought", 70)

	bar := ctx.CurrentBar()
	known := ctx.KnownBars()

	if period <= 0 {
		return types.Hold(ctx.Symbol, bar.Time, fmt.Sprintf("invalid RSI period %d", period)), nil
	}

	if len(known) < period+1 {
		return types.Hold(ctx.Symbol, bar.Time, "insufficient history for RSI"), nil
	}

	rsi := calculateRSI(known, period)

	if rsi < oversold {
		return types.Signal{
			Time:       bar.Time,
			Type:       types.SignalTypeBuy,
			Amount:     1,
			Reason:     fmt.Sprintf("RSI oversold (value=%.2f)", rsi),
			Symbol:     ctx.Symbol,
			StrategyID: r.ID(),
		}, nil
	}

	if rsi > overbought {
		return types.Signal{
			Time:       bar.Time,
			Type:       types.SignalTypeSell,
			Amount:     1,
			Reason:     fmt.Sprintf("RSI overbought (value=%.2f)", rsi),
			Symbol:     ctx.Symbol,
			StrategyID: r.ID(),
		}, nil
	}

	return types.Hold(ctx.Symbol, bar.Time, fmt.Sprintf("RSI neutral (value=%.2f)", rsi)), nil
}

// calculateRSI computes the RSI over the last period+1 bars using Wilder's
// smoothing method.
func calculateRSI(data []types.MarketData, period int) float64 {
	window := data[len(data)-(period+1):]

	// Calculate price changes
	gains := make([]float64, 0, len(window)-1)
	losses := make([]float64, 0, len(window)-1)

	for i := 1; i < len(window); i++ {
		change := window[i].Close - window[i-1].Close
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Subsequent averages use Wilder's smoothing
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
