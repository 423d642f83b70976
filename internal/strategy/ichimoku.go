package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"

	"github.com/Atypix/Smart100-sub002/internal/optimizer"
	"github.com/Atypix/Smart100-sub002/internal/types"
)

// IchimokuCloud trades the Ichimoku trend system: a Tenkan/Kijun cross
// filtered by the price's side of the cloud and confirmed by the Chikou
// span.
//
// The cloud is computed at the current index without forward displacement,
// and the Chikou confirmation compares the lagged close against that
// current-index cloud, not against the cloud at the lagged index. This is a
// simplification of the canonical indicator and is kept intentionally.
type IchimokuCloud struct{}

// NewIchimokuCloud creates a new Ichimoku cloud strategy.
func NewIchimokuCloud() *IchimokuCloud {
	return &IchimokuCloud{}
}

// ID implements Strategy.
func (i *IchimokuCloud) ID() string {
	return "ichimoku_cloud"
}

// Name implements Strategy.
func (i *IchimokuCloud) Name() string {
	return "Ichimoku Cloud"
}

// ParameterSchema implements Strategy.
func (i *IchimokuCloud) ParameterSchema() []optimizer.ParameterSpec {
	return []optimizer.ParameterSpec{
		{
			Name:        "tenkanPeriod",
			Description: "Conversion line period",
			Type:        optimizer.TypeInt,
			Default:     9,
			Min:         optional.Some(5.0),
			Max:         optional.Some(15.0),
			Step:        optional.Some(2.0),
		},
		{
			Name:        "kijunPeriod",
			Description: "Base line period, also the Chikou span displacement",
			Type:        optimizer.TypeInt,
			Default:     26,
			Min:         optional.Some(20.0),
			Max:         optional.Some(34.0),
			Step:        optional.Some(7.0),
		},
		{
			Name:        "senkouBPeriod",
			Description: "Leading span B period",
			Type:        optimizer.TypeInt,
			Default:     52,
		},
	}
}

// Execute implements Strategy.
func (i *IchimokuCloud) Execute(ctx *StrategyContext) (types.Signal, error) {
	tenkanPeriod := ParamInt(ctx.Parameters, "tenkanPeriod", 9)
	kijunPeriod := ParamInt(ctx.Parameters, "kijunPeriod", 26)
	senkouBPeriod := ParamInt(ctx.Parameters, "senkouBPeriod", 52)

	bar := ctx.CurrentBar()

	if tenkanPeriod <= 0 || kijunPeriod <= 0 || senkouBPeriod <= 0 {
		return types.Hold(ctx.Symbol, bar.Time, "invalid ichimoku periods"), nil
	}

	known := ctx.KnownBars()

	required := senkouBPeriod + 1
	if kijunPeriod+1 > required {
		required = kijunPeriod + 1
	}

	if len(known) < required {
		return types.Hold(ctx.Symbol, bar.Time, "insufficient history for ichimoku"), nil
	}

	tenkan := midpoint(known, tenkanPeriod)
	kijun := midpoint(known, kijunPeriod)

	prev := known[:len(known)-1]
	prevTenkan := midpoint(prev, tenkanPeriod)
	prevKijun := midpoint(prev, kijunPeriod)

	// Current-index cloud, no forward displacement.
	senkouA := (tenkan + kijun) / 2
	senkouB := midpoint(known, senkouBPeriod)

	cloudTop := senkouA
	cloudBottom := senkouB

	if senkouB > senkouA {
		cloudTop = senkouB
		cloudBottom = senkouA
	}

	price := known[len(known)-1].Close
	laggedClose := known[len(known)-1-kijunPeriod].Close

	// Buy: Tenkan crosses above Kijun with price above the cloud and the
	// Chikou span above the current-index cloud.
	if tenkan > kijun && prevTenkan <= prevKijun && price > cloudTop && laggedClose > cloudTop {
		return types.Signal{
			Time:       bar.Time,
			Type:       types.SignalTypeBuy,
			Amount:     1,
			Reason:     fmt.Sprintf("tenkan %.4f crossed above kijun %.4f above cloud", tenkan, kijun),
			Symbol:     ctx.Symbol,
			StrategyID: i.ID(),
		}, nil
	}

	// Sell: the mirrored cross below the cloud.
	if tenkan < kijun && prevTenkan >= prevKijun && price < cloudBottom && laggedClose < cloudBottom {
		return types.Signal{
			Time:       bar.Time,
			Type:       types.SignalTypeSell,
			Amount:     1,
			Reason:     fmt.Sprintf("tenkan %.4f crossed below kijun %.4f below cloud", tenkan, kijun),
			Symbol:     ctx.Symbol,
			StrategyID: i.ID(),
		}, nil
	}

	return types.Hold(ctx.Symbol, bar.Time, "no confirmed ichimoku signal"), nil
}

// midpoint returns the middle of the highest high and lowest low over the
// last period bars.
func midpoint(data []types.MarketData, period int) float64 {
	if len(data) < period || period <= 0 {
		return 0
	}

	window := data[len(data)-period:]

	highest := window[0].High
	lowest := window[0].Low

	for _, bar := range window[1:] {
		if bar.High > highest {
			highest = bar.High
		}

		if bar.Low < lowest {
			lowest = bar.Low
		}
	}

	return (highest + lowest) / 2
}
