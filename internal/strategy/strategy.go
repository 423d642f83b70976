package strategy

import (
	"github.com/moznion/go-optional"

	"github.com/Atypix/Smart100-sub002/internal/optimizer"
	"github.com/Atypix/Smart100-sub002/internal/types"
)

// PortfolioView is the read-only account state a strategy may consult.
type PortfolioView struct {
	// Cash is the available cash balance.
	Cash float64
	// Position is the currently open position, if any.
	Position optional.Option[types.Position]
}

// StrategyContext carries everything a strategy may consult when deciding
// on a bar. HistoricalData[CurrentIndex] is the bar being decided on; bars
// before it are fully known, bars at or after it must not influence the
// decision.
type StrategyContext struct {
	// Symbol being decided on.
	Symbol string
	// HistoricalData is the ordered bar sequence.
	HistoricalData []types.MarketData
	// CurrentIndex is the index of the bar being decided on.
	CurrentIndex int
	// Parameters is the parameter set in force for this execution.
	Parameters optimizer.Combination
	// Portfolio is the account view.
	Portfolio PortfolioView
	// TradeHistory lists the completed trades so far.
	TradeHistory []types.Trade
	// CurrentSignal is the most recent signal in force.
	CurrentSignal types.SignalType
	// SignalHistory lists the signals produced so far.
	SignalHistory []types.Signal
}

// CurrentBar returns the bar being decided on.
func (ctx *StrategyContext) CurrentBar() types.MarketData {
	return ctx.HistoricalData[ctx.CurrentIndex]
}

// KnownBars returns the fully known bars, those strictly before the
// current index.
func (ctx *StrategyContext) KnownBars() []types.MarketData {
	if ctx.CurrentIndex > len(ctx.HistoricalData) {
		return ctx.HistoricalData
	}

	return ctx.HistoricalData[:ctx.CurrentIndex]
}

// Strategy interface defines methods that any trading strategy must implement.
// Strategies are value-like: registered once and never mutated by the engine.
type Strategy interface {
	// ID returns the unique identifier of the strategy, used as the registry key.
	ID() string
	// Name returns the human-readable name of the strategy.
	Name() string
	// ParameterSchema returns the ordered parameter schema.
	ParameterSchema() []optimizer.ParameterSpec
	// Execute maps a context to a trading signal.
	Execute(ctx *StrategyContext) (types.Signal, error)
}

// Resettable is implemented by strategies that carry internal state which
// must be cleared between runs. The registry invokes Reset on every resolve.
type Resettable interface {
	Reset()
}
