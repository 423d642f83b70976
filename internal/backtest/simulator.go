// Package backtest replays strategy signals over historical bars and scores
// the outcome. It is the measuring device behind candidate selection, so it
// favors a deliberately small execution model over brokerage realism.
package backtest

import (
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Atypix/Smart100-sub002/internal/logger"
	"github.com/Atypix/Smart100-sub002/internal/metrics"
	"github.com/Atypix/Smart100-sub002/internal/optimizer"
	"github.com/Atypix/Smart100-sub002/internal/strategy"
	"github.com/Atypix/Smart100-sub002/internal/types"
)

// initialCash is the synthetic balance exposed to strategies during a
// replay. Positions are sized at one unit, so it only has to be positive.
const initialCash = 100_000

// Result aggregates one simulated replay.
type Result struct {
	// Trades lists completed round trips, including the terminal
	// mark-to-market close when the run ends with an open position.
	Trades []types.Trade
	// Returns holds one portfolio return per window bar.
	Returns []float64
	// Pnl is the cumulative realized profit and loss.
	Pnl float64
	// Wins counts trades with positive pnl.
	Wins int
}

// Simulator replays a strategy over a bar window under a single-position
// model: at most one open position, long or short, one unit.
type Simulator struct {
	logger *logger.Logger
}

// NewSimulator creates a simulator.
func NewSimulator(logger *logger.Logger) *Simulator {
	return &Simulator{logger: logger}
}

// Run replays strat over window with the given parameter set and returns
// the aggregated result. Signals fill at the close of the bar they were
// decided on. An opposite signal only closes the open position; flipping to
// the other side takes a second signal. A position still open after the
// last bar is closed at that bar's close. The window is never mutated.
func (s *Simulator) Run(strat strategy.Strategy, window []types.MarketData, params optimizer.Combination) *Result {
	metrics.SimulationsTotal.WithLabelValues(strat.ID()).Inc()

	result := &Result{
		Trades:  make([]types.Trade, 0),
		Returns: make([]float64, 0, len(window)),
	}

	if len(window) == 0 {
		return result
	}

	if r, ok := strat.(strategy.Resettable); ok {
		r.Reset()
	}

	symbol := window[0].Symbol
	pnl := decimal.Zero
	lastSignal := types.SignalTypeHold
	signals := make([]types.Signal, 0, len(window))

	var position optional.Option[types.Position]

	for i, bar := range window {
		// The return of a bar belongs to the position carried into it,
		// so it is taken before this bar's signal fills.
		result.Returns = append(result.Returns, barReturn(position, window, i))

		ctx := &strategy.StrategyContext{
			Symbol:         symbol,
			HistoricalData: window,
			CurrentIndex:   i,
			Parameters:     params,
			Portfolio:      strategy.PortfolioView{Cash: initialCash, Position: position},
			TradeHistory:   result.Trades,
			CurrentSignal:  lastSignal,
			SignalHistory:  signals,
		}

		signal, err := strat.Execute(ctx)
		if err != nil {
			s.logger.Warn("strategy execution failed, holding for this bar",
				zap.String("strategy", strat.ID()),
				zap.Int("bar", i),
				zap.Error(err))

			metrics.HoldFallbacksTotal.WithLabelValues("execution error").Inc()

			signal = types.Hold(symbol, bar.Time, "execution error")
		}

		signals = append(signals, signal)
		lastSignal = signal.Type

		switch signal.Type {
		case types.SignalTypeBuy:
			if position.IsNone() {
				position = optional.Some(types.Position{
					Symbol:     symbol,
					Side:       types.PositionSideLong,
					EntryPrice: bar.Close,
					OpenTime:   bar.Time,
				})
			} else if pos := position.Unwrap(); pos.Side == types.PositionSideShort {
				pnl = pnl.Add(s.closePosition(result, pos, bar))
				position = optional.None[types.Position]()
			}
		case types.SignalTypeSell:
			if position.IsNone() {
				position = optional.Some(types.Position{
					Symbol:     symbol,
					Side:       types.PositionSideShort,
					EntryPrice: bar.Close,
					OpenTime:   bar.Time,
				})
			} else if pos := position.Unwrap(); pos.Side == types.PositionSideLong {
				pnl = pnl.Add(s.closePosition(result, pos, bar))
				position = optional.None[types.Position]()
			}
		}
	}

	// Mark a position that survived the window to the final close.
	if position.IsSome() {
		pnl = pnl.Add(s.closePosition(result, position.Unwrap(), window[len(window)-1]))
	}

	result.Pnl = pnl.InexactFloat64()

	return result
}

// closePosition realizes a round trip at the bar close and tallies it.
func (s *Simulator) closePosition(result *Result, pos types.Position, bar types.MarketData) decimal.Decimal {
	tradePnl := pos.UnrealizedPnl(bar.Close)

	result.Trades = append(result.Trades, types.Trade{
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  bar.Close,
		EntryTime:  pos.OpenTime,
		ExitTime:   bar.Time,
		Pnl:        tradePnl,
	})

	if tradePnl > 0 {
		result.Wins++
	}

	return decimal.NewFromFloat(tradePnl)
}

// barReturn is the portfolio return of bar i for the position carried into
// it. The first bar has no prior close and returns 0, as do flat bars.
func barReturn(position optional.Option[types.Position], window []types.MarketData, i int) float64 {
	if i == 0 || position.IsNone() {
		return 0
	}

	prevClose := window[i-1].Close
	if prevClose == 0 {
		return 0
	}

	ret := (window[i].Close - prevClose) / prevClose
	if position.Unwrap().Side == types.PositionSideShort {
		ret = -ret
	}

	return ret
}
