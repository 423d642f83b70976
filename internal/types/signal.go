package types

import "time"

type SignalType string

const (
	// SignalTypeBuy is a signal that tells the engine to open or cover a position
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell is a signal that tells the engine to close or short a position
	SignalTypeSell SignalType = "sell"
	// SignalTypeHold is a signal that tells the engine to take no action
	SignalTypeHold SignalType = "hold"
)

type Signal struct {
	// Time is the time of the signal
	Time time.Time
	// Type is the type of the signal
	Type SignalType
	// Amount is the quantity the signal wants to trade
	Amount float64
	// Reason is the reason for the signal
	Reason string
	// Symbol is the symbol of the signal
	Symbol string
	// StrategyID is the id of the strategy that produced the signal
	StrategyID string
}

// Hold returns a hold signal for the given symbol and time.
func Hold(symbol string, t time.Time, reason string) Signal {
	return Signal{
		Time:   t,
		Type:   SignalTypeHold,
		Reason: reason,
		Symbol: symbol,
	}
}
