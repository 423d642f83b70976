package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Position represents a single open position. The simulation model allows at
// most one open position at a time, so quantity is implicit.
type Position struct {
	Symbol     string       `csv:"symbol"`
	Side       PositionSide `csv:"side"`
	EntryPrice float64      `csv:"entry_price"`
	OpenTime   time.Time    `csv:"open_time"`
}

// UnrealizedPnl values the position against the given price.
// Long positions gain when the price rises, short positions when it falls.
func (p *Position) UnrealizedPnl(price float64) float64 {
	entryDec := decimal.NewFromFloat(p.EntryPrice)
	priceDec := decimal.NewFromFloat(price)

	var resultDec decimal.Decimal
	if p.Side == PositionSideShort {
		// the way we calculate short pnl is the opposite of long pnl
		resultDec = entryDec.Sub(priceDec)
	} else {
		resultDec = priceDec.Sub(entryDec)
	}

	return resultDec.InexactFloat64()
}

// Trade is a completed round trip through a position.
type Trade struct {
	Symbol     string       `csv:"symbol"`
	Side       PositionSide `csv:"side"`
	EntryPrice float64      `csv:"entry_price"`
	ExitPrice  float64      `csv:"exit_price"`
	EntryTime  time.Time    `csv:"entry_time"`
	ExitTime   time.Time    `csv:"exit_time"`
	// Pnl is the profit and loss for this trade.
	// For example, a long entered at $100.00 and exited at $110.00 has a pnl of $10.
	// A short entered at $100.00 and exited at $110.00 has a pnl of -$10.
	Pnl float64 `csv:"pnl"`
}
