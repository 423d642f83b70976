// Package datasource provides read access to historical bar data stored in
// parquet or CSV files, queried through DuckDB.
package datasource

import (
	"iter"
	"time"

	"github.com/moznion/go-optional"

	"github.com/Atypix/Smart100-sub002/internal/types"
)

// SQLResult is one row of an ad-hoc query, keyed by column name.
type SQLResult struct {
	Values map[string]any
}

// BarSource serves ordered historical bars to the engine.
type BarSource interface {
	// Initialize points the source at a data file (parquet or CSV; glob
	// patterns are accepted).
	Initialize(path string) error
	// ReadAll yields every bar in time order, optionally bounded.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) iter.Seq2[types.MarketData, error]
	// GetRange returns bars between start and end inclusive, optionally
	// aggregated to the given interval.
	GetRange(start time.Time, end time.Time, interval optional.Option[types.Interval]) ([]types.MarketData, error)
	// ReadLastData returns the most recent bar for a symbol.
	ReadLastData(symbol string) (types.MarketData, error)
	// ReadRecentBars returns the latest count bars for a symbol in
	// chronological order.
	ReadRecentBars(symbol string, count int) ([]types.MarketData, error)
	// Count returns the number of bars, optionally bounded.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Symbols returns the distinct symbols present in the data.
	Symbols() ([]string, error)
	// ExecuteSQL runs an ad-hoc query against the underlying store.
	ExecuteSQL(query string, params ...any) ([]SQLResult, error)
	// Close releases the underlying store.
	Close() error
}
