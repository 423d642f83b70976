package datasource

import (
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/Atypix/Smart100-sub002/internal/logger"
	"github.com/Atypix/Smart100-sub002/internal/types"
	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// marketDataView is the view name Initialize creates over the data file.
const marketDataView = "market_data"

// DuckDBSource reads bars from parquet or CSV files through a DuckDB view.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBSource opens a DuckDB database at path (":memory:" for an
// ephemeral one). Data is attached later with Initialize.
func NewDuckDBSource(path string, logger *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "NewDuckDBSource: opening database at %s", path)
	}

	return &DuckDBSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements BarSource. The path may be a single file or a glob
// pattern; the format is picked by extension.
func (d *DuckDBSource) Initialize(path string) error {
	d.logger.Debug("initializing bar source", zap.String("path", path))

	reader := ""

	switch {
	case strings.HasSuffix(path, ".parquet"):
		reader = fmt.Sprintf("read_parquet('%s')", path)
	case strings.HasSuffix(path, ".csv"):
		reader = fmt.Sprintf("read_csv_auto('%s')", path)
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "Initialize: unsupported data file %q, want .parquet or .csv", path)
	}

	if _, err := d.db.Exec(fmt.Sprintf(`DROP VIEW IF EXISTS %s;`, marketDataView)); err != nil {
		return fmt.Errorf("Initialize: dropping existing view: %w", err)
	}

	query := fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s;`, marketDataView, reader)
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "Initialize: creating view over %s", path)
	}

	return nil
}

// ReadAll implements BarSource with batched row processing.
func (d *DuckDBSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) iter.Seq2[types.MarketData, error] {
	const batchSize = 1000

	return func(yield func(types.MarketData, error) bool) {
		builder := d.sq.
			Select("time", "symbol", "open", "high", "low", "close", "volume").
			From(marketDataView).
			OrderBy("time ASC")

		if start.IsSome() {
			builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
		}

		if end.IsSome() {
			builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
		}

		query, args, err := builder.ToSql()
		if err != nil {
			yield(types.MarketData{}, fmt.Errorf("ReadAll: building query: %w", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.MarketData{}, fmt.Errorf("ReadAll: querying bars: %w", err))

			return
		}
		defer rows.Close()

		batch := make([]types.MarketData, 0, batchSize)

		for rows.Next() {
			bar, err := scanBar(rows)
			if err != nil {
				yield(types.MarketData{}, err)

				return
			}

			batch = append(batch, bar)

			if len(batch) >= batchSize {
				for _, data := range batch {
					if !yield(data, nil) {
						return
					}
				}

				batch = batch[:0]
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, fmt.Errorf("ReadAll: iterating rows: %w", err))

			return
		}

		for _, data := range batch {
			if !yield(data, nil) {
				return
			}
		}
	}
}

// GetRange implements BarSource.
func (d *DuckDBSource) GetRange(start time.Time, end time.Time, interval optional.Option[types.Interval]) ([]types.MarketData, error) {
	query, args, err := d.buildGetRangeQuery(start, end, interval)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetRange: querying bars: %w", err)
	}
	defer rows.Close()

	result := make([]types.MarketData, 0, 1000)

	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetRange: iterating rows: %w", err)
	}

	return result, nil
}

// ReadLastData implements BarSource.
func (d *DuckDBSource) ReadLastData(symbol string) (types.MarketData, error) {
	query, args, err := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From(marketDataView).
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return types.MarketData{}, fmt.Errorf("ReadLastData: building query: %w", err)
	}

	var (
		timestamp                      time.Time
		open, high, low, close, volume float64
		symbolResult                   string
	)

	err = d.db.QueryRow(query, args...).Scan(&timestamp, &symbolResult, &open, &high, &low, &close, &volume)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.MarketData{}, errors.Newf(errors.ErrCodeNoDataFound, "ReadLastData: no data found for symbol %s", symbol)
		}

		return types.MarketData{}, fmt.Errorf("ReadLastData: scanning row: %w", err)
	}

	return types.MarketData{
		Symbol: symbolResult,
		Time:   timestamp,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}, nil
}

// ReadRecentBars implements BarSource. Bars come back oldest first. When
// fewer than count bars exist the available ones are returned along with
// an insufficient data error.
func (d *DuckDBSource) ReadRecentBars(symbol string, count int) ([]types.MarketData, error) {
	query, args, err := d.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From(marketDataView).
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time DESC").
		Limit(uint64(count)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ReadRecentBars: building query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ReadRecentBars: querying bars: %w", err)
	}
	defer rows.Close()

	result := make([]types.MarketData, 0, count)

	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ReadRecentBars: iterating rows: %w", err)
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	if len(result) < count {
		return result, errors.NewInsufficientDataErrorf(count, len(result), symbol, "ReadRecentBars: requested %d bars for %s, got %d", count, symbol, len(result))
	}

	return result, nil
}

// Count implements BarSource.
func (d *DuckDBSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From(marketDataView)

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("Count: building query: %w", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: scanning count: %w", err)
	}

	return count, nil
}

// Symbols implements BarSource.
func (d *DuckDBSource) Symbols() ([]string, error) {
	rows, err := d.db.Query(fmt.Sprintf("SELECT DISTINCT symbol FROM %s ORDER BY symbol", marketDataView))
	if err != nil {
		return nil, fmt.Errorf("Symbols: querying symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("Symbols: scanning symbol: %w", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Symbols: iterating rows: %w", err)
	}

	return symbols, nil
}

// ExecuteSQL implements BarSource.
func (d *DuckDBSource) ExecuteSQL(query string, params ...any) ([]SQLResult, error) {
	d.logger.Debug("executing sql", zap.String("query", query))

	rows, err := d.db.Query(query, params...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "ExecuteSQL: executing query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("ExecuteSQL: reading columns: %w", err)
	}

	var result []SQLResult

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("ExecuteSQL: scanning row: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}

		result = append(result, SQLResult{Values: rowMap})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExecuteSQL: iterating rows: %w", err)
	}

	return result, nil
}

// Close implements BarSource.
func (d *DuckDBSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

// buildGetRangeQuery picks a plain range query or a time-bucket
// aggregation depending on the interval.
func (d *DuckDBSource) buildGetRangeQuery(start time.Time, end time.Time, interval optional.Option[types.Interval]) (string, []any, error) {
	if interval.IsNone() {
		query, args, err := d.sq.
			Select("time", "symbol", "open", "high", "low", "close", "volume").
			From(marketDataView).
			Where(squirrel.And{
				squirrel.GtOrEq{"time": start},
				squirrel.LtOrEq{"time": end},
			}).
			OrderBy("time ASC").
			ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("buildGetRangeQuery: building query: %w", err)
		}

		return query, args, nil
	}

	minutes, err := IntervalMinutes(interval.Unwrap())
	if err != nil {
		return "", nil, err
	}

	// Window functions and time_bucket are beyond squirrel, so this one
	// stays raw SQL.
	query := fmt.Sprintf(`
		WITH time_buckets AS MATERIALIZED (
			SELECT
				time_bucket(INTERVAL '%d minutes', time) as bucket_time,
				symbol,
				FIRST_VALUE(open) OVER (PARTITION BY time_bucket(INTERVAL '%d minutes', time), symbol ORDER BY time) as open,
				MAX(high) OVER (PARTITION BY time_bucket(INTERVAL '%d minutes', time), symbol) as high,
				MIN(low) OVER (PARTITION BY time_bucket(INTERVAL '%d minutes', time), symbol) as low,
				LAST_VALUE(close) OVER (PARTITION BY time_bucket(INTERVAL '%d minutes', time), symbol ORDER BY time ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING) as close,
				SUM(volume) OVER (PARTITION BY time_bucket(INTERVAL '%d minutes', time), symbol) as volume
			FROM %s
			WHERE time >= $1 AND time <= $2
		)
		SELECT DISTINCT
			bucket_time as time,
			symbol,
			open,
			high,
			low,
			close,
			volume
		FROM time_buckets
		ORDER BY bucket_time ASC
	`, minutes, minutes, minutes, minutes, minutes, minutes, marketDataView)

	return query, []any{start, end}, nil
}

// scanBar reads one bar row in the canonical column order.
func scanBar(rows *sql.Rows) (types.MarketData, error) {
	var (
		timestamp                      time.Time
		open, high, low, close, volume float64
		symbol                         string
	)

	if err := rows.Scan(&timestamp, &symbol, &open, &high, &low, &close, &volume); err != nil {
		return types.MarketData{}, fmt.Errorf("scanBar: scanning row: %w", err)
	}

	return types.MarketData{
		Symbol: symbol,
		Time:   timestamp,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}, nil
}
