// Package engine orchestrates a full selection run: it streams bars from a
// data source, hands the growing history to the meta selector bar by bar,
// and writes a run report when the stream ends.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Atypix/Smart100-sub002/internal/backtest"
	"github.com/Atypix/Smart100-sub002/internal/datasource"
	"github.com/Atypix/Smart100-sub002/internal/logger"
	"github.com/Atypix/Smart100-sub002/internal/selector"
	"github.com/Atypix/Smart100-sub002/internal/strategy"
	"github.com/Atypix/Smart100-sub002/internal/types"
	"github.com/Atypix/Smart100-sub002/internal/version"
	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// ReportFileName is the file the run report is written to inside the
// results folder.
const ReportFileName = "report.yaml"

// OnProcessDataCallback is called for each bar processed. Returning an
// error aborts the run.
type OnProcessDataCallback func(current int, total int) error

// SelectionEngine drives the per-bar selection loop over a single symbol.
type SelectionEngine struct {
	config        Config
	registry      strategy.Registry
	store         *selector.MemoryStore
	selector      *selector.MetaSelector
	datasource    datasource.BarSource
	dataPath      string
	resultsFolder string
	log           *logger.Logger
}

// NewSelectionEngine creates an engine with an empty registry and an
// in-memory selection store. Configure it with Initialize and the setters
// before calling Run.
func NewSelectionEngine() *SelectionEngine {
	return &SelectionEngine{
		config:        EmptyConfig(),
		registry:      strategy.NewRegistry(),
		store:         selector.NewMemoryStore(),
		selector:      nil,
		datasource:    nil,
		dataPath:      "",
		resultsFolder: "",
		log:           nil,
	}
}

// Initialize parses the YAML configuration and prepares the logger.
func (e *SelectionEngine) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &e.config); err != nil {
		return errors.Wrapf(errors.ErrCodeEngineConfigError, err, "Initialize: parsing config")
	}

	var loggerError error

	e.log, loggerError = logger.NewLogger()
	if loggerError != nil {
		return errors.Wrapf(errors.ErrCodeEngineInitFailed, loggerError, "Initialize: creating logger")
	}

	e.log.Debug("Selection engine initialized",
		zap.String("symbol", e.config.Symbol),
		zap.Int("lookback_period", e.config.LookbackPeriod),
		zap.String("metric", string(e.config.Metric)),
	)

	return nil
}

// LoadStrategy registers a candidate strategy. Could be called multiple
// times to load multiple candidates.
func (e *SelectionEngine) LoadStrategy(strat strategy.Strategy) error {
	if err := e.registry.Register(strat); err != nil {
		return err
	}

	e.log.Debug("Strategy loaded",
		zap.String("strategy", strat.ID()),
		zap.Int("total_strategies", e.registry.Count()),
	)

	return nil
}

// SetDataPath sets the path to the market data file.
func (e *SelectionEngine) SetDataPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		e.log.Error("Failed to set data path",
			zap.String("path", path),
			zap.Error(err),
		)

		return errors.Wrapf(errors.ErrCodeEngineDataPathError, err, "SetDataPath: resolving %s", path)
	}

	e.dataPath = absPath
	e.log.Debug("Data path set",
		zap.String("path", absPath),
	)

	return nil
}

// SetResultsFolder sets the output directory the run report is written to.
func (e *SelectionEngine) SetResultsFolder(folder string) error {
	e.resultsFolder = folder
	e.log.Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// SetDataSource sets the bar source for the engine.
func (e *SelectionEngine) SetDataSource(source datasource.BarSource) error {
	e.datasource = source

	return nil
}

// GetConfigSchema returns the JSON schema of the engine configuration.
func (e *SelectionEngine) GetConfigSchema() (string, error) {
	config := e.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

// GetSelectionState reports the selection currently persisted for a symbol.
// It is only meaningful after Run has started.
func (e *SelectionEngine) GetSelectionState(symbol string) (optional.Option[selector.SelectionState], error) {
	if e.selector == nil {
		return optional.None[selector.SelectionState](), errors.New(errors.ErrCodeEngineInitFailed, "GetSelectionState: engine has not run yet")
	}

	return e.selector.GetSelectionState(symbol)
}

// Run streams bars through the selector and writes the run report. The
// context cancels the run between bars.
func (e *SelectionEngine) Run(ctx context.Context, onProcessData optional.Option[OnProcessDataCallback]) error {
	if err := e.preRunCheck(); err != nil {
		return err
	}

	// clean the results folder
	if _, err := os.Stat(e.resultsFolder); err == nil {
		os.RemoveAll(e.resultsFolder)
	}

	if err := os.MkdirAll(e.resultsFolder, 0755); err != nil {
		return fmt.Errorf("failed to create results folder: %w", err)
	}

	sel, err := selector.NewMetaSelector(e.registry, e.store, e.log, selector.Options{
		EvaluationLookbackPeriod: e.config.LookbackPeriod,
		CandidateStrategyIDs:     e.config.Candidates,
		EvaluationMetric:         e.config.Metric,
		OptimizeParameters:       e.config.OptimizeParameters,
		Parallelism:              e.config.Parallelism,
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodeEngineInitFailed, err, "Run: creating selector")
	}

	e.selector = sel

	if err := e.datasource.Initialize(e.dataPath); err != nil {
		return fmt.Errorf("failed to initialize data source: %w", err)
	}

	count, err := e.datasource.Count(e.config.StartTime, e.config.EndTime)
	if err != nil {
		return fmt.Errorf("failed to get data count: %w", err)
	}

	bar := progressbar.Default(int64(count))
	bar.Describe(fmt.Sprintf("Processing %s with %s", filepath.Base(e.dataPath), sel.Name()))

	e.log.Debug("Running selection",
		zap.String("symbol", e.config.Symbol),
		zap.String("data", e.dataPath),
		zap.Int("bars", count),
	)

	history := make([]types.MarketData, 0, count)
	signalHistory := make([]types.Signal, 0, count)
	lastSignal := types.SignalTypeHold

	var (
		counts     types.SignalCounts
		selections []types.SelectionEvent
	)

	currentCount := 0

	for data, err := range e.datasource.ReadAll(e.config.StartTime, e.config.EndTime) {
		if err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled: %w", err)
		}

		currentCount++
		bar.Add(1)

		if data.Symbol != e.config.Symbol {
			continue
		}

		history = append(history, data)

		strategyContext := &strategy.StrategyContext{
			Symbol:         e.config.Symbol,
			HistoricalData: history,
			CurrentIndex:   len(history) - 1,
			Parameters:     nil,
			Portfolio:      strategy.PortfolioView{Cash: e.config.InitialCapital, Position: optional.None[types.Position]()},
			TradeHistory:   nil,
			CurrentSignal:  lastSignal,
			SignalHistory:  signalHistory,
		}

		signal, err := sel.Execute(strategyContext)
		if err != nil {
			return fmt.Errorf("failed to process data: %w", err)
		}

		signalHistory = append(signalHistory, signal)
		lastSignal = signal.Type

		switch signal.Type {
		case types.SignalTypeBuy:
			counts.Buy++
		case types.SignalTypeSell:
			counts.Sell++
		default:
			counts.Hold++
		}

		if event, ok := e.selectionEvent(data.Time, signal.Type); ok {
			selections = append(selections, event)
		}

		if onProcessData.IsSome() {
			if err := onProcessData.Unwrap()(currentCount, count); err != nil {
				return fmt.Errorf("process data callback aborted run: %w", err)
			}
		}
	}

	return e.writeReport(len(history), counts, selections)
}

// selectionEvent reports the selection persisted at barTime, if the
// evaluation on that bar completed.
func (e *SelectionEngine) selectionEvent(barTime time.Time, signal types.SignalType) (types.SelectionEvent, bool) {
	record, err := e.store.Get(e.config.Symbol)
	if err != nil || record.IsNone() {
		return types.SelectionEvent{}, false
	}

	rec := record.Unwrap()
	if !rec.SelectedAt.Equal(barTime) {
		return types.SelectionEvent{}, false
	}

	return types.SelectionEvent{
		Time:         rec.SelectedAt,
		StrategyID:   rec.StrategyID,
		StrategyName: rec.StrategyName,
		Score:        rec.Score,
		Parameters:   rec.Parameters,
		Signal:       signal,
	}, true
}

func (e *SelectionEngine) writeReport(barsProcessed int, counts types.SignalCounts, selections []types.SelectionEvent) error {
	metric := e.config.Metric
	if metric == "" {
		metric = backtest.MetricPnl
	}

	report := types.RunReport{
		ID:                 uuid.New().String(),
		Timestamp:          time.Now().UTC(),
		EngineVersion:      version.GetVersion(),
		Symbol:             e.config.Symbol,
		Metric:             string(metric),
		Lookback:           e.config.LookbackPeriod,
		OptimizeParameters: e.config.OptimizeParameters,
		BarsProcessed:      barsProcessed,
		SignalCounts:       counts,
		Selections:         selections,
		FinalSelection:     nil,
		DataPath:           e.dataPath,
	}

	if record, err := e.store.Get(e.config.Symbol); err == nil && record.IsSome() {
		rec := record.Unwrap()
		report.FinalSelection = &rec
	}

	reportPath := filepath.Join(e.resultsFolder, ReportFileName)
	if err := types.WriteRunReport(reportPath, report); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}

	e.log.Debug("Run report written",
		zap.String("path", reportPath),
		zap.Int("bars_processed", barsProcessed),
		zap.Int("selections", len(selections)),
	)

	return nil
}

// LoadRunReport reads a run report and verifies it was produced by a
// compatible engine version before trusting its shape.
func LoadRunReport(path string) (types.RunReport, error) {
	report, err := types.ReadRunReport(path)
	if err != nil {
		return types.RunReport{}, err
	}

	if err := version.CheckVersionCompatibility(version.GetVersion(), report.EngineVersion); err != nil {
		return types.RunReport{}, fmt.Errorf("LoadRunReport: report %s: %w", path, err)
	}

	return report, nil
}

func (e *SelectionEngine) preRunCheck() error {
	if e.config.Symbol == "" {
		e.log.Error("No symbol configured")

		return errors.New(errors.ErrCodeEngineConfigError, "no symbol configured")
	}

	if e.config.LookbackPeriod <= 0 {
		e.log.Error("Invalid lookback period",
			zap.Int("lookback_period", e.config.LookbackPeriod),
		)

		return errors.New(errors.ErrCodeEngineConfigError, "lookback period must be positive")
	}

	if e.config.Metric != "" {
		if _, err := backtest.ParseMetric(string(e.config.Metric)); err != nil {
			e.log.Error("Invalid metric",
				zap.String("metric", string(e.config.Metric)),
			)

			return errors.Wrapf(errors.ErrCodeEngineConfigError, err, "preRunCheck: validating metric")
		}
	}

	if e.registry.Count() == 0 {
		e.log.Error("No strategies loaded")

		return errors.New(errors.ErrCodeEngineNoStrategies, "no strategies loaded")
	}

	if e.dataPath == "" {
		e.log.Error("No data path set")

		return errors.New(errors.ErrCodeEngineDataPathError, "no data path set")
	}

	if e.resultsFolder == "" {
		e.log.Error("No results folder set")

		return errors.New(errors.ErrCodeEngineConfigError, "no results folder set")
	}

	if e.datasource == nil {
		e.log.Error("No datasource set")

		return errors.New(errors.ErrCodeEngineNoDatasource, "no datasource set")
	}

	return nil
}
