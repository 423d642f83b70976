package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SelectionEvent records one completed selection during an engine run.
type SelectionEvent struct {
	// Time is the market data time of the bar the selection was made on.
	Time time.Time `yaml:"time" json:"time"`
	// StrategyID is the id of the strategy that won the evaluation.
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	// StrategyName is the display name of the winning strategy.
	StrategyName string `yaml:"strategy_name" json:"strategy_name"`
	// Score is the winning score under the evaluation metric.
	Score float64 `yaml:"score" json:"score"`
	// Parameters is the parameter set the strategy won with.
	Parameters map[string]any `yaml:"parameters" json:"parameters"`
	// Signal is the signal type the winner produced for the live bar.
	Signal SignalType `yaml:"signal" json:"signal"`
}

// SignalCounts tallies the signals produced over a run.
type SignalCounts struct {
	Buy  int `yaml:"buy" json:"buy"`
	Sell int `yaml:"sell" json:"sell"`
	Hold int `yaml:"hold" json:"hold"`
}

type RunReport struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// EngineVersion is the version of the engine that produced this report.
	EngineVersion string `yaml:"engine_version" json:"engine_version"`
	// Symbol of the evaluated series.
	Symbol string `yaml:"symbol" json:"symbol"`
	// Metric is the evaluation metric candidates were scored under.
	Metric string `yaml:"metric" json:"metric"`
	// Lookback is the evaluation window length in bars.
	Lookback int `yaml:"lookback" json:"lookback"`
	// OptimizeParameters reports whether parameter grids were searched.
	OptimizeParameters bool `yaml:"optimize_parameters" json:"optimize_parameters"`
	// BarsProcessed is the number of bars the run consumed.
	BarsProcessed int `yaml:"bars_processed" json:"bars_processed"`
	// SignalCounts tallies the signals produced over the run.
	SignalCounts SignalCounts `yaml:"signal_counts" json:"signal_counts"`
	// Selections lists every completed selection in order.
	Selections []SelectionEvent `yaml:"selections" json:"selections"`
	// FinalSelection is the selection in force when the run ended, if any.
	FinalSelection *SelectionRecord `yaml:"final_selection,omitempty" json:"final_selection,omitempty"`
	// DataPath is the path to the market data used for this run.
	DataPath string `yaml:"data_path" json:"data_path"`
}

func WriteRunReport(path string, report RunReport) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report to file: %w", err)
	}

	return nil
}

func ReadRunReport(path string) (RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunReport{}, fmt.Errorf("failed to read run report file: %w", err)
	}

	var report RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return RunReport{}, fmt.Errorf("failed to unmarshal run report: %w", err)
	}

	return report, nil
}
