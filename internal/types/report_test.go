package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
	tmpDir string
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) SetupTest() {
	suite.tmpDir = suite.T().TempDir()
}

func (suite *ReportTestSuite) TestWriteAndReadRunReport() {
	report := RunReport{
		ID:            "c0a80101-0000-4000-8000-000000000001",
		Timestamp:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EngineVersion: "1.2.3",
		Symbol:        "AAPL",
		Metric:        "pnl",
		Lookback:      50,
		BarsProcessed: 200,
		SignalCounts:  SignalCounts{Buy: 12, Sell: 10, Hold: 178},
		Selections: []SelectionEvent{
			{
				Time:         time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
				StrategyID:   "sma_crossover",
				StrategyName: "SMA Crossover",
				Score:        42.5,
				Parameters:   map[string]any{"fastPeriod": 10.0, "slowPeriod": 30.0},
				Signal:       SignalTypeBuy,
			},
		},
		FinalSelection: &SelectionRecord{
			StrategyID:   "sma_crossover",
			StrategyName: "SMA Crossover",
			Parameters:   map[string]any{"fastPeriod": 10.0, "slowPeriod": 30.0},
			Score:        42.5,
			Metric:       "pnl",
			SelectedAt:   time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
		},
		DataPath: "data/AAPL.parquet",
	}

	path := filepath.Join(suite.tmpDir, "run_report.yaml")
	err := WriteRunReport(path, report)
	suite.Require().NoError(err)

	loaded, err := ReadRunReport(path)
	suite.Require().NoError(err)

	suite.Equal(report.ID, loaded.ID)
	suite.Equal(report.Symbol, loaded.Symbol)
	suite.Equal(report.Metric, loaded.Metric)
	suite.Equal(report.SignalCounts, loaded.SignalCounts)
	suite.Require().Len(loaded.Selections, 1)
	suite.Equal("sma_crossover", loaded.Selections[0].StrategyID)
	suite.Require().NotNil(loaded.FinalSelection)
	suite.Equal(42.5, loaded.FinalSelection.Score)
}

func (suite *ReportTestSuite) TestReadRunReportMissingFile() {
	_, err := ReadRunReport(filepath.Join(suite.tmpDir, "does_not_exist.yaml"))
	suite.Error(err)
}

func (suite *ReportTestSuite) TestReadRunReportMalformedYAML() {
	path := filepath.Join(suite.tmpDir, "bad.yaml")
	err := os.WriteFile(path, []byte("::: not yaml :::"), 0644)
	suite.Require().NoError(err)

	_, err = ReadRunReport(path)
	suite.Error(err)
}
