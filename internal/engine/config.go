package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/Atypix/Smart100-sub002/internal/backtest"
)

type Config struct {
	InitialCapital     float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Synthetic cash balance presented to strategies in USD,minimum=0"`
	Symbol             string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Ticker symbol the selection run operates on"`
	LookbackPeriod     int                        `yaml:"lookback_period" json:"lookback_period" jsonschema:"title=Lookback Period,description=Number of closed bars each candidate evaluation replays,minimum=1"`
	Metric             backtest.Metric            `yaml:"metric" json:"metric" jsonschema:"title=Metric,description=Scoring metric used to rank candidate strategies"`
	OptimizeParameters bool                       `yaml:"optimize_parameters" json:"optimize_parameters" jsonschema:"title=Optimize Parameters,description=Sweep each candidate's parameter grid instead of scoring defaults only"`
	Candidates         []string                   `yaml:"candidates" json:"candidates" jsonschema:"title=Candidates,description=Strategy ids eligible for selection. Empty means every registered strategy"`
	Parallelism        int                        `yaml:"parallelism" json:"parallelism" jsonschema:"title=Parallelism,description=Number of parameter combinations simulated concurrently,minimum=0"`
	StartTime          optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the selection run"`
	EndTime            optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the selection run"`
}

// UnmarshalYAML implements custom unmarshaling for Config
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type config struct {
		InitialCapital     float64         `yaml:"initial_capital"`
		Symbol             string          `yaml:"symbol"`
		LookbackPeriod     int             `yaml:"lookback_period"`
		Metric             backtest.Metric `yaml:"metric"`
		OptimizeParameters bool            `yaml:"optimize_parameters"`
		Candidates         []string        `yaml:"candidates"`
		Parallelism        int             `yaml:"parallelism"`
		StartTime          *time.Time      `yaml:"start_time"`
		EndTime            *time.Time      `yaml:"end_time"`
	}

	var raw config
	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.InitialCapital = raw.InitialCapital
	c.Symbol = raw.Symbol
	c.LookbackPeriod = raw.LookbackPeriod
	c.Metric = raw.Metric
	c.OptimizeParameters = raw.OptimizeParameters
	c.Candidates = raw.Candidates
	c.Parallelism = raw.Parallelism

	if raw.StartTime != nil {
		c.StartTime = optional.Some(*raw.StartTime)
	}

	if raw.EndTime != nil {
		c.EndTime = optional.Some(*raw.EndTime)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "backtest.Metric") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: backtest.AllMetrics,
				}
			}
			return nil
		},
	}

	// Generate schema from Config struct
	schema := reflector.Reflect(c)

	// Set schema metadata
	schema.Title = "selection-engine-config"
	schema.Description = "Configuration schema for the selection engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func TestConfig(startTime time.Time, endTime time.Time, metric backtest.Metric) Config {
	return Config{
		InitialCapital:     10000,
		Symbol:             "AAPL",
		LookbackPeriod:     20,
		Metric:             metric,
		OptimizeParameters: false,
		Candidates:         nil,
		Parallelism:        0,
		StartTime:          optional.Some(startTime),
		EndTime:            optional.Some(endTime),
	}
}

// EmptyConfig returns a Config with default values
func EmptyConfig() Config {
	return Config{
		InitialCapital:     0,
		Symbol:             "",
		LookbackPeriod:     0,
		Metric:             backtest.MetricPnl,
		OptimizeParameters: false,
		Candidates:         nil,
		Parallelism:        0,
		StartTime:          optional.None[time.Time](),
		EndTime:            optional.None[time.Time](),
	}
}
