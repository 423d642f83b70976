package types

import "time"

// EvaluationResult is the outcome of evaluating one candidate strategy:
// the best score it achieved over the evaluation window and the parameter
// set that achieved it.
type EvaluationResult struct {
	StrategyID     string         `yaml:"strategy_id" json:"strategy_id"`
	BestScore      float64        `yaml:"best_score" json:"best_score"`
	BestParameters map[string]any `yaml:"best_parameters" json:"best_parameters"`
}

// SelectionRecord is the per-symbol selection memory: the strategy most
// recently chosen for a symbol and the parameters it won with.
type SelectionRecord struct {
	// StrategyID is the id of the chosen strategy.
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	// StrategyName is the display name of the chosen strategy, resolved
	// from the registry at read time.
	StrategyName string `yaml:"strategy_name" json:"strategy_name"`
	// Parameters is the parameter set the strategy won with.
	Parameters map[string]any `yaml:"parameters" json:"parameters"`
	// Score is the winning score under the evaluation metric.
	Score float64 `yaml:"score" json:"score"`
	// Metric is the evaluation metric the score was computed under.
	Metric string `yaml:"metric" json:"metric"`
	// SelectedAt is the market data time of the bar that triggered the selection.
	SelectedAt time.Time `yaml:"selected_at" json:"selected_at"`
}
