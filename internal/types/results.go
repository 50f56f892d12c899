package types

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/costsim/pkg/errors"
)

// EquityPoint is one equity-curve sample. The engine appends exactly one per
// processed bar, after all opens and closes for that bar.
type EquityPoint struct {
	Date          time.Time `yaml:"date" json:"date"`
	Price         float64   `yaml:"price" json:"price"`
	Capital       float64   `yaml:"capital" json:"capital"`
	UnrealizedPnL float64   `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	TotalEquity   float64   `yaml:"total_equity" json:"total_equity"`
	NumPositions  int       `yaml:"num_positions" json:"num_positions"`
}

// Result is the snapshot a backtest run produces: the trade ledger plus the
// equity curve it was derived from.
type Result struct {
	// RunID is the unique identifier for this backtest run.
	RunID string `yaml:"run_id" json:"run_id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`

	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	FinalCapital   float64 `yaml:"final_capital" json:"final_capital"`
	TotalReturnPct float64 `yaml:"total_return_pct" json:"total_return_pct"`
	NumTrades      int     `yaml:"num_trades" json:"num_trades"`

	Trades      []Trade       `yaml:"trades" json:"trades"`
	EquityCurve []EquityPoint `yaml:"equity_curve" json:"equity_curve"`
}

// WriteResult writes a backtest result to a YAML file.
func WriteResult(path string, result Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to marshal result to YAML", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write result to file", err)
	}

	return nil
}

// ReadResult reads a backtest result from a YAML file.
func ReadResult(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeResultsReadFailed, "failed to read result file", err)
	}

	var result Result
	if err := yaml.Unmarshal(data, &result); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeResultsReadFailed, "failed to unmarshal result", err)
	}

	return result, nil
}
