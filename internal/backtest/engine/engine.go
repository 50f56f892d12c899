// Package engine defines the backtest engine interface.
package engine

import (
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/costsim/internal/strategy"
	"github.com/rxtech-lab/costsim/internal/types"
)

// OnBarCallback reports progress after each processed bar.
type OnBarCallback func(current int, total int)

// Engine simulates a strategy against an ordered bar series and produces a
// fully-costed trade ledger plus an equity curve.
type Engine interface {
	// Initialize configures the engine from a YAML document. It must be
	// called before Run; configuration errors are fatal and reported here.
	Initialize(config string) error
	// Run processes the bars strictly in order, asking the strategy for one
	// signal per bar, and returns the results snapshot. Any still-open
	// positions are force-closed at the final bar.
	Run(bars []types.Bar, strat strategy.Strategy, onBar optional.Option[OnBarCallback]) (types.Result, error)
	// Reset restores the engine to its initial configuration so the same
	// instance can re-run a backtest deterministically.
	Reset() error
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
