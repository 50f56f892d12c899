// Package strategy defines the decision interface the backtest engine drives
// and a few reference implementations.
package strategy

import (
	"github.com/rxtech-lab/costsim/internal/types"
)

// History is a read-only, index-bounded view of the bar series up to and
// including the current bar. The engine builds one per bar, so a strategy
// can never observe future data.
type History struct {
	bars []types.Bar
}

// NewHistory wraps the given bars in a read-only view.
func NewHistory(bars []types.Bar) History {
	return History{bars: bars}
}

// Len returns the number of visible bars.
func (h History) Len() int {
	return len(h.bars)
}

// At returns the bar at index i.
func (h History) At(i int) types.Bar {
	return h.bars[i]
}

// Current returns the most recent visible bar. ok is false when the view is
// empty.
func (h History) Current() (bar types.Bar, ok bool) {
	if len(h.bars) == 0 {
		return types.Bar{}, false
	}

	return h.bars[len(h.bars)-1], true
}

// Strategy decides one signal per bar. The engine calls Decide exactly once
// per processed bar and waits for it to return before moving on.
type Strategy interface {
	// Name returns the name of the strategy.
	Name() string
	// Initialize sets up the strategy from a YAML configuration string.
	Initialize(config string) error
	// Decide returns the signal for the most recent bar of the history view.
	Decide(history History) types.Signal
}
