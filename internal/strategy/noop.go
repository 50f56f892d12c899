package strategy

import (
	"github.com/rxtech-lab/costsim/internal/types"
)

// Noop never takes a position. A backtest driven by it produces an equity
// curve with zero unrealized PnL and no trades.
type Noop struct{}

// NewNoop creates a new no-op strategy.
func NewNoop() *Noop {
	return &Noop{}
}

// Name implements Strategy.
func (s *Noop) Name() string {
	return "noop"
}

// Initialize implements Strategy.
func (s *Noop) Initialize(config string) error {
	return nil
}

// Decide implements Strategy.
func (s *Noop) Decide(history History) types.Signal {
	return types.SignalHold
}
