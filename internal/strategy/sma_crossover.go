package strategy

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
)

// SMACrossoverConfig configures the moving-average periods.
type SMACrossoverConfig struct {
	FastPeriod int `yaml:"fast_period" json:"fast_period" validate:"required,gt=0"`
	SlowPeriod int `yaml:"slow_period" json:"slow_period" validate:"required,gt=0,gtfield=FastPeriod"`
}

// SMACrossover buys when the fast moving average crosses above the slow one
// and sells when it crosses below.
type SMACrossover struct {
	config SMACrossoverConfig
}

// NewSMACrossover creates an SMA crossover strategy with default periods.
// Initialize may override them.
func NewSMACrossover() *SMACrossover {
	return &SMACrossover{
		config: SMACrossoverConfig{
			FastPeriod: 10,
			SlowPeriod: 30,
		},
	}
}

// Name implements Strategy.
func (s *SMACrossover) Name() string {
	return fmt.Sprintf("sma_crossover_%d_%d", s.config.FastPeriod, s.config.SlowPeriod)
}

// Initialize implements Strategy. An empty config keeps the defaults.
func (s *SMACrossover) Initialize(config string) error {
	if config == "" {
		return nil
	}

	var parsed SMACrossoverConfig
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse sma crossover config", err)
	}

	validate := validator.New()
	if err := validate.Struct(&parsed); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid sma crossover config", err)
	}

	s.config = parsed

	return nil
}

// Decide implements Strategy.
func (s *SMACrossover) Decide(history History) types.Signal {
	// One extra bar is needed to observe the crossover itself.
	if history.Len() < s.config.SlowPeriod+1 {
		return types.SignalHold
	}

	fast := s.sma(history, history.Len(), s.config.FastPeriod)
	slow := s.sma(history, history.Len(), s.config.SlowPeriod)
	prevFast := s.sma(history, history.Len()-1, s.config.FastPeriod)
	prevSlow := s.sma(history, history.Len()-1, s.config.SlowPeriod)

	switch {
	case prevFast <= prevSlow && fast > slow:
		return types.SignalBuy
	case prevFast >= prevSlow && fast < slow:
		return types.SignalSell
	default:
		return types.SignalHold
	}
}

// sma averages the close of the period bars ending at index end-1.
func (s *SMACrossover) sma(history History, end int, period int) float64 {
	sum := 0.0
	for i := end - period; i < end; i++ {
		sum += history.At(i).Close
	}

	return sum / float64(period)
}
