package engine

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/costsim/internal/costmodel"
	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
)

// Config is the YAML-provided configuration of BacktestEngineV1.
type Config struct {
	// InitialCapital is the starting capital in currency units.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital for the backtest,minimum=0" validate:"required,gt=0"`
	// PositionSizePct sizes every auto-sized position as a fraction of
	// current capital, so position size compounds with equity.
	PositionSizePct float64 `yaml:"position_size_pct" json:"position_size_pct" jsonschema:"title=Position Size,description=Fraction of current capital per position" validate:"gt=0,lte=1"`
	// MaxPositions caps the number of concurrently open positions.
	MaxPositions int `yaml:"max_positions" json:"max_positions" jsonschema:"title=Max Positions,description=Maximum concurrent open positions,minimum=1" validate:"required,gte=1"`
	// AllowShorting enables short positions.
	AllowShorting bool `yaml:"allow_shorting" json:"allow_shorting" jsonschema:"title=Allow Shorting"`
	// PriceField selects which bar price drives the simulation.
	PriceField types.PriceField `yaml:"price_field" json:"price_field" jsonschema:"title=Price Field" validate:"required,oneof=open high low close"`
	// CostPreset names a registered cost-model preset. Ignored when an
	// inline CostModel is provided.
	CostPreset string `yaml:"cost_preset" json:"cost_preset" jsonschema:"title=Cost Preset"`
	// CostModel optionally overrides the preset with an inline configuration.
	CostModel optional.Option[costmodel.Config] `yaml:"cost_model" json:"cost_model" jsonschema:"title=Cost Model"`
}

// UnmarshalYAML implements custom unmarshaling for Config.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawConfig struct {
		InitialCapital  float64           `yaml:"initial_capital"`
		PositionSizePct float64           `yaml:"position_size_pct"`
		MaxPositions    int               `yaml:"max_positions"`
		AllowShorting   *bool             `yaml:"allow_shorting"`
		PriceField      types.PriceField  `yaml:"price_field"`
		CostPreset      string            `yaml:"cost_preset"`
		CostModel       *costmodel.Config `yaml:"cost_model"`
	}

	defaults := DefaultConfig()
	raw := rawConfig{
		InitialCapital:  defaults.InitialCapital,
		PositionSizePct: defaults.PositionSizePct,
		MaxPositions:    defaults.MaxPositions,
		PriceField:      defaults.PriceField,
		CostPreset:      defaults.CostPreset,
	}

	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.InitialCapital = raw.InitialCapital
	c.PositionSizePct = raw.PositionSizePct
	c.MaxPositions = raw.MaxPositions
	c.PriceField = raw.PriceField
	c.CostPreset = raw.CostPreset

	c.AllowShorting = defaults.AllowShorting
	if raw.AllowShorting != nil {
		c.AllowShorting = *raw.AllowShorting
	}

	if raw.CostModel != nil {
		c.CostModel = optional.Some(*raw.CostModel)
	} else {
		c.CostModel = optional.None[costmodel.Config]()
	}

	return nil
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	if c.CostModel.IsSome() {
		inline := c.CostModel.Unwrap()
		if err := inline.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ResolveCostModel builds the cost model the config selects: the inline
// configuration when present, otherwise the named preset.
func (c *Config) ResolveCostModel() (*costmodel.CostModel, error) {
	if c.CostModel.IsSome() {
		return costmodel.New(c.CostModel.Unwrap())
	}

	return costmodel.NewFromPreset(c.CostPreset)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		InitialCapital:  10000,
		PositionSizePct: 0.1,
		MaxPositions:    1,
		AllowShorting:   true,
		PriceField:      types.PriceFieldClose,
		CostPreset:      costmodel.PresetForexRetail,
		CostModel:       optional.None[costmodel.Config](),
	}
}

// TestConfig returns a Config suitable for tests.
func TestConfig(initialCapital float64, maxPositions int, allowShorting bool) Config {
	config := DefaultConfig()
	config.InitialCapital = initialCapital
	config.MaxPositions = maxPositions
	config.AllowShorting = allowShorting

	return config
}
