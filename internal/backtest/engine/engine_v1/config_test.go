package engine

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/costsim/internal/costmodel"
	"github.com/rxtech-lab/costsim/internal/logger"
	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestUnmarshalAppliesDefaults() {
	var config Config
	suite.Require().NoError(yaml.Unmarshal([]byte("initial_capital: 50000\n"), &config))

	defaults := DefaultConfig()
	suite.InDelta(50000.0, config.InitialCapital, 1e-9)
	suite.InDelta(defaults.PositionSizePct, config.PositionSizePct, 1e-9)
	suite.Equal(defaults.MaxPositions, config.MaxPositions)
	suite.Equal(defaults.AllowShorting, config.AllowShorting)
	suite.Equal(defaults.PriceField, config.PriceField)
	suite.Equal(defaults.CostPreset, config.CostPreset)
	suite.True(config.CostModel.IsNone())
}

func (suite *ConfigTestSuite) TestUnmarshalExplicitFalseOverridesDefault() {
	var config Config
	suite.Require().NoError(yaml.Unmarshal([]byte("allow_shorting: false\n"), &config))
	suite.False(config.AllowShorting)
}

func (suite *ConfigTestSuite) TestUnmarshalInlineCostModel() {
	raw := `
initial_capital: 25000
cost_model:
  asset_class: crypto
  spread_bps: 10
  commission_rate: 0.1
  slippage_model: volatility
  base_slippage_bps: 5
`

	var config Config
	suite.Require().NoError(yaml.Unmarshal([]byte(raw), &config))
	suite.Require().True(config.CostModel.IsSome())
	suite.Equal(costmodel.AssetClassCrypto, config.CostModel.Unwrap().AssetClass)

	model, err := config.ResolveCostModel()
	suite.Require().NoError(err)
	suite.Equal(costmodel.AssetClassCrypto, model.Config().AssetClass)
}

func (suite *ConfigTestSuite) TestResolveCostModelFallsBackToPreset() {
	config := DefaultConfig()
	config.CostPreset = costmodel.PresetFuturesCME

	model, err := config.ResolveCostModel()
	suite.Require().NoError(err)
	suite.Equal(costmodel.AssetClassFutures, model.Config().AssetClass)
}

func (suite *ConfigTestSuite) TestValidate() {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "negative initial capital",
			mutate:  func(c *Config) { c.InitialCapital = -1 },
			wantErr: true,
		},
		{
			name:    "position size above one",
			mutate:  func(c *Config) { c.PositionSizePct = 1.5 },
			wantErr: true,
		},
		{
			name:    "zero max positions",
			mutate:  func(c *Config) { c.MaxPositions = 0 },
			wantErr: true,
		},
		{
			name:    "unknown price field",
			mutate:  func(c *Config) { c.PriceField = types.PriceField("vwap") },
			wantErr: true,
		},
		{
			name: "invalid inline cost model",
			mutate: func(c *Config) {
				c.CostModel = optional.Some(costmodel.Config{SpreadBps: 1})
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.mutate(&config)

			err := config.Validate()
			if tc.wantErr {
				suite.Error(err)
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *ConfigTestSuite) TestInitializeRejectsUnknownPreset() {
	engine := NewBacktestEngineV1().(*BacktestEngineV1)
	engine.SetLogger(logger.NewNopLogger())

	err := engine.Initialize("cost_preset: forex_premium\n")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownPreset))
}

func (suite *ConfigTestSuite) TestInitializeRejectsMalformedYAML() {
	engine := NewBacktestEngineV1().(*BacktestEngineV1)
	engine.SetLogger(logger.NewNopLogger())

	err := engine.Initialize("initial_capital: [not a number\n")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestConfigError))
}

func (suite *ConfigTestSuite) TestGetConfigSchema() {
	engine := NewBacktestEngineV1()

	schema, err := engine.GetConfigSchema()
	suite.Require().NoError(err)
	suite.Contains(schema, "initial_capital")
	suite.Contains(schema, "max_positions")
}
