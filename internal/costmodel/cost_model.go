// Package costmodel computes realistic transaction costs for a single
// round-trip trade: spread, slippage, commission, financing and exchange
// fees. All calculations are pure given their inputs; the only state is the
// immutable configuration.
package costmodel

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
)

// AssetClass selects the cost structure used for commission and financing.
type AssetClass string

const (
	AssetClassForex   AssetClass = "forex"
	AssetClassStocks  AssetClass = "stocks"
	AssetClassCrypto  AssetClass = "crypto"
	AssetClassFutures AssetClass = "futures"
	AssetClassOptions AssetClass = "options"
)

// SlippageModel selects how slippage reacts to market conditions.
type SlippageModel string

const (
	// SlippageModelFixed charges the base slippage regardless of conditions.
	SlippageModelFixed SlippageModel = "fixed"
	// SlippageModelVolume amplifies slippage when the trade is large
	// relative to market volume.
	SlippageModelVolume SlippageModel = "volume"
	// SlippageModelVolatility scales slippage with the volatility factor.
	SlippageModelVolatility SlippageModel = "volatility"
)

const (
	basisPointDivisor = 10000.0
	daysPerYear       = 365.0

	// shortBorrowMultiplier is the borrow-cost penalty short positions pay
	// on non-forex asset classes.
	shortBorrowMultiplier = 1.5

	// minVolumeRatio floors the volume ratio in the volume slippage model so
	// a vanishing ratio cannot blow the multiplier up without bound.
	minVolumeRatio = 0.1

	// perShareCommissionThreshold: stock commission rates below this value
	// are interpreted as a percentage of notional, at or above as per-share.
	perShareCommissionThreshold = 0.01
)

// Config is the immutable configuration of a cost model.
type Config struct {
	AssetClass     AssetClass `yaml:"asset_class" json:"asset_class" validate:"required,oneof=forex stocks crypto futures options"`
	SpreadBps      float64    `yaml:"spread_bps" json:"spread_bps" validate:"gte=0"`
	CommissionRate float64    `yaml:"commission_rate" json:"commission_rate" validate:"gte=0"`
	// SlippageModel values outside the known set make slippage a no-op
	// rather than an error.
	SlippageModel       SlippageModel `yaml:"slippage_model" json:"slippage_model"`
	BaseSlippageBps     float64       `yaml:"base_slippage_bps" json:"base_slippage_bps" validate:"gte=0"`
	FinancingRateAnnual float64       `yaml:"financing_rate_annual" json:"financing_rate_annual" validate:"gte=0"`
	ExchangeFeeBps      float64       `yaml:"exchange_fee_bps" json:"exchange_fee_bps" validate:"gte=0"`
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid cost model config", err)
	}

	return nil
}

// CostModel computes the five cost components for a round-trip trade.
type CostModel struct {
	config Config
}

// New creates a cost model from the given configuration.
func New(config Config) (*CostModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &CostModel{config: config}, nil
}

// Config returns the model's configuration.
func (m *CostModel) Config() Config {
	return m.config
}

// SpreadCost returns the cost of crossing the bid-ask spread for one fill.
// Volatility widens the spread multiplicatively; liquidity in [0, 1] widens
// it as (2 - liquidity).
func (m *CostModel) SpreadCost(price float64, quantity float64, conditions optional.Option[types.MarketConditions]) float64 {
	cost := (m.config.SpreadBps / basisPointDivisor) * price * abs(quantity)

	if conditions.IsSome() {
		c := conditions.Unwrap()
		cost *= c.Volatility
		cost *= 2.0 - c.Liquidity
	}

	return cost
}

// Slippage returns the market-impact cost of one fill under the configured
// slippage model. An unrecognized model yields zero cost.
func (m *CostModel) Slippage(price float64, quantity float64, conditions optional.Option[types.MarketConditions]) float64 {
	base := (m.config.BaseSlippageBps / basisPointDivisor) * price * abs(quantity)

	switch m.config.SlippageModel {
	case SlippageModelFixed:
		return base
	case SlippageModelVolume:
		volumeRatio := 1.0
		if conditions.IsSome() {
			volumeRatio = conditions.Unwrap().VolumeRatio
		}

		// Smaller relative volume means more market impact.
		multiplier := 1.0 + 1.0/max(volumeRatio, minVolumeRatio)

		return base * multiplier
	case SlippageModelVolatility:
		volatility := 1.0
		if conditions.IsSome() {
			volatility = conditions.Unwrap().Volatility
		}

		return base * volatility
	default:
		return 0.0
	}
}

// Commission returns the broker commission for one fill. The formula depends
// on the asset class:
//   - forex and futures charge the flat rate per unit
//   - stocks treat rates below 0.01 as a percentage of notional, otherwise
//     as per-share
//   - crypto charges a percentage of notional
//   - options and any unlisted class are commission-free
func (m *CostModel) Commission(price float64, quantity float64, isEntry bool) float64 {
	_ = isEntry // entry and exit are charged identically

	switch m.config.AssetClass {
	case AssetClassForex, AssetClassFutures:
		return m.config.CommissionRate * abs(quantity)
	case AssetClassStocks:
		if m.config.CommissionRate < perShareCommissionThreshold {
			return (m.config.CommissionRate / 100) * price * abs(quantity)
		}

		return m.config.CommissionRate * abs(quantity)
	case AssetClassCrypto:
		return (m.config.CommissionRate / 100) * price * abs(quantity)
	default:
		return 0.0
	}
}

// FinancingCost returns the overnight carry for holding the position.
// Longs always pay. Forex shorts are credited the symmetric amount (negative
// cost); shorts on every other asset class pay the borrow-cost penalty.
func (m *CostModel) FinancingCost(price float64, quantity float64, holdingDays int, isLong bool) float64 {
	if holdingDays == 0 {
		return 0.0
	}

	positionValue := price * abs(quantity)
	dailyRate := m.config.FinancingRateAnnual / daysPerYear

	if isLong {
		return positionValue * dailyRate * float64(holdingDays)
	}

	if m.config.AssetClass == AssetClassForex {
		return -positionValue * dailyRate * float64(holdingDays)
	}

	return positionValue * dailyRate * shortBorrowMultiplier * float64(holdingDays)
}

// ExchangeFees returns the exchange/platform fee for one fill.
func (m *CostModel) ExchangeFees(price float64, quantity float64) float64 {
	return (m.config.ExchangeFeeBps / basisPointDivisor) * price * abs(quantity)
}

// TotalCosts computes the full cost breakdown for a complete round trip:
// spread, slippage and exchange fees at entry and exit (each with its own
// price and market conditions), commission on both fills, and a single
// financing charge for the holding period. This is the only entry point the
// backtest engine calls.
func (m *CostModel) TotalCosts(
	entryPrice float64,
	exitPrice float64,
	quantity float64,
	holdingDays int,
	isLong bool,
	entryConditions optional.Option[types.MarketConditions],
	exitConditions optional.Option[types.MarketConditions],
) types.TradingCosts {
	return types.TradingCosts{
		SpreadCost:    m.SpreadCost(entryPrice, quantity, entryConditions) + m.SpreadCost(exitPrice, quantity, exitConditions),
		SlippageCost:  m.Slippage(entryPrice, quantity, entryConditions) + m.Slippage(exitPrice, quantity, exitConditions),
		Commission:    m.Commission(entryPrice, quantity, true) + m.Commission(exitPrice, quantity, false),
		FinancingCost: m.FinancingCost(entryPrice, quantity, holdingDays, isLong),
		ExchangeFees:  m.ExchangeFees(entryPrice, quantity) + m.ExchangeFees(exitPrice, quantity),
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
