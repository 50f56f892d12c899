package types

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/costsim/pkg/errors"
)

// Side is the direction of a position. Quantity is always a magnitude;
// direction lives here.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// TradingCosts is the complete cost breakdown for one round-trip trade.
// All components are currency-denominated. FinancingCost may be negative for
// forex shorts, representing a carry credit.
type TradingCosts struct {
	SpreadCost    float64 `json:"spread_cost"`
	SlippageCost  float64 `json:"slippage_cost"`
	Commission    float64 `json:"commission"`
	FinancingCost float64 `json:"financing_cost"`
	ExchangeFees  float64 `json:"exchange_fees"`
}

// Total returns the sum of all five cost components. The sum goes through
// decimal arithmetic so the invariant total == sum(components) holds exactly.
func (c TradingCosts) Total() float64 {
	total := decimal.NewFromFloat(c.SpreadCost).
		Add(decimal.NewFromFloat(c.SlippageCost)).
		Add(decimal.NewFromFloat(c.Commission)).
		Add(decimal.NewFromFloat(c.FinancingCost)).
		Add(decimal.NewFromFloat(c.ExchangeFees))

	result, _ := total.Float64()

	return result
}

// tradingCostsRecord is the serialized form of TradingCosts. TotalCost is a
// derived field: written on marshal, ignored on unmarshal.
type tradingCostsRecord struct {
	SpreadCost    float64 `yaml:"spread_cost" json:"spread_cost"`
	SlippageCost  float64 `yaml:"slippage_cost" json:"slippage_cost"`
	Commission    float64 `yaml:"commission" json:"commission"`
	FinancingCost float64 `yaml:"financing_cost" json:"financing_cost"`
	ExchangeFees  float64 `yaml:"exchange_fees" json:"exchange_fees"`
	TotalCost     float64 `yaml:"total_cost" json:"total_cost"`
}

func (c TradingCosts) record() tradingCostsRecord {
	return tradingCostsRecord{
		SpreadCost:    c.SpreadCost,
		SlippageCost:  c.SlippageCost,
		Commission:    c.Commission,
		FinancingCost: c.FinancingCost,
		ExchangeFees:  c.ExchangeFees,
		TotalCost:     c.Total(),
	}
}

func (c *TradingCosts) fromRecord(record tradingCostsRecord) {
	c.SpreadCost = record.SpreadCost
	c.SlippageCost = record.SlippageCost
	c.Commission = record.Commission
	c.FinancingCost = record.FinancingCost
	c.ExchangeFees = record.ExchangeFees
}

// MarshalJSON implements json.Marshaler.
func (c TradingCosts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.record())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *TradingCosts) UnmarshalJSON(data []byte) error {
	var record tradingCostsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	c.fromRecord(record)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c TradingCosts) MarshalYAML() (interface{}, error) {
	return c.record(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *TradingCosts) UnmarshalYAML(value *yaml.Node) error {
	var record tradingCostsRecord
	if err := value.Decode(&record); err != nil {
		return err
	}

	c.fromRecord(record)

	return nil
}

// Position represents an open exposure. It is created by OpenPosition and
// removed exactly once by ClosePosition; positions never partially close.
type Position struct {
	ID         string    `yaml:"id" json:"id" validate:"required"`
	EntryDate  time.Time `yaml:"entry_date" json:"entry_date" validate:"required"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price" validate:"required,gt=0"`
	Quantity   float64   `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Side       Side      `yaml:"side" json:"side" validate:"required,oneof=long short"`
}

// Validate validates the Position struct.
func (p *Position) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPosition, "invalid position", err)
	}

	return nil
}

// MarkToMarket returns the unrealized PnL of the position at the given price.
func (p Position) MarkToMarket(price float64) float64 {
	if p.Side == SideLong {
		return (price - p.EntryPrice) * p.Quantity
	}

	return (p.EntryPrice - price) * p.Quantity
}

// Trade is an immutable record of a closed, fully-costed round trip.
type Trade struct {
	ID         string    `yaml:"id" json:"id"`
	EntryDate  time.Time `yaml:"entry_date" json:"entry_date"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price"`
	ExitDate   time.Time `yaml:"exit_date" json:"exit_date"`
	ExitPrice  float64   `yaml:"exit_price" json:"exit_price"`
	Quantity   float64   `yaml:"quantity" json:"quantity"`
	Side       Side      `yaml:"side" json:"side"`

	Costs TradingCosts `yaml:"costs" json:"costs"`

	// GrossPnL is the frictionless profit, NetPnL is GrossPnL minus the
	// total of all cost components.
	GrossPnL float64 `yaml:"gross_pnl" json:"gross_pnl"`
	NetPnL   float64 `yaml:"net_pnl" json:"net_pnl"`

	// HoldingDays is the calendar-day difference between exit and entry.
	HoldingDays int `yaml:"holding_days" json:"holding_days"`
	// ReturnPct is NetPnL over entry notional, in percent.
	ReturnPct float64 `yaml:"return_pct" json:"return_pct"`
}
