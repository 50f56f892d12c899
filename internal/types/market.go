package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// PriceField selects which price of a bar drives the simulation.
type PriceField string

const (
	PriceFieldOpen  PriceField = "open"
	PriceFieldHigh  PriceField = "high"
	PriceFieldLow   PriceField = "low"
	PriceFieldClose PriceField = "close"
)

// Of returns the selected price of the given bar.
func (f PriceField) Of(bar Bar) float64 {
	switch f {
	case PriceFieldOpen:
		return bar.Open
	case PriceFieldHigh:
		return bar.High
	case PriceFieldLow:
		return bar.Low
	case PriceFieldClose:
		return bar.Close
	default:
		return bar.Close
	}
}

// Bar is a single sample of the input price series.
// Volatility, VolumeRatio and Liquidity are optional market-condition
// columns; absent values default to 1.0 when the snapshot is built.
type Bar struct {
	Date   time.Time `yaml:"date" json:"date"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`

	Volatility  optional.Option[float64] `yaml:"volatility,omitempty" json:"volatility,omitempty"`
	VolumeRatio optional.Option[float64] `yaml:"volume_ratio,omitempty" json:"volume_ratio,omitempty"`
	Liquidity   optional.Option[float64] `yaml:"liquidity,omitempty" json:"liquidity,omitempty"`
}

// MarketConditions is the per-bar market snapshot consumed by the cost model.
// Volatility widens spreads and volatility-model slippage, VolumeRatio scales
// volume-model slippage, Liquidity is expected in [0, 1].
type MarketConditions struct {
	Volatility  float64 `yaml:"volatility" json:"volatility"`
	VolumeRatio float64 `yaml:"volume_ratio" json:"volume_ratio"`
	Liquidity   float64 `yaml:"liquidity" json:"liquidity"`
}

// Conditions builds the market snapshot for the bar, defaulting each absent
// column to 1.0.
func (b Bar) Conditions() MarketConditions {
	return MarketConditions{
		Volatility:  b.Volatility.TakeOr(1.0),
		VolumeRatio: b.VolumeRatio.TakeOr(1.0),
		Liquidity:   b.Liquidity.TakeOr(1.0),
	}
}
