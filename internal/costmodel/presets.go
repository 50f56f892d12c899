package costmodel

import (
	"sort"
	"strings"

	"github.com/rxtech-lab/costsim/pkg/errors"
)

// Preset names for common trading setups.
const (
	PresetForexRetail          = "forex_retail"
	PresetForexInstitutional   = "forex_institutional"
	PresetStocksCommissionFree = "stocks_commission_free"
	PresetStocksTraditional    = "stocks_traditional"
	PresetCryptoExchange       = "crypto_exchange"
	PresetFuturesCME           = "futures_cme"
)

// presets is the process-wide registry of named cost configurations. It is
// built once and never mutated after initialization.
var presets = map[string]Config{
	PresetForexRetail: {
		AssetClass:          AssetClassForex,
		SpreadBps:           2.0,
		CommissionRate:      0.0,
		SlippageModel:       SlippageModelFixed,
		BaseSlippageBps:     0.5,
		FinancingRateAnnual: 0.05,
		ExchangeFeeBps:      0.0,
	},
	PresetForexInstitutional: {
		AssetClass:          AssetClassForex,
		SpreadBps:           0.5,
		CommissionRate:      0.0,
		SlippageModel:       SlippageModelFixed,
		BaseSlippageBps:     0.2,
		FinancingRateAnnual: 0.03,
		ExchangeFeeBps:      0.0,
	},
	PresetStocksCommissionFree: {
		AssetClass:          AssetClassStocks,
		SpreadBps:           5.0,
		CommissionRate:      0.0,
		SlippageModel:       SlippageModelFixed,
		BaseSlippageBps:     1.0,
		FinancingRateAnnual: 0.08,
		ExchangeFeeBps:      0.0,
	},
	PresetStocksTraditional: {
		AssetClass:          AssetClassStocks,
		SpreadBps:           5.0,
		CommissionRate:      0.005, // $0.005 per share
		SlippageModel:       SlippageModelFixed,
		BaseSlippageBps:     1.0,
		FinancingRateAnnual: 0.08,
		ExchangeFeeBps:      0.0,
	},
	PresetCryptoExchange: {
		AssetClass:          AssetClassCrypto,
		SpreadBps:           10.0,
		CommissionRate:      0.1, // 0.1% taker fee
		SlippageModel:       SlippageModelVolatility,
		BaseSlippageBps:     5.0,
		FinancingRateAnnual: 0.0,
		ExchangeFeeBps:      0.0,
	},
	PresetFuturesCME: {
		AssetClass:          AssetClassFutures,
		SpreadBps:           1.0,
		CommissionRate:      2.50, // $2.50 per contract
		SlippageModel:       SlippageModelFixed,
		BaseSlippageBps:     0.5,
		FinancingRateAnnual: 0.0,
		ExchangeFeeBps:      0.0,
	},
}

// PresetNames returns the names of all registered presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// GetPreset returns the configuration registered under the given name.
// Unknown names are a configuration error naming the requested preset and
// listing the valid options.
func GetPreset(name string) (Config, error) {
	config, ok := presets[name]
	if !ok {
		return Config{}, errors.Newf(errors.ErrCodeUnknownPreset,
			"unknown cost preset %q, available: %s", name, strings.Join(PresetNames(), ", "))
	}

	return config, nil
}

// NewFromPreset creates a cost model from a named preset.
func NewFromPreset(name string) (*CostModel, error) {
	config, err := GetPreset(name)
	if err != nil {
		return nil, err
	}

	return New(config)
}
