package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestTradingCostsTotal() {
	tests := []struct {
		name     string
		costs    TradingCosts
		expected float64
	}{
		{
			name:     "zero costs",
			costs:    TradingCosts{},
			expected: 0.0,
		},
		{
			name: "all components sum",
			costs: TradingCosts{
				SpreadCost:    4.2,
				SlippageCost:  1.05,
				Commission:    2.5,
				FinancingCost: 0.3,
				ExchangeFees:  0.1,
			},
			expected: 8.15,
		},
		{
			name: "negative financing reduces the total",
			costs: TradingCosts{
				SpreadCost:    2.0,
				FinancingCost: -0.5,
			},
			expected: 1.5,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, tc.costs.Total(), 1e-12)
		})
	}
}

func (suite *TradeTestSuite) TestTradingCostsJSONIncludesTotal() {
	costs := TradingCosts{
		SpreadCost:   4.2,
		SlippageCost: 1.05,
	}

	data, err := json.Marshal(costs)
	suite.Require().NoError(err)

	var raw map[string]float64
	suite.Require().NoError(json.Unmarshal(data, &raw))
	suite.InDelta(5.25, raw["total_cost"], 1e-12)

	var decoded TradingCosts
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(costs, decoded)
	suite.InDelta(costs.Total(), decoded.Total(), 1e-12)
}

func (suite *TradeTestSuite) TestTradingCostsYAMLRoundTrip() {
	costs := TradingCosts{
		SpreadCost:    4.2,
		SlippageCost:  1.05,
		Commission:    2.5,
		FinancingCost: -0.3,
		ExchangeFees:  0.1,
	}

	data, err := yaml.Marshal(costs)
	suite.Require().NoError(err)
	suite.Contains(string(data), "total_cost")

	var decoded TradingCosts
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal(costs, decoded)
}

func (suite *TradeTestSuite) TestPositionValidate() {
	entryDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		position Position
		wantErr  bool
	}{
		{
			name: "valid long",
			position: Position{
				ID:         "pos-1",
				EntryDate:  entryDate,
				EntryPrice: 100,
				Quantity:   10,
				Side:       SideLong,
			},
			wantErr: false,
		},
		{
			name: "zero quantity",
			position: Position{
				ID:         "pos-1",
				EntryDate:  entryDate,
				EntryPrice: 100,
				Quantity:   0,
				Side:       SideLong,
			},
			wantErr: true,
		},
		{
			name: "unknown side",
			position: Position{
				ID:         "pos-1",
				EntryDate:  entryDate,
				EntryPrice: 100,
				Quantity:   10,
				Side:       Side("flat"),
			},
			wantErr: true,
		},
		{
			name: "negative entry price",
			position: Position{
				ID:         "pos-1",
				EntryDate:  entryDate,
				EntryPrice: -1,
				Quantity:   10,
				Side:       SideShort,
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.position.Validate()
			if tc.wantErr {
				suite.Error(err)
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *TradeTestSuite) TestMarkToMarket() {
	long := Position{EntryPrice: 100, Quantity: 10, Side: SideLong}
	short := Position{EntryPrice: 100, Quantity: 10, Side: SideShort}

	suite.InDelta(50.0, long.MarkToMarket(105), 1e-12)
	suite.InDelta(-50.0, long.MarkToMarket(95), 1e-12)
	suite.InDelta(-50.0, short.MarkToMarket(105), 1e-12)
	suite.InDelta(50.0, short.MarkToMarket(95), 1e-12)
}
