package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/costsim/internal/types"
)

type PerformanceTestSuite struct {
	suite.Suite
}

func TestPerformanceSuite(t *testing.T) {
	suite.Run(t, new(PerformanceTestSuite))
}

// curveOf builds a daily equity curve from total-equity values.
func curveOf(equities ...float64) []types.EquityPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	curve := make([]types.EquityPoint, 0, len(equities))
	for i, equity := range equities {
		curve = append(curve, types.EquityPoint{
			Date:        start.AddDate(0, 0, i),
			TotalEquity: equity,
		})
	}

	return curve
}

func (suite *PerformanceTestSuite) TestCalculateAllOnEmptyResult() {
	result := types.Result{
		InitialCapital: 10000,
		FinalCapital:   10000,
	}

	report := NewPerformanceMetrics(result, DefaultRiskFreeRate).CalculateAll()

	suite.Equal(ReturnMetrics{Years: 1.0}, report.Returns)
	suite.Equal(RiskMetrics{}, report.Risk)
	suite.Equal(TradeStatistics{}, report.Trades)
	suite.Equal(CostAnalysis{}, report.Costs)
}

func (suite *PerformanceTestSuite) TestReturnMetrics() {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	result := types.Result{
		InitialCapital: 10000,
		FinalCapital:   12000,
		EquityCurve: []types.EquityPoint{
			{Date: start, TotalEquity: 10000},
			// 730 whole days, just under two average calendar years.
			{Date: start.AddDate(0, 0, 730), TotalEquity: 12000},
		},
	}

	returns := NewPerformanceMetrics(result, DefaultRiskFreeRate).ReturnMetrics()

	suite.InDelta(20.0, returns.TotalReturnPct, 1e-9)
	suite.InDelta(2.0, returns.Years, 1e-9) // 730 / 365.25, rounded
	// (1.2^(365.25/730) - 1) * 100, rounded
	suite.InDelta(9.55, returns.CAGRPct, 1e-9)
	suite.InDelta(20.0, returns.AvgDailyReturnPct, 1e-9)
}

func (suite *PerformanceTestSuite) TestYearsCountWholeDaysOnly() {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	result := types.Result{
		InitialCapital: 10000,
		FinalCapital:   10500,
		EquityCurve: []types.EquityPoint{
			{Date: start, TotalEquity: 10000},
			// Twelve hours truncate to zero days, so no annualization.
			{Date: start.Add(12 * time.Hour), TotalEquity: 10500},
		},
	}

	returns := NewPerformanceMetrics(result, DefaultRiskFreeRate).ReturnMetrics()

	suite.InDelta(0.0, returns.Years, 1e-9)
	suite.InDelta(0.0, returns.CAGRPct, 1e-9)
	suite.InDelta(5.0, returns.TotalReturnPct, 1e-9)
}

func (suite *PerformanceTestSuite) TestSharpeIsZeroForFlatEquity() {
	result := types.Result{
		InitialCapital: 10000,
		FinalCapital:   10000,
		EquityCurve:    curveOf(10000, 10000, 10000),
	}

	risk := NewPerformanceMetrics(result, DefaultRiskFreeRate).RiskMetrics()

	suite.InDelta(0.0, risk.SharpeRatio, 1e-9)
	suite.InDelta(0.0, risk.SortinoRatio, 1e-9)
	suite.InDelta(0.0, risk.VolatilityAnnualPct, 1e-9)
	suite.InDelta(0.0, risk.MaxDrawdownPct, 1e-9)
}

func (suite *PerformanceTestSuite) TestRiskMetrics() {
	// Daily returns: +10%, -5%. Sample std of {0.10, -0.05} is ~0.106066;
	// with a zero risk-free rate Sharpe is 0.025 / 0.106066 * sqrt(252).
	result := types.Result{
		InitialCapital: 100,
		FinalCapital:   104.5,
		EquityCurve:    curveOf(100, 110, 104.5),
	}

	risk := NewPerformanceMetrics(result, 0.0).RiskMetrics()

	suite.InDelta(3.74, risk.SharpeRatio, 1e-9)
	// The single losing day gives no downside deviation to divide by.
	suite.InDelta(0.0, risk.SortinoRatio, 1e-9)
	suite.InDelta(-5.0, risk.MaxDrawdownPct, 1e-9)
	suite.Equal(1, risk.MaxDrawdownDurationDays)
	suite.InDelta(168.37, risk.VolatilityAnnualPct, 1e-9)
}

func (suite *PerformanceTestSuite) TestSortinoFallsBackToSharpeWithoutDownside() {
	result := types.Result{
		InitialCapital: 100,
		FinalCapital:   115.5,
		EquityCurve:    curveOf(100, 105, 115.5),
	}

	risk := NewPerformanceMetrics(result, 0.0).RiskMetrics()

	suite.NotZero(risk.SharpeRatio)
	suite.InDelta(risk.SharpeRatio, risk.SortinoRatio, 1e-9)
}

func (suite *PerformanceTestSuite) TestDrawdown() {
	result := types.Result{
		InitialCapital: 100,
		FinalCapital:   121,
		EquityCurve:    curveOf(100, 110, 99, 104.5, 121),
	}

	risk := NewPerformanceMetrics(result, DefaultRiskFreeRate).RiskMetrics()

	// Trough 99 against peak 110, with two samples spent below the peak.
	suite.InDelta(-10.0, risk.MaxDrawdownPct, 1e-9)
	suite.Equal(2, risk.MaxDrawdownDurationDays)
}

func (suite *PerformanceTestSuite) TestTradeStatistics() {
	result := types.Result{
		InitialCapital: 10000,
		FinalCapital:   10110,
		Trades: []types.Trade{
			{NetPnL: 100, HoldingDays: 5},
			{NetPnL: -50, HoldingDays: 3},
			{NetPnL: 60, HoldingDays: 4},
		},
	}

	stats := NewPerformanceMetrics(result, DefaultRiskFreeRate).TradeStatistics()

	suite.Equal(3, stats.TotalTrades)
	suite.Equal(2, stats.WinningTrades)
	suite.Equal(1, stats.LosingTrades)
	suite.InDelta(66.67, stats.WinRatePct, 1e-9)
	suite.InDelta(80.0, stats.AvgWin, 1e-9)
	suite.InDelta(-50.0, stats.AvgLoss, 1e-9)
	suite.InDelta(100.0, stats.LargestWin, 1e-9)
	suite.InDelta(-50.0, stats.LargestLoss, 1e-9)
	suite.InDelta(3.2, stats.ProfitFactor, 1e-9) // 160 / 50
	suite.InDelta(4.0, stats.AvgHoldingDays, 1e-9)
}

func (suite *PerformanceTestSuite) TestProfitFactorIsZeroWithoutLosers() {
	result := types.Result{
		Trades: []types.Trade{
			{NetPnL: 100},
			{NetPnL: 60},
		},
	}

	stats := NewPerformanceMetrics(result, DefaultRiskFreeRate).TradeStatistics()

	suite.InDelta(100.0, stats.WinRatePct, 1e-9)
	suite.InDelta(0.0, stats.ProfitFactor, 1e-9)
}

func (suite *PerformanceTestSuite) TestCostAnalysis() {
	result := types.Result{
		Trades: []types.Trade{
			{
				GrossPnL: 100,
				Costs: types.TradingCosts{
					SpreadCost:    2,
					SlippageCost:  1,
					Commission:    0.5,
					FinancingCost: 0.25,
					ExchangeFees:  0.25,
				},
			},
			{
				GrossPnL: 50,
				Costs: types.TradingCosts{
					SpreadCost:    1,
					SlippageCost:  0.5,
					Commission:    0.5,
					FinancingCost: -0.5,
					ExchangeFees:  0.5,
				},
			},
		},
	}

	costs := NewPerformanceMetrics(result, DefaultRiskFreeRate).CostAnalysis()

	suite.InDelta(6.0, costs.TotalCosts, 1e-9)
	suite.InDelta(3.0, costs.AvgCostPerTrade, 1e-9)
	suite.InDelta(4.0, costs.CostsPctOfGrossPnL, 1e-9) // 6 / 150 * 100
	suite.InDelta(3.0, costs.SpreadCosts, 1e-9)
	suite.InDelta(1.5, costs.SlippageCosts, 1e-9)
	suite.InDelta(1.0, costs.CommissionCosts, 1e-9)
	suite.InDelta(-0.25, costs.FinancingCosts, 1e-9)
	suite.InDelta(0.75, costs.ExchangeFeeCosts, 1e-9)
}

func (suite *PerformanceTestSuite) TestCostPctSkippedForNonPositiveGross() {
	result := types.Result{
		Trades: []types.Trade{
			{GrossPnL: -100, Costs: types.TradingCosts{SpreadCost: 5}},
		},
	}

	costs := NewPerformanceMetrics(result, DefaultRiskFreeRate).CostAnalysis()

	suite.InDelta(5.0, costs.TotalCosts, 1e-9)
	suite.InDelta(0.0, costs.CostsPctOfGrossPnL, 1e-9)
}

func (suite *PerformanceTestSuite) TestWriteReport() {
	path := filepath.Join(suite.T().TempDir(), "metrics.yaml")

	report := NewPerformanceMetrics(types.Result{InitialCapital: 10000, FinalCapital: 10000}, DefaultRiskFreeRate).CalculateAll()
	suite.Require().NoError(WriteReport(path, report))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(data), "sharpe_ratio")
	suite.Contains(string(data), "total_costs")
}
