// Package metrics derives performance statistics from a backtest result:
// returns, risk-adjusted ratios, trade statistics and cost attribution. The
// computation is total over any valid result: degenerate inputs (no trades,
// a flat equity curve, a zero time span) resolve to documented zero defaults
// instead of failing.
package metrics

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
	"github.com/rxtech-lab/costsim/pkg/utils"
)

const (
	// DefaultRiskFreeRate is the default annual risk-free rate.
	DefaultRiskFreeRate = 0.02

	tradingDaysPerYear   = 252.0
	calendarDaysPerYear  = 365.25
	presentationDecimals = 2
)

// ReturnMetrics groups return-based statistics.
type ReturnMetrics struct {
	TotalReturnPct     float64 `yaml:"total_return_pct" json:"total_return_pct"`
	CAGRPct            float64 `yaml:"cagr_pct" json:"cagr_pct"`
	AvgDailyReturnPct  float64 `yaml:"avg_daily_return_pct" json:"avg_daily_return_pct"`
	AvgAnnualReturnPct float64 `yaml:"avg_annual_return_pct" json:"avg_annual_return_pct"`
	Years              float64 `yaml:"years" json:"years"`
}

// RiskMetrics groups risk-adjusted statistics.
type RiskMetrics struct {
	SharpeRatio             float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	SortinoRatio            float64 `yaml:"sortino_ratio" json:"sortino_ratio"`
	MaxDrawdownPct          float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	MaxDrawdownDurationDays int     `yaml:"max_drawdown_duration_days" json:"max_drawdown_duration_days"`
	VolatilityAnnualPct     float64 `yaml:"volatility_annual_pct" json:"volatility_annual_pct"`
}

// TradeStatistics groups trade-level statistics.
type TradeStatistics struct {
	TotalTrades    int     `yaml:"total_trades" json:"total_trades"`
	WinningTrades  int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades   int     `yaml:"losing_trades" json:"losing_trades"`
	WinRatePct     float64 `yaml:"win_rate_pct" json:"win_rate_pct"`
	AvgWin         float64 `yaml:"avg_win" json:"avg_win"`
	AvgLoss        float64 `yaml:"avg_loss" json:"avg_loss"`
	LargestWin     float64 `yaml:"largest_win" json:"largest_win"`
	LargestLoss    float64 `yaml:"largest_loss" json:"largest_loss"`
	ProfitFactor   float64 `yaml:"profit_factor" json:"profit_factor"`
	AvgHoldingDays float64 `yaml:"avg_holding_days" json:"avg_holding_days"`
}

// CostAnalysis groups aggregate cost attribution.
type CostAnalysis struct {
	TotalCosts         float64 `yaml:"total_costs" json:"total_costs"`
	AvgCostPerTrade    float64 `yaml:"avg_cost_per_trade" json:"avg_cost_per_trade"`
	CostsPctOfGrossPnL float64 `yaml:"costs_pct_of_gross_pnl" json:"costs_pct_of_gross_pnl"`
	SpreadCosts        float64 `yaml:"spread_costs" json:"spread_costs"`
	SlippageCosts      float64 `yaml:"slippage_costs" json:"slippage_costs"`
	CommissionCosts    float64 `yaml:"commission_costs" json:"commission_costs"`
	FinancingCosts     float64 `yaml:"financing_costs" json:"financing_costs"`
	ExchangeFeeCosts   float64 `yaml:"exchange_fee_costs" json:"exchange_fee_costs"`
}

// Report merges all four metric groups. Numeric fields are rounded for
// presentation; the underlying result is never rounded.
type Report struct {
	Returns ReturnMetrics   `yaml:"returns" json:"returns"`
	Risk    RiskMetrics     `yaml:"risk" json:"risk"`
	Trades  TradeStatistics `yaml:"trades" json:"trades"`
	Costs   CostAnalysis    `yaml:"costs" json:"costs"`
}

// PerformanceMetrics computes statistics from one backtest result. It holds
// no simulation state of its own.
type PerformanceMetrics struct {
	result       types.Result
	riskFreeRate float64
}

// NewPerformanceMetrics creates a calculator for the given result and annual
// risk-free rate. Use DefaultRiskFreeRate unless the caller knows better.
func NewPerformanceMetrics(result types.Result, riskFreeRate float64) *PerformanceMetrics {
	return &PerformanceMetrics{
		result:       result,
		riskFreeRate: riskFreeRate,
	}
}

// CalculateAll computes all four metric groups and merges them.
func (m *PerformanceMetrics) CalculateAll() Report {
	return Report{
		Returns: m.ReturnMetrics(),
		Risk:    m.RiskMetrics(),
		Trades:  m.TradeStatistics(),
		Costs:   m.CostAnalysis(),
	}
}

// ReturnMetrics computes return-based statistics.
func (m *PerformanceMetrics) ReturnMetrics() ReturnMetrics {
	initial := m.result.InitialCapital
	final := m.result.FinalCapital

	totalReturn := (final - initial) / initial * 100

	years := 1.0
	if len(m.result.EquityCurve) > 0 {
		first := m.result.EquityCurve[0].Date
		last := m.result.EquityCurve[len(m.result.EquityCurve)-1].Date
		// Whole calendar days only; a partial trailing day does not count.
		years = float64(int(last.Sub(first).Hours()/24)) / calendarDaysPerYear
	}

	cagr := 0.0
	if years > 0 {
		cagr = (math.Pow(final/initial, 1/years) - 1) * 100
	}

	avgDaily := 0.0
	if returns := m.dailyReturns(); len(returns) > 0 {
		avgDaily = mean(returns)
	}

	return ReturnMetrics{
		TotalReturnPct:     utils.RoundTo(totalReturn, presentationDecimals),
		CAGRPct:            utils.RoundTo(cagr, presentationDecimals),
		AvgDailyReturnPct:  utils.RoundTo(avgDaily*100, 4),
		AvgAnnualReturnPct: utils.RoundTo(avgDaily*tradingDaysPerYear*100, presentationDecimals),
		Years:              utils.RoundTo(years, presentationDecimals),
	}
}

// RiskMetrics computes risk-adjusted statistics from the equity curve's
// daily-return series. Fewer than two equity samples yield all zeros.
func (m *PerformanceMetrics) RiskMetrics() RiskMetrics {
	returns := m.dailyReturns()
	if len(returns) == 0 {
		return RiskMetrics{}
	}

	dailyStd := stdDev(returns)
	excessMean := mean(returns) - m.riskFreeRate/tradingDaysPerYear

	sharpe := 0.0
	if dailyStd > 0 {
		sharpe = excessMean / dailyStd * math.Sqrt(tradingDaysPerYear)
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	// With no downside days Sortino degenerates; fall back to Sharpe.
	sortino := sharpe
	if len(downside) > 0 {
		sortino = 0.0
		if downsideStd := stdDev(downside); downsideStd > 0 {
			sortino = excessMean / downsideStd * math.Sqrt(tradingDaysPerYear)
		}
	}

	maxDrawdown, duration := m.drawdown()

	return RiskMetrics{
		SharpeRatio:             utils.RoundTo(sharpe, presentationDecimals),
		SortinoRatio:            utils.RoundTo(sortino, presentationDecimals),
		MaxDrawdownPct:          utils.RoundTo(maxDrawdown, presentationDecimals),
		MaxDrawdownDurationDays: duration,
		VolatilityAnnualPct:     utils.RoundTo(dailyStd*math.Sqrt(tradingDaysPerYear)*100, presentationDecimals),
	}
}

// TradeStatistics computes trade-level statistics. No trades yield all
// zeros.
func (m *PerformanceMetrics) TradeStatistics() TradeStatistics {
	trades := m.result.Trades
	if len(trades) == 0 {
		return TradeStatistics{}
	}

	var (
		winners, losers         int
		sumWins, sumLosses      float64
		largestWin, largestLoss float64
		sumHolding              float64
	)

	for _, trade := range trades {
		sumHolding += float64(trade.HoldingDays)

		switch {
		case trade.NetPnL > 0:
			winners++
			sumWins += trade.NetPnL
			largestWin = math.Max(largestWin, trade.NetPnL)
		case trade.NetPnL < 0:
			losers++
			sumLosses += trade.NetPnL
			largestLoss = math.Min(largestLoss, trade.NetPnL)
		}
	}

	avgWin := 0.0
	if winners > 0 {
		avgWin = sumWins / float64(winners)
	}

	avgLoss := 0.0
	if losers > 0 {
		avgLoss = sumLosses / float64(losers)
	}

	profitFactor := 0.0
	if losers > 0 && sumLosses != 0 {
		profitFactor = sumWins / math.Abs(sumLosses)
	}

	return TradeStatistics{
		TotalTrades:    len(trades),
		WinningTrades:  winners,
		LosingTrades:   losers,
		WinRatePct:     utils.RoundTo(float64(winners)/float64(len(trades))*100, presentationDecimals),
		AvgWin:         utils.RoundTo(avgWin, presentationDecimals),
		AvgLoss:        utils.RoundTo(avgLoss, presentationDecimals),
		LargestWin:     utils.RoundTo(largestWin, presentationDecimals),
		LargestLoss:    utils.RoundTo(largestLoss, presentationDecimals),
		ProfitFactor:   utils.RoundTo(profitFactor, presentationDecimals),
		AvgHoldingDays: utils.RoundTo(sumHolding/float64(len(trades)), 1),
	}
}

// CostAnalysis aggregates cost components across all trades. No trades yield
// all zeros.
func (m *PerformanceMetrics) CostAnalysis() CostAnalysis {
	trades := m.result.Trades
	if len(trades) == 0 {
		return CostAnalysis{}
	}

	var analysis CostAnalysis

	totalGross := 0.0
	for _, trade := range trades {
		analysis.SpreadCosts += trade.Costs.SpreadCost
		analysis.SlippageCosts += trade.Costs.SlippageCost
		analysis.CommissionCosts += trade.Costs.Commission
		analysis.FinancingCosts += trade.Costs.FinancingCost
		analysis.ExchangeFeeCosts += trade.Costs.ExchangeFees
		analysis.TotalCosts += trade.Costs.Total()
		totalGross += trade.GrossPnL
	}

	analysis.AvgCostPerTrade = analysis.TotalCosts / float64(len(trades))
	if totalGross > 0 {
		analysis.CostsPctOfGrossPnL = analysis.TotalCosts / totalGross * 100
	}

	analysis.TotalCosts = utils.RoundTo(analysis.TotalCosts, presentationDecimals)
	analysis.AvgCostPerTrade = utils.RoundTo(analysis.AvgCostPerTrade, presentationDecimals)
	analysis.CostsPctOfGrossPnL = utils.RoundTo(analysis.CostsPctOfGrossPnL, presentationDecimals)
	analysis.SpreadCosts = utils.RoundTo(analysis.SpreadCosts, presentationDecimals)
	analysis.SlippageCosts = utils.RoundTo(analysis.SlippageCosts, presentationDecimals)
	analysis.CommissionCosts = utils.RoundTo(analysis.CommissionCosts, presentationDecimals)
	analysis.FinancingCosts = utils.RoundTo(analysis.FinancingCosts, presentationDecimals)
	analysis.ExchangeFeeCosts = utils.RoundTo(analysis.ExchangeFeeCosts, presentationDecimals)

	return analysis
}

// dailyReturns is the percentage-change series of total equity.
func (m *PerformanceMetrics) dailyReturns() []float64 {
	curve := m.result.EquityCurve
	if len(curve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].TotalEquity
		returns = append(returns, (curve[i].TotalEquity-prev)/prev)
	}

	return returns
}

// drawdown returns the minimum peak-relative equity decline in percent and
// the longest consecutive run of samples spent below the running maximum.
func (m *PerformanceMetrics) drawdown() (maxDrawdownPct float64, maxDurationDays int) {
	curve := m.result.EquityCurve
	if len(curve) == 0 {
		return 0, 0
	}

	runningMax := curve[0].TotalEquity
	currentDuration := 0

	for _, point := range curve {
		if point.TotalEquity > runningMax {
			runningMax = point.TotalEquity
		}

		drawdown := (point.TotalEquity - runningMax) / runningMax * 100
		if drawdown < maxDrawdownPct {
			maxDrawdownPct = drawdown
		}

		if point.TotalEquity < runningMax {
			currentDuration++
			if currentDuration > maxDurationDays {
				maxDurationDays = currentDuration
			}
		} else {
			currentDuration = 0
		}
	}

	return maxDrawdownPct, maxDurationDays
}

// WriteReport writes a metrics report to a YAML file.
func WriteReport(path string, report Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to marshal report to YAML", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to write report to file", err)
	}

	return nil
}

// mean returns the arithmetic mean. Callers guarantee non-empty input.
func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation (n-1 denominator), 0 when
// fewer than two values are available.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)

	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}

	return math.Sqrt(sum / float64(len(values)-1))
}
