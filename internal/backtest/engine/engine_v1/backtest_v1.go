// Package engine implements the v1 backtest engine: a single-threaded,
// deterministic simulation of a strategy over an ordered bar series with
// per-trade cost modeling.
package engine

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	backtestengine "github.com/rxtech-lab/costsim/internal/backtest/engine"
	"github.com/rxtech-lab/costsim/internal/costmodel"
	"github.com/rxtech-lab/costsim/internal/logger"
	"github.com/rxtech-lab/costsim/internal/strategy"
	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
	"github.com/rxtech-lab/costsim/pkg/utils"
)

// BacktestEngineV1 owns all simulation state for one run: open positions,
// the closed-trade ledger, the equity curve and current capital. Capital is
// mutated in exactly one place, ClosePosition.
type BacktestEngineV1 struct {
	config    Config
	costModel *costmodel.CostModel
	log       *logger.Logger

	runID       string
	capital     float64
	positions   []types.Position
	trades      []types.Trade
	equityCurve []types.EquityPoint

	initialized bool
}

// NewBacktestEngineV1 creates an uninitialized engine.
func NewBacktestEngineV1() backtestengine.Engine {
	return &BacktestEngineV1{
		config:      DefaultConfig(),
		costModel:   nil,
		log:         nil,
		runID:       "",
		capital:     0,
		positions:   nil,
		trades:      nil,
		equityCurve: nil,
		initialized: false,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed := DefaultConfig()
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	return b.initializeFromConfig(parsed)
}

func (b *BacktestEngineV1) initializeFromConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	costModel, err := config.ResolveCostModel()
	if err != nil {
		return err
	}

	if b.log == nil {
		log, loggerErr := logger.NewLogger()
		if loggerErr != nil {
			return loggerErr
		}

		b.log = log
	}

	b.config = config
	b.costModel = costModel
	b.runID = uuid.New().String()
	b.capital = config.InitialCapital
	b.positions = []types.Position{}
	b.trades = []types.Trade{}
	b.equityCurve = []types.EquityPoint{}
	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("run_id", b.runID),
		zap.Float64("initial_capital", config.InitialCapital),
		zap.String("cost_preset", config.CostPreset),
	)

	return nil
}

// SetLogger replaces the engine's logger. Must be called before Initialize
// to take effect for initialization logs.
func (b *BacktestEngineV1) SetLogger(log *logger.Logger) {
	b.log = log
}

// CanOpenPosition reports whether the open-position count is below the
// configured maximum.
func (b *BacktestEngineV1) CanOpenPosition() bool {
	return len(b.positions) < b.config.MaxPositions
}

// PositionSize returns the auto-sized quantity for a new position at the
// given price: a fraction of current capital, so sizing compounds with
// equity.
func (b *BacktestEngineV1) PositionSize(price float64) float64 {
	return b.capital * b.config.PositionSizePct / price
}

// OpenPosition opens a new position. It returns false, with no side effect,
// when capacity is exhausted or the side is short while shorting is
// disabled. When quantity is absent the position is auto-sized.
func (b *BacktestEngineV1) OpenPosition(date time.Time, price float64, side types.Side, quantity optional.Option[float64]) bool {
	if !b.CanOpenPosition() {
		b.log.Debug("Position rejected: capacity exhausted",
			zap.Int("open_positions", len(b.positions)),
			zap.Int("max_positions", b.config.MaxPositions),
		)

		return false
	}

	if side == types.SideShort && !b.config.AllowShorting {
		b.log.Debug("Position rejected: shorting disabled")

		return false
	}

	qty := quantity.TakeOr(b.PositionSize(price))

	b.positions = append(b.positions, types.Position{
		ID:         uuid.New().String(),
		EntryDate:  date,
		EntryPrice: price,
		Quantity:   qty,
		Side:       side,
	})

	b.log.Debug("Position opened",
		zap.String("side", string(side)),
		zap.Float64("price", price),
		zap.Float64("quantity", qty),
	)

	return true
}

// ClosePosition liquidates the entire position at the given date and price,
// computes the round-trip costs, appends the resulting Trade to the ledger
// and updates capital by the net PnL. This is the only place capital
// changes.
func (b *BacktestEngineV1) ClosePosition(position types.Position, date time.Time, price float64, conditions optional.Option[types.MarketConditions]) (types.Trade, error) {
	index := slices.IndexFunc(b.positions, func(p types.Position) bool {
		return p.ID == position.ID
	})
	if index < 0 {
		return types.Trade{}, errors.Newf(errors.ErrCodeInvalidPosition, "position %s is not open", position.ID)
	}

	holdingDays := calendarDays(position.EntryDate, date)
	isLong := position.Side == types.SideLong

	var grossPnL float64
	if isLong {
		grossPnL = (price - position.EntryPrice) * position.Quantity
	} else {
		grossPnL = (position.EntryPrice - price) * position.Quantity
	}

	costs := b.costModel.TotalCosts(
		position.EntryPrice,
		price,
		position.Quantity,
		holdingDays,
		isLong,
		conditions,
		conditions,
	)

	netPnL, _ := decimal.NewFromFloat(grossPnL).
		Sub(decimal.NewFromFloat(costs.Total())).
		Float64()

	notional := position.EntryPrice * position.Quantity
	trade := types.Trade{
		ID:          position.ID,
		EntryDate:   position.EntryDate,
		EntryPrice:  position.EntryPrice,
		ExitDate:    date,
		ExitPrice:   price,
		Quantity:    position.Quantity,
		Side:        position.Side,
		Costs:       costs,
		GrossPnL:    grossPnL,
		NetPnL:      netPnL,
		HoldingDays: holdingDays,
		ReturnPct:   netPnL / notional * 100,
	}

	b.capital += netPnL
	b.trades = append(b.trades, trade)
	b.positions = slices.Delete(b.positions, index, index+1)

	b.log.Debug("Position closed",
		zap.String("side", string(trade.Side)),
		zap.Float64("gross_pnl", trade.GrossPnL),
		zap.Float64("net_pnl", trade.NetPnL),
		zap.Float64("total_cost", trade.Costs.Total()),
		zap.Float64("capital", b.capital),
	)

	return trade, nil
}

// CloseAllPositions closes every open position at the same date and price.
func (b *BacktestEngineV1) CloseAllPositions(date time.Time, price float64, conditions optional.Option[types.MarketConditions]) error {
	for _, position := range slices.Clone(b.positions) {
		if _, err := b.ClosePosition(position, date, price, conditions); err != nil {
			return err
		}
	}

	return nil
}

// closeAllOfSide closes every open position with the given side.
func (b *BacktestEngineV1) closeAllOfSide(side types.Side, date time.Time, price float64, conditions optional.Option[types.MarketConditions]) error {
	for _, position := range slices.Clone(b.positions) {
		if position.Side != side {
			continue
		}

		if _, err := b.ClosePosition(position, date, price, conditions); err != nil {
			return err
		}
	}

	return nil
}

// UpdateEquity appends one equity-curve sample marking all open positions to
// the given price. The run loop calls it exactly once per processed bar,
// after any opens and closes for that bar.
func (b *BacktestEngineV1) UpdateEquity(date time.Time, price float64) {
	unrealized := 0.0
	for _, position := range b.positions {
		unrealized += position.MarkToMarket(price)
	}

	b.equityCurve = append(b.equityCurve, types.EquityPoint{
		Date:          date,
		Price:         price,
		Capital:       b.capital,
		UnrealizedPnL: unrealized,
		TotalEquity:   b.capital + unrealized,
		NumPositions:  len(b.positions),
	})
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(bars []types.Bar, strat strategy.Strategy, onBar optional.Option[backtestengine.OnBarCallback]) (types.Result, error) {
	if !b.initialized {
		return types.Result{}, errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	if strat == nil {
		return types.Result{}, errors.New(errors.ErrCodeInvalidParameter, "no strategy provided")
	}

	if len(bars) == 0 {
		return types.Result{}, errors.New(errors.ErrCodeBacktestNoData, "no bars provided")
	}

	if err := validateBars(bars, b.config.PriceField); err != nil {
		return types.Result{}, err
	}

	b.log.Info("Backtest run started",
		zap.String("run_id", b.runID),
		zap.String("strategy", strat.Name()),
		zap.Int("bars", len(bars)),
	)

	for i, bar := range bars {
		price := b.config.PriceField.Of(bar)
		conditions := optional.Some(bar.Conditions())

		// The strategy only ever sees bars up to and including the current
		// one.
		signal := strat.Decide(strategy.NewHistory(bars[:i+1]))

		switch signal {
		case types.SignalBuy:
			b.OpenPosition(bar.Date, price, types.SideLong, optional.None[float64]())
		case types.SignalSell:
			if err := b.closeAllOfSide(types.SideLong, bar.Date, price, conditions); err != nil {
				return types.Result{}, err
			}
		case types.SignalShort:
			b.OpenPosition(bar.Date, price, types.SideShort, optional.None[float64]())
		case types.SignalCover:
			if err := b.closeAllOfSide(types.SideShort, bar.Date, price, conditions); err != nil {
				return types.Result{}, err
			}
		default:
			// hold and unrecognized signals take no action
		}

		b.UpdateEquity(bar.Date, price)

		if onBar.IsSome() {
			onBar.Unwrap()(i+1, len(bars))
		}
	}

	// Force-close whatever is still open at the final bar. Unlike
	// signal-driven closes, the forced close is costed without market
	// conditions, so the final bar's volatility or liquidity never scales it.
	last := bars[len(bars)-1]
	if err := b.CloseAllPositions(last.Date, b.config.PriceField.Of(last), optional.None[types.MarketConditions]()); err != nil {
		return types.Result{}, err
	}

	result := b.Results()

	b.log.Info("Backtest run finished",
		zap.String("run_id", b.runID),
		zap.Float64("final_capital", result.FinalCapital),
		zap.Float64("total_return_pct", result.TotalReturnPct),
		zap.Int("num_trades", result.NumTrades),
	)

	return result, nil
}

// Results returns the current results snapshot.
func (b *BacktestEngineV1) Results() types.Result {
	initial := b.config.InitialCapital

	return types.Result{
		RunID:          b.runID,
		Timestamp:      time.Now().UTC(),
		InitialCapital: initial,
		FinalCapital:   b.capital,
		TotalReturnPct: (b.capital - initial) / initial * 100,
		NumTrades:      len(b.trades),
		Trades:         slices.Clone(b.trades),
		EquityCurve:    slices.Clone(b.equityCurve),
	}
}

// Reset implements engine.Engine. It restores capital to the initial value
// and clears positions, trades and the equity curve so the same instance can
// re-run deterministically.
func (b *BacktestEngineV1) Reset() error {
	if !b.initialized {
		return errors.New(errors.ErrCodeBacktestNotInitialized, "engine is not initialized")
	}

	b.runID = uuid.New().String()
	b.capital = b.config.InitialCapital
	b.positions = []types.Position{}
	b.trades = []types.Trade{}
	b.equityCurve = []types.EquityPoint{}

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return utils.GetSchemaFromConfig(b.config)
}

// Capital returns the current realized capital.
func (b *BacktestEngineV1) Capital() float64 {
	return b.capital
}

// OpenPositions returns a copy of the currently open positions.
func (b *BacktestEngineV1) OpenPositions() []types.Position {
	return slices.Clone(b.positions)
}

// validateBars rejects corrupted input before any state is mutated: bars
// must carry a date and a positive selected price.
func validateBars(bars []types.Bar, field types.PriceField) error {
	for i, bar := range bars {
		if bar.Date.IsZero() {
			return errors.Newf(errors.ErrCodeMissingDate, "bar %d has no date", i)
		}

		if field.Of(bar) <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPrice, "bar %d has non-positive %s price", i, field)
		}
	}

	return nil
}

// calendarDays returns the whole calendar days between two timestamps.
func calendarDays(from time.Time, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
