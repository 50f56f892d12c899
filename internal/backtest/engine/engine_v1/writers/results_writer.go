// Package writers persists backtest results to a DuckDB database so runs can
// be inspected and compared after the fact.
package writers

import (
	"database/sql"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/costsim/internal/logger"
	"github.com/rxtech-lab/costsim/internal/types"
	"github.com/rxtech-lab/costsim/pkg/errors"
)

// ResultsWriter stores the trade ledger and equity curve of backtest runs,
// keyed by run ID.
type ResultsWriter struct {
	db   *sql.DB
	path string
	log  *logger.Logger
}

// NewResultsWriter creates a writer backed by the DuckDB database at path.
// Use ":memory:" for an in-memory database.
func NewResultsWriter(path string, log *logger.Logger) *ResultsWriter {
	return &ResultsWriter{
		db:   nil,
		path: path,
		log:  log,
	}
}

// Initialize opens the database and creates the schema.
func (w *ResultsWriter) Initialize() error {
	db, err := sql.Open("duckdb", w.path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to open duckdb database", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT,
			created_at TIMESTAMP,
			initial_capital DOUBLE,
			final_capital DOUBLE,
			total_return_pct DOUBLE,
			num_trades INTEGER
		);
		CREATE TABLE IF NOT EXISTS trades (
			run_id TEXT,
			trade_id TEXT,
			entry_date TIMESTAMP,
			entry_price DOUBLE,
			exit_date TIMESTAMP,
			exit_price DOUBLE,
			quantity DOUBLE,
			side TEXT,
			spread_cost DOUBLE,
			slippage_cost DOUBLE,
			commission DOUBLE,
			financing_cost DOUBLE,
			exchange_fees DOUBLE,
			total_cost DOUBLE,
			gross_pnl DOUBLE,
			net_pnl DOUBLE,
			holding_days INTEGER,
			return_pct DOUBLE
		);
		CREATE TABLE IF NOT EXISTS equity_curve (
			run_id TEXT,
			date TIMESTAMP,
			price DOUBLE,
			capital DOUBLE,
			unrealized_pnl DOUBLE,
			total_equity DOUBLE,
			num_positions INTEGER
		);
	`); err != nil {
		db.Close()

		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create results schema", err)
	}

	w.db = db

	return nil
}

// WriteResult persists one run: its summary row, every trade with the full
// cost breakdown, and the equity curve. The write is transactional.
func (w *ResultsWriter) WriteResult(result types.Result) (err error) {
	if w.db == nil {
		return errors.New(errors.ErrCodeResultsWriteFailed, "writer not initialized")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to begin transaction", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Timestamp,
		result.InitialCapital,
		result.FinalCapital,
		result.TotalReturnPct,
		result.NumTrades,
	); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert run", err)
	}

	tradeStmt, err := tx.Prepare(`
		INSERT INTO trades VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to prepare trade insert", err)
	}
	defer tradeStmt.Close()

	for _, trade := range result.Trades {
		if _, err = tradeStmt.Exec(
			result.RunID,
			trade.ID,
			trade.EntryDate,
			trade.EntryPrice,
			trade.ExitDate,
			trade.ExitPrice,
			trade.Quantity,
			string(trade.Side),
			trade.Costs.SpreadCost,
			trade.Costs.SlippageCost,
			trade.Costs.Commission,
			trade.Costs.FinancingCost,
			trade.Costs.ExchangeFees,
			trade.Costs.Total(),
			trade.GrossPnL,
			trade.NetPnL,
			trade.HoldingDays,
			trade.ReturnPct,
		); err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert trade", err)
		}
	}

	equityStmt, err := tx.Prepare(`
		INSERT INTO equity_curve VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to prepare equity insert", err)
	}
	defer equityStmt.Close()

	for _, point := range result.EquityCurve {
		if _, err = equityStmt.Exec(
			result.RunID,
			point.Date,
			point.Price,
			point.Capital,
			point.UnrealizedPnL,
			point.TotalEquity,
			point.NumPositions,
		); err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert equity point", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to commit transaction", err)
	}

	w.log.Debug("Result persisted",
		zap.String("run_id", result.RunID),
		zap.Int("trades", len(result.Trades)),
		zap.Int("equity_points", len(result.EquityCurve)),
	)

	return nil
}

// ReadTrades loads the trades of a run back from the database.
func (w *ResultsWriter) ReadTrades(runID string) ([]types.Trade, error) {
	if w.db == nil {
		return nil, errors.New(errors.ErrCodeResultsReadFailed, "writer not initialized")
	}

	rows, err := w.db.Query(`
		SELECT trade_id, entry_date, entry_price, exit_date, exit_price,
		       quantity, side, spread_cost, slippage_cost, commission,
		       financing_cost, exchange_fees, gross_pnl, net_pnl,
		       holding_days, return_pct
		FROM trades WHERE run_id = ? ORDER BY exit_date
	`, runID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultsReadFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var trade types.Trade

		var side string

		if err := rows.Scan(
			&trade.ID,
			&trade.EntryDate,
			&trade.EntryPrice,
			&trade.ExitDate,
			&trade.ExitPrice,
			&trade.Quantity,
			&side,
			&trade.Costs.SpreadCost,
			&trade.Costs.SlippageCost,
			&trade.Costs.Commission,
			&trade.Costs.FinancingCost,
			&trade.Costs.ExchangeFees,
			&trade.GrossPnL,
			&trade.NetPnL,
			&trade.HoldingDays,
			&trade.ReturnPct,
		); err != nil {
			return nil, errors.Wrap(errors.ErrCodeResultsReadFailed, "failed to scan trade", err)
		}

		trade.Side = types.Side(side)
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultsReadFailed, "failed to read trades", err)
	}

	return trades, nil
}

// Close closes the underlying database.
func (w *ResultsWriter) Close() error {
	if w.db == nil {
		return nil
	}

	return w.db.Close()
}
