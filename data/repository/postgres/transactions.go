package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/milosmac94/finance/internal/converter/dbConverter"
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/internal/model/dbModel"
	"github.com/milosmac94/finance/utils"
)

func (r *Postgres) InsertTransaction(ctx context.Context, userID int64, tran model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertTransaction"
	query := `
		INSERT INTO tran_history(user_id, stock_name, stock_symbol, action, shares, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	slog.Debug(
		"InsertTransaction start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.Any("tran", tran),
		slog.String("query", query),
	)
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		userID,
		tran.StockName,
		tran.StockSymbol,
		tran.Action,
		tran.Shares,
		tran.TotalPrice,
	)

	if err != nil {
		return err
	}
	return nil
}

// GetHoldings sums the signed share counts over the whole trade log grouped
// by symbol. Symbols the user fully sold off stay in the result with zero shares.
func (r *Postgres) GetHoldings(ctx context.Context, userID int64) (holdings []model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetHoldings"
	query := `
		SELECT stock_name, stock_symbol, SUM(shares) AS shares
		FROM tran_history
		WHERE user_id = $1
		GROUP BY stock_name, stock_symbol
		ORDER BY stock_symbol
	`

	slog.Debug("GetHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHoldings failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHoldings completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var holding dbModel.Holding
		err = rows.StructScan(&holding)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, dbConverter.ConvertHolding(holding))
	}

	return holdings, nil
}

// GetNetShares returns the net position of one symbol. Zero with no error
// means the user never traded the symbol or sold everything off.
func (r *Postgres) GetNetShares(ctx context.Context, userID int64, symbol string) (shares int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetNetShares"
	query := `
		SELECT COALESCE(SUM(shares), 0) AS shares
		FROM tran_history
		WHERE user_id = $1
		AND stock_symbol = $2
	`

	slog.Debug("GetNetShares start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetNetShares failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetNetShares completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, userID, symbol).Scan(&shares)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return shares, nil
}

func (r *Postgres) GetTransactions(ctx context.Context, userID int64) (trans []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTransactions"
	query := `
		SELECT tran_id, user_id, stock_name, stock_symbol, action, shares, total_price, dt_create
		FROM tran_history
		WHERE user_id = $1
		ORDER BY dt_create
	`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var tran dbModel.Transaction
		err = rows.StructScan(&tran)
		if err != nil {
			return nil, err
		}
		trans = append(trans, dbConverter.ConvertTransaction(tran))
	}

	return trans, nil
}

// GetTradedSymbols lists every distinct symbol present in the trade log,
// used by the quote cache warm job.
func (r *Postgres) GetTradedSymbols(ctx context.Context) (symbols []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTradedSymbols"
	query := `SELECT DISTINCT stock_symbol FROM tran_history ORDER BY stock_symbol`

	slog.Debug("GetTradedSymbols start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTradedSymbols failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTradedSymbols completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &symbols, query)
	if err != nil {
		return nil, err
	}

	return symbols, nil
}
