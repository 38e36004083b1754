package financeService

import (
	"context"
	"log/slog"

	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/internal/service"
	"github.com/milosmac94/finance/utils"
	"github.com/shopspring/decimal"
)

// Buy settles a purchase: the quoted cost is withdrawn from cash and a
// positive-share row is appended to the trade log, both inside one DB
// transaction with the user row locked for update.
func (s *FinanceService) Buy(ctx context.Context, userID int64, symbol string, shares int64) (tran model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.Buy"

	slog.Debug("Buy start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.Int64("shares", shares))
	defer func() {
		slog.Debug("Buy finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	if shares <= 0 {
		return model.Transaction{}, service.ErrInvalidShares
	}

	quote, err := s.getQuote(ctx, symbol)
	if err != nil {
		return model.Transaction{}, err
	}

	cost := quote.Price.Mul(decimal.NewFromInt(shares))

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if cost.GreaterThan(user.Cash) {
			return service.ErrInsufficientFunds
		}

		if err := s.repo.UpdateUserCash(ctx, userID, user.Cash.Sub(cost)); err != nil {
			return err
		}

		tran = model.Transaction{
			StockName:   quote.Name,
			StockSymbol: quote.Symbol,
			Action:      model.ActionBuy,
			Shares:      shares,
			TotalPrice:  cost,
		}

		return s.repo.InsertTransaction(ctx, userID, tran)
	})
	if err != nil {
		slog.Error("buy settlement failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	return tran, nil
}

// Sell settles a sale: the quoted proceeds are credited to cash and a
// negative-share row is appended to the trade log. Positions are derived by
// summing the log inside the same locked transaction, so concurrent sells
// cannot both pass the ownership check.
func (s *FinanceService) Sell(ctx context.Context, userID int64, symbol string, shares int64) (tran model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.Sell"

	slog.Debug("Sell start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.Int64("shares", shares))
	defer func() {
		slog.Debug("Sell finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	if shares <= 0 {
		return model.Transaction{}, service.ErrInvalidShares
	}

	quote, err := s.getQuote(ctx, symbol)
	if err != nil {
		return model.Transaction{}, err
	}

	proceeds := quote.Price.Mul(decimal.NewFromInt(shares))

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		held, err := s.repo.GetNetShares(ctx, userID, quote.Symbol)
		if err != nil {
			return err
		}

		if held == 0 {
			return service.ErrNoPosition
		}

		if shares > held {
			return service.ErrInsufficientShares
		}

		if err := s.repo.UpdateUserCash(ctx, userID, user.Cash.Add(proceeds)); err != nil {
			return err
		}

		tran = model.Transaction{
			StockName:   quote.Name,
			StockSymbol: quote.Symbol,
			Action:      model.ActionSell,
			Shares:      -shares,
			TotalPrice:  proceeds,
		}

		return s.repo.InsertTransaction(ctx, userID, tran)
	})
	if err != nil {
		slog.Error("sell settlement failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	return tran, nil
}

// Deposit credits virtual cash to the account.
func (s *FinanceService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.Deposit"

	slog.Debug("Deposit start", slog.String("rqID", rqID), slog.String("op", op), slog.String("amount", amount.String()))
	defer func() {
		slog.Debug("Deposit finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if !amount.IsPositive() {
		return service.ErrInvalidAmount
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		return s.repo.UpdateUserCash(ctx, userID, user.Cash.Add(amount))
	})
	if err != nil {
		slog.Error("deposit failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// GetPortfolio derives current holdings from the trade log and values them
// at live quotes. Symbols fully sold off stay in the result with zero shares.
// Total value is cash plus the sum of position values, recomputed fully on
// every call.
func (s *FinanceService) GetPortfolio(ctx context.Context, userID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	holdings, err := s.repo.GetHoldings(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	portfolio.Cash = user.Cash
	portfolio.TotalValue = user.Cash
	portfolio.Rows = make([]model.PortfolioRow, 0, len(holdings))

	for _, holding := range holdings {
		quote, err := s.getQuote(ctx, holding.StockSymbol)
		if err != nil {
			return model.Portfolio{}, err
		}

		value := quote.Price.Mul(decimal.NewFromInt(holding.Shares))

		portfolio.Rows = append(portfolio.Rows, model.PortfolioRow{
			StockName:   holding.StockName,
			StockSymbol: holding.StockSymbol,
			Shares:      holding.Shares,
			Price:       quote.Price,
			Value:       value,
		})

		portfolio.TotalValue = portfolio.TotalValue.Add(value)
	}

	return portfolio, nil
}

// GetHistory returns the full trade log for the user, oldest first.
func (s *FinanceService) GetHistory(ctx context.Context, userID int64) (trans []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.GetHistory"

	slog.Debug("GetHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetHistory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	trans, err = s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return trans, nil
}

// ExportHistory renders the trade log into a downloadable report file.
func (s *FinanceService) ExportHistory(ctx context.Context, userID int64) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.ExportHistory"

	slog.Debug("ExportHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ExportHistory finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	trans, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return s.reportGen.Generate(ctx, user.Username, trans)
}
