package financeService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/milosmac94/finance/config"
	"github.com/milosmac94/finance/internal/externalApi"
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/internal/service"
	"github.com/milosmac94/finance/utils"
	"github.com/shopspring/decimal"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	SetQuotes(ctx context.Context, quotes []model.Quote) error
}

type Repository interface {
	InsertUser(ctx context.Context, username, passHash string, startingCash decimal.Decimal) (userID int64, err error)
	GetUser(ctx context.Context, userID int64) (user model.User, err error)
	GetUserForUpdate(ctx context.Context, userID int64) (user model.User, err error)
	GetUserByUsername(ctx context.Context, username string) (user model.User, err error)
	UsernameExists(ctx context.Context, username string) (exists bool, err error)
	UpdateUserCash(ctx context.Context, userID int64, cash decimal.Decimal) (err error)
	UpdateUserPassHash(ctx context.Context, userID int64, passHash string) (err error)
	InsertTransaction(ctx context.Context, userID int64, tran model.Transaction) (err error)
	GetHoldings(ctx context.Context, userID int64) (holdings []model.Holding, err error)
	GetNetShares(ctx context.Context, userID int64, symbol string) (shares int64, err error)
	GetTransactions(ctx context.Context, userID int64) (trans []model.Transaction, err error)
	GetTradedSymbols(ctx context.Context) (symbols []string, err error)
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, sess model.Session) (token string, err error)
	DeleteSession(ctx context.Context, token string) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, username string, trans []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type FinanceService struct {
	repo         Repository
	cache        Cache
	quoteApi     QuoteApi
	session      SessionStore
	reportGen    ReportGenerator
	startingCash decimal.Decimal
}

func New(cfg *config.Config, repo Repository, cache Cache, quoteApi QuoteApi, session SessionStore, reportGen ReportGenerator) *FinanceService {
	startingCash, err := decimal.NewFromString(cfg.StartingCash)
	if err != nil {
		panic(fmt.Sprintf("invalid STARTING_CASH %q: %s", cfg.StartingCash, err))
	}

	return &FinanceService{
		repo:         repo,
		cache:        cache,
		quoteApi:     quoteApi,
		session:      session,
		reportGen:    reportGen,
		startingCash: startingCash,
	}
}

// getQuote reads through the cache to the quote provider. The returned quote
// is fetched once per request and reused for both validation and settlement.
func (s *FinanceService) getQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.getQuote"

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		return quote, nil
	}

	quote, err = s.quoteApi.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("symbol not found in quote api", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
			return model.Quote{}, service.ErrUnknownSymbol
		}
		slog.Error("can't get quote from quote api", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, fmt.Errorf("%w: %s", service.ErrQuoteUnavailable, err)
	}

	go s.cache.SetQuotes(context.WithoutCancel(ctx), []model.Quote{quote})

	return quote, nil
}

// GetQuote resolves a symbol into its current quote for the quote-lookup page.
func (s *FinanceService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.GetQuote"

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	return s.getQuote(ctx, symbol)
}

// WarmQuoteCache refreshes cached quotes for every symbol present in the
// trade log. Runs as a scheduler job.
func (s *FinanceService) WarmQuoteCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.WarmQuoteCache"

	symbols, err := s.repo.GetTradedSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTradedSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(symbols) == 0 {
		return nil
	}

	quotesMap, err := s.quoteApi.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Error("got error from quoteApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	quotes := make([]model.Quote, 0, len(quotesMap))
	for _, quote := range quotesMap {
		quotes = append(quotes, quote)
	}

	return s.cache.SetQuotes(ctx, quotes)
}
