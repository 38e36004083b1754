package financeService

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/milosmac94/finance/config"
	"github.com/milosmac94/finance/data/repository"
	"github.com/milosmac94/finance/internal/externalApi"
	"github.com/milosmac94/finance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	users      map[int64]model.User
	trans      map[int64][]model.Transaction
	nextUserID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: make(map[int64]model.User),
		trans: make(map[int64][]model.Transaction),
	}
}

func (r *fakeRepo) InsertUser(_ context.Context, username, passHash string, startingCash decimal.Decimal) (int64, error) {
	for _, user := range r.users {
		if user.Username == username {
			return 0, repository.ErrAlreadyExists
		}
	}
	r.nextUserID++
	r.users[r.nextUserID] = model.User{UserID: r.nextUserID, Username: username, PassHash: passHash, Cash: startingCash}
	return r.nextUserID, nil
}

func (r *fakeRepo) GetUser(_ context.Context, userID int64) (model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeRepo) GetUserForUpdate(ctx context.Context, userID int64) (model.User, error) {
	return r.GetUser(ctx, userID)
}

func (r *fakeRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *fakeRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) UpdateUserCash(_ context.Context, userID int64, cash decimal.Decimal) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Cash = cash
	r.users[userID] = user
	return nil
}

func (r *fakeRepo) UpdateUserPassHash(_ context.Context, userID int64, passHash string) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PassHash = passHash
	r.users[userID] = user
	return nil
}

func (r *fakeRepo) InsertTransaction(_ context.Context, userID int64, tran model.Transaction) error {
	r.trans[userID] = append(r.trans[userID], tran)
	return nil
}

func (r *fakeRepo) GetHoldings(_ context.Context, userID int64) ([]model.Holding, error) {
	bySymbol := make(map[string]model.Holding)
	for _, tran := range r.trans[userID] {
		holding := bySymbol[tran.StockSymbol]
		holding.StockSymbol = tran.StockSymbol
		holding.StockName = tran.StockName
		holding.Shares += tran.Shares
		bySymbol[tran.StockSymbol] = holding
	}

	holdings := make([]model.Holding, 0, len(bySymbol))
	for _, holding := range bySymbol {
		holdings = append(holdings, holding)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].StockSymbol < holdings[j].StockSymbol })
	return holdings, nil
}

func (r *fakeRepo) GetNetShares(_ context.Context, userID int64, symbol string) (int64, error) {
	var shares int64
	for _, tran := range r.trans[userID] {
		if tran.StockSymbol == symbol {
			shares += tran.Shares
		}
	}
	return shares, nil
}

func (r *fakeRepo) GetTransactions(_ context.Context, userID int64) ([]model.Transaction, error) {
	return r.trans[userID], nil
}

func (r *fakeRepo) GetTradedSymbols(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, trans := range r.trans {
		for _, tran := range trans {
			seen[tran.StockSymbol] = struct{}{}
		}
	}
	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

type fakeCache struct{}

func (c *fakeCache) GetQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, errors.New("cache miss")
}

func (c *fakeCache) SetQuotes(context.Context, []model.Quote) error { return nil }

type fakeQuoteApi struct {
	quotes map[string]model.Quote
}

func (a *fakeQuoteApi) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	quote, ok := a.quotes[symbol]
	if !ok {
		return model.Quote{}, externalApi.ErrNotFound
	}
	return quote, nil
}

func (a *fakeQuoteApi) GetQuotes(_ context.Context, symbols []string) (map[string]model.Quote, error) {
	res := make(map[string]model.Quote)
	for _, symbol := range symbols {
		if quote, ok := a.quotes[symbol]; ok {
			res[symbol] = quote
		}
	}
	return res, nil
}

type fakeSessionStore struct {
	sessions  map[string]model.Session
	nextToken int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]model.Session)}
}

func (s *fakeSessionStore) CreateSession(_ context.Context, sess model.Session) (string, error) {
	s.nextToken++
	token := fmt.Sprintf("token-%d", s.nextToken)
	s.sessions[token] = sess
	return token, nil
}

func (s *fakeSessionStore) DeleteSession(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

type fakeReportGen struct{}

func (g *fakeReportGen) Generate(_ context.Context, _ string, _ []model.Transaction) ([]byte, string, error) {
	return []byte("report"), ".xlsx", nil
}

type testEnv struct {
	srv      *FinanceService
	repo     *fakeRepo
	quoteApi *fakeQuoteApi
	session  *fakeSessionStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newFakeRepo()
	quoteApi := &fakeQuoteApi{quotes: make(map[string]model.Quote)}
	sessionStore := newFakeSessionStore()

	cfg := &config.Config{StartingCash: "10000"}
	srv := New(cfg, repo, &fakeCache{}, quoteApi, sessionStore, &fakeReportGen{})

	return &testEnv{srv: srv, repo: repo, quoteApi: quoteApi, session: sessionStore}
}

func (e *testEnv) addUser(t *testing.T, username string, cash string) int64 {
	t.Helper()

	userID, err := e.repo.InsertUser(context.Background(), username, "hash", decimal.RequireFromString(cash))
	require.NoError(t, err)
	return userID
}

func (e *testEnv) setQuote(symbol, name, price string) {
	e.quoteApi.quotes[symbol] = model.Quote{
		Symbol: symbol,
		Name:   name,
		Price:  decimal.RequireFromString(price),
	}
}

func (e *testEnv) cash(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()

	user, err := e.repo.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return user.Cash
}
