package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/milosmac94/finance/config"
	"github.com/milosmac94/finance/data/repository"
	"github.com/milosmac94/finance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgres(&config.Config{}, sqlx.NewDb(db, "sqlmock")), mock
}

func TestInsertUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	userID, err := repo.InsertUser(context.Background(), "alice", "hash", decimal.RequireFromString("10000"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertUserDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "hash", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.InsertUser(context.Background(), "alice", "hash", decimal.RequireFromString("10000"))
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT user_id, username, pass_hash, cash FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "pass_hash", "cash"}))

	_, err := repo.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsernameExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.UsernameExists(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetHoldings(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"stock_name", "stock_symbol", "shares"}).
		AddRow("Amazon.com, Inc.", "AMZN", 2).
		AddRow("Netflix, Inc.", "NFLX", 0)

	mock.ExpectQuery("SELECT stock_name, stock_symbol, SUM").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	holdings, err := repo.GetHoldings(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, holdings, 2)
	assert.Equal(t, "AMZN", holdings[0].StockSymbol)
	assert.Equal(t, int64(2), holdings[0].Shares)
	assert.Equal(t, int64(0), holdings[1].Shares)
}

func TestGetNetShares(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(1), "NFLX").
		WillReturnRows(sqlmock.NewRows([]string{"shares"}).AddRow(5))

	shares, err := repo.GetNetShares(context.Background(), 1, "NFLX")
	require.NoError(t, err)
	assert.Equal(t, int64(5), shares)
}

func TestWithinTransactionCommits(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET cash").
		WithArgs(sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tran_history").
		WithArgs(int64(1), "Netflix, Inc.", "NFLX", model.ActionBuy, int64(10), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if err := repo.UpdateUserCash(ctx, 1, decimal.RequireFromString("9500")); err != nil {
			return err
		}
		return repo.InsertTransaction(ctx, 1, model.Transaction{
			StockName:   "Netflix, Inc.",
			StockSymbol: "NFLX",
			Action:      model.ActionBuy,
			Shares:      10,
			TotalPrice:  decimal.RequireFromString("500"),
		})
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("validation failed")
	err := repo.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTradedSymbols(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT DISTINCT stock_symbol FROM tran_history").
		WillReturnRows(sqlmock.NewRows([]string{"stock_symbol"}).AddRow("AMZN").AddRow("NFLX"))

	symbols, err := repo.GetTradedSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AMZN", "NFLX"}, symbols)
}
