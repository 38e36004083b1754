package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/milosmac94/finance/data/session"
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/internal/service"
	"github.com/milosmac94/finance/internal/transport/httpapi/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	registerErr error
	buyErr      error
	available   bool
	tran        model.Transaction
	portfolio   model.Portfolio
}

func (s *stubService) Register(context.Context, string, string, string) (string, error) {
	if s.registerErr != nil {
		return "", s.registerErr
	}
	return "new-token", nil
}

func (s *stubService) Login(context.Context, string, string) (string, error) { return "new-token", nil }

func (s *stubService) Logout(context.Context, string) error { return nil }

func (s *stubService) IsUsernameAvailable(context.Context, string) (bool, error) {
	return s.available, nil
}

func (s *stubService) ChangePassword(context.Context, int64, string, string, string) error {
	return nil
}

func (s *stubService) GetQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, nil
}

func (s *stubService) Buy(context.Context, int64, string, int64) (model.Transaction, error) {
	if s.buyErr != nil {
		return model.Transaction{}, s.buyErr
	}
	return s.tran, nil
}

func (s *stubService) Sell(context.Context, int64, string, int64) (model.Transaction, error) {
	return s.tran, nil
}

func (s *stubService) Deposit(context.Context, int64, decimal.Decimal) error { return nil }

func (s *stubService) GetPortfolio(context.Context, int64) (model.Portfolio, error) {
	return s.portfolio, nil
}

func (s *stubService) GetHistory(context.Context, int64) ([]model.Transaction, error) {
	return nil, nil
}

func (s *stubService) ExportHistory(context.Context, int64) ([]byte, string, error) {
	return []byte("report"), ".xlsx", nil
}

type stubSessions struct{}

func (s *stubSessions) GetSession(_ context.Context, token string) (model.Session, error) {
	if token == "good-token" {
		return model.Session{UserID: 1, Username: "alice"}, nil
	}
	return model.Session{}, session.ErrNotFound
}

func newTestRouter(srv FinanceService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	ctrl := NewController(srv)

	router := gin.New()
	router.Use(middleware.Logger())

	api := router.Group("/api")
	api.POST("/register", ctrl.Register)
	api.GET("/check", ctrl.CheckUsername)

	auth := api.Group("/")
	auth.Use(middleware.Auth(&stubSessions{}))
	auth.POST("/buy", ctrl.Buy)
	auth.GET("/portfolio", ctrl.Portfolio)

	return router
}

func TestCheckUsername(t *testing.T) {
	router := newTestRouter(&stubService{available: true})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/check?username=bob", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Body.String())
}

func TestBuyRequiresAuth(t *testing.T) {
	router := newTestRouter(&stubService{})

	body := bytes.NewBufferString(`{"symbol":"NFLX","shares":5}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/buy", body)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuyRejectsBadToken(t *testing.T) {
	router := newTestRouter(&stubService{})

	body := bytes.NewBufferString(`{"symbol":"NFLX","shares":5}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/buy", body)
	req.Header.Set("Authorization", "Bearer expired-token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuyErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "insufficient funds", err: service.ErrInsufficientFunds, wantStatus: http.StatusBadRequest},
		{name: "unknown symbol", err: service.ErrUnknownSymbol, wantStatus: http.StatusBadRequest},
		{name: "invalid shares", err: service.ErrInvalidShares, wantStatus: http.StatusBadRequest},
		{name: "quote provider down", err: service.ErrQuoteUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubService{buyErr: tt.err})

			body := bytes.NewBufferString(`{"symbol":"NFLX","shares":5}`)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/buy", body)
			req.Header.Set("Authorization", "Bearer good-token")
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestBuySuccess(t *testing.T) {
	router := newTestRouter(&stubService{tran: model.Transaction{
		StockName:   "Netflix, Inc.",
		StockSymbol: "NFLX",
		Action:      model.ActionBuy,
		Shares:      5,
		TotalPrice:  decimal.RequireFromString("251.25"),
	}})

	body := bytes.NewBufferString(`{"symbol":"NFLX","shares":5}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/buy", body)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"symbol":"NFLX","name":"Netflix, Inc.","action":"BUY","shares":5,"total_price":"251.25"}`, rec.Body.String())
}

func TestRegisterUsernameTaken(t *testing.T) {
	router := newTestRouter(&stubService{registerErr: service.ErrUsernameTaken})

	body := bytes.NewBufferString(`{"username":"alice","password":"s3cret","confirmation":"s3cret"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", body)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPortfolioResponseShape(t *testing.T) {
	router := newTestRouter(&stubService{portfolio: model.Portfolio{
		Rows: []model.PortfolioRow{
			{
				StockName:   "Netflix, Inc.",
				StockSymbol: "NFLX",
				Shares:      5,
				Price:       decimal.RequireFromString("50.25"),
				Value:       decimal.RequireFromString("251.25"),
			},
		},
		Cash:       decimal.RequireFromString("9748.75"),
		TotalValue: decimal.RequireFromString("10000"),
	}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"rows": [{"symbol":"NFLX","name":"Netflix, Inc.","shares":5,"price":"50.25","value":"251.25"}],
		"cash": "9748.75",
		"total_value": "10000.00"
	}`, rec.Body.String())
}
