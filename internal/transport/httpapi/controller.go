package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/internal/service"
	"github.com/milosmac94/finance/internal/transport/httpapi/middleware"
	"github.com/milosmac94/finance/utils"
	"github.com/shopspring/decimal"
)

type FinanceService interface {
	Register(ctx context.Context, username, password, confirmation string) (token string, err error)
	Login(ctx context.Context, username, password string) (token string, err error)
	Logout(ctx context.Context, token string) error
	IsUsernameAvailable(ctx context.Context, username string) (available bool, err error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, confirmPassword string) error
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	Buy(ctx context.Context, userID int64, symbol string, shares int64) (model.Transaction, error)
	Sell(ctx context.Context, userID int64, symbol string, shares int64) (model.Transaction, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) error
	GetPortfolio(ctx context.Context, userID int64) (model.Portfolio, error)
	GetHistory(ctx context.Context, userID int64) ([]model.Transaction, error)
	ExportHistory(ctx context.Context, userID int64) (fileBytes []byte, fileExtension string, err error)
}

type Controller struct {
	financeService FinanceService
}

func NewController(financeService FinanceService) *Controller {
	return &Controller{financeService: financeService}
}

type credentialsRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
}

type tradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type transactionResponse struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Action     string `json:"action"`
	Shares     int64  `json:"shares"`
	TotalPrice string `json:"total_price"`
	DtCreate   string `json:"dt_create,omitempty"`
}

type portfolioRowResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Shares int64  `json:"shares"`
	Price  string `json:"price"`
	Value  string `json:"value"`
}

type portfolioResponse struct {
	Rows       []portfolioRowResponse `json:"rows"`
	Cash       string                 `json:"cash"`
	TotalValue string                 `json:"total_value"`
}

func (ctrl *Controller) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := ctrl.financeService.Register(c.Request.Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (ctrl *Controller) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := ctrl.financeService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (ctrl *Controller) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)

	if err := ctrl.financeService.Logout(c.Request.Context(), token); err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckUsername mirrors the registration page's availability probe: a bare
// JSON boolean, true iff the candidate can still be registered.
func (ctrl *Controller) CheckUsername(c *gin.Context) {
	available, err := ctrl.financeService.IsUsernameAvailable(c.Request.Context(), c.Query("username"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, available)
}

func (ctrl *Controller) ChangePassword(c *gin.Context) {
	userID, ok := ctrl.userID(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctrl.financeService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) Quote(c *gin.Context) {
	quote, err := ctrl.financeService.GetQuote(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": quote.Symbol,
		"name":   quote.Name,
		"price":  quote.Price.String(),
	})
}

func (ctrl *Controller) Buy(c *gin.Context) {
	userID, ok := ctrl.userID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tran, err := ctrl.financeService.Buy(c.Request.Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertTransaction(tran))
}

func (ctrl *Controller) Sell(c *gin.Context) {
	userID, ok := ctrl.userID(c)
	if !ok {
		return
	}

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tran, err := ctrl.financeService.Sell(c.Request.Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convertTransaction(tran))
}

func (ctrl *Controller) Deposit(c *gin.Context) {
	userID, ok := ctrl.userID(c)
	if !ok {
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.financeService.Deposit(c.Request.Context(), userID, req.Amount); err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) Portfolio(c *gin.Context) {
	userID, ok := ctrl.userID(c)
	if !ok {
		return
	}

	portfolio, err := ctrl.financeService.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	resp := portfolioResponse{
		Rows:       make([]portfolioRowResponse, 0, len(portfolio.Rows)),
		Cash:       portfolio.Cash.StringFixed(2),
		TotalValue: portfolio.TotalValue.StringFixed(2),
	}

	for _, row := range portfolio.Rows {
		resp.Rows = append(resp.Rows, portfolioRowResponse{
			Symbol: row.StockSymbol,
			Name:   row.StockName,
			Shares: row.Shares,
			Price:  row.Price.String(),
			Value:  row.Value.StringFixed(2),
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) History(c *gin.Context) {
	userID, ok := ctrl.userID(c)
	if !ok {
		return
	}

	trans, err := ctrl.financeService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	resp := make([]transactionResponse, 0, len(trans))
	for _, tran := range trans {
		resp = append(resp, convertTransaction(tran))
	}

	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) ExportHistory(c *gin.Context) {
	userID, ok := ctrl.userID(c)
	if !ok {
		return
	}

	fileBytes, fileExtension, err := ctrl.financeService.ExportHistory(c.Request.Context(), userID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="history%s"`, fileExtension))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

func (ctrl *Controller) userID(c *gin.Context) (int64, bool) {
	userID, ok := utils.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return 0, false
	}
	return userID, true
}

func (ctrl *Controller) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidShares),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrUnknownSymbol),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrNoPosition),
		errors.Is(err, service.ErrInsufficientShares),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordUnchanged):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrQuoteUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": service.ErrQuoteUnavailable.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func convertTransaction(tran model.Transaction) transactionResponse {
	resp := transactionResponse{
		Symbol:     tran.StockSymbol,
		Name:       tran.StockName,
		Action:     tran.Action,
		Shares:     tran.Shares,
		TotalPrice: tran.TotalPrice.StringFixed(2),
	}

	if !tran.DtCreate.IsZero() {
		resp.DtCreate = tran.DtCreate.Format("2006-01-02 15:04:05")
	}

	return resp
}
