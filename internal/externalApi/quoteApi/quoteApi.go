package quoteApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/milosmac94/finance/config"
	"github.com/milosmac94/finance/internal/externalApi"
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/utils"
)

type QuoteApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *QuoteApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuoteApi.Url)
	return &QuoteApi{client: client}
}

// GetQuote resolves a ticker symbol into a point-in-time quote.
// Returns externalApi.ErrNotFound when the provider does not know the symbol.
func (a *QuoteApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start QuoteApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParam("symbol", symbol).
		Get("/quote")

	if err != nil {
		slog.Error("error while dialing quote api", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.Quote{}, externalApi.ErrNotFound
	}

	if resp.IsError() {
		return model.Quote{}, fmt.Errorf("quote api responded with status %d", resp.StatusCode())
	}

	quote := model.Quote{}
	err = json.Unmarshal(resp.Body(), &quote)
	if err != nil {
		slog.Error("can't unmarshall response into model.Quote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	if quote.Symbol == "" || !quote.Price.IsPositive() {
		return model.Quote{}, externalApi.ErrNotFound
	}

	slog.Debug("QuoteApi.GetQuote request complete", slog.String("rqID", rqID))

	return quote, nil
}

// GetQuotes fetches quotes for a batch of symbols in a single call.
// Symbols unknown to the provider are simply absent from the result map.
func (a *QuoteApi) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start QuoteApi.GetQuotes request", slog.String("rqID", rqID), slog.Any("symbols", symbols))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParam("symbols", strings.Join(symbols, ",")).
		Get("/quotes")

	if err != nil {
		slog.Error("error while dialing quote api", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("quote api responded with status %d", resp.StatusCode())
	}

	quotes := make([]model.Quote, 0, len(symbols))
	err = json.Unmarshal(resp.Body(), &quotes)
	if err != nil {
		slog.Error("can't unmarshall response into []model.Quote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	res := make(map[string]model.Quote, len(quotes))
	for _, quote := range quotes {
		if quote.Symbol == "" || !quote.Price.IsPositive() {
			continue
		}
		res[quote.Symbol] = quote
	}

	slog.Debug("QuoteApi.GetQuotes request complete", slog.String("rqID", rqID))

	return res, nil
}
