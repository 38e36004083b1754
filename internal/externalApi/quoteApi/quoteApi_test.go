package quoteApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/milosmac94/finance/config"
	"github.com/milosmac94/finance/internal/externalApi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /quote", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "NFLX":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"symbol":"NFLX","name":"Netflix, Inc.","price":50.25}`))
		case "FREE":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"symbol":"FREE","name":"Worthless Co","price":0}`))
		default:
			http.Error(w, "unknown symbol", http.StatusNotFound)
		}
	})

	mux.HandleFunc("GET /quotes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"symbol":"NFLX","name":"Netflix, Inc.","price":50.25},
			{"symbol":"AMZN","name":"Amazon.com, Inc.","price":101.1}
		]`))
	})

	return httptest.NewServer(mux)
}

func newTestClient(url string) *QuoteApi {
	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.QuoteApi.Url = url
	return New(cfg)
}

func TestGetQuote(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	api := newTestClient(server.URL)

	quote, err := api.GetQuote(context.Background(), "NFLX")
	require.NoError(t, err)

	assert.Equal(t, "NFLX", quote.Symbol)
	assert.Equal(t, "Netflix, Inc.", quote.Name)
	assert.Equal(t, "50.25", quote.Price.String())
}

func TestGetQuoteNotFound(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	api := newTestClient(server.URL)

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuoteNonPositivePrice(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	api := newTestClient(server.URL)

	// a quote without a positive price is as good as no quote
	_, err := api.GetQuote(context.Background(), "FREE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuotes(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	api := newTestClient(server.URL)

	quotes, err := api.GetQuotes(context.Background(), []string{"NFLX", "AMZN"})
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, "101.1", quotes["AMZN"].Price.String())
}
