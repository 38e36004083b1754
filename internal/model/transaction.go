package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Transaction is one row of the append-only trade log. Shares is signed:
// positive for buys, negative for sells.
type Transaction struct {
	TranID      int64
	StockName   string
	StockSymbol string
	Action      string
	Shares      int64
	TotalPrice  decimal.Decimal
	DtCreate    time.Time
}
