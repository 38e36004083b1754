package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	TranID      int64           `db:"tran_id"`
	UserID      int64           `db:"user_id"`
	StockName   string          `db:"stock_name"`
	StockSymbol string          `db:"stock_symbol"`
	Action      string          `db:"action"`
	Shares      int64           `db:"shares"`
	TotalPrice  decimal.Decimal `db:"total_price"`
	DtCreate    time.Time       `db:"dt_create"`
}

type Holding struct {
	StockName   string `db:"stock_name"`
	StockSymbol string `db:"stock_symbol"`
	Shares      int64  `db:"shares"`
}
