package model

import "github.com/shopspring/decimal"

// Holding is the net position for one symbol, summed over the trade log.
// Rows with zero net shares are kept so a full sell-off still shows up.
type Holding struct {
	StockName   string
	StockSymbol string
	Shares      int64
}

type PortfolioRow struct {
	StockName   string
	StockSymbol string
	Shares      int64
	Price       decimal.Decimal
	Value       decimal.Decimal
}

type Portfolio struct {
	Rows       []PortfolioRow
	Cash       decimal.Decimal
	TotalValue decimal.Decimal
}
