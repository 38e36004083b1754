package model

import "github.com/shopspring/decimal"

type User struct {
	UserID   int64
	Username string
	PassHash string
	Cash     decimal.Decimal
}
