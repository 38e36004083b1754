package dbModel

import "github.com/shopspring/decimal"

type User struct {
	UserID   int64           `db:"user_id"`
	Username string          `db:"username"`
	PassHash string          `db:"pass_hash"`
	Cash     decimal.Decimal `db:"cash"`
}
