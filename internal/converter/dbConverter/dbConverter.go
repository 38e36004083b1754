package dbConverter

import (
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/internal/model/dbModel"
)

func ConvertUser(dbUser dbModel.User) model.User {
	return model.User{
		UserID:   dbUser.UserID,
		Username: dbUser.Username,
		PassHash: dbUser.PassHash,
		Cash:     dbUser.Cash,
	}
}

func ConvertTransaction(dbTran dbModel.Transaction) model.Transaction {
	return model.Transaction{
		TranID:      dbTran.TranID,
		StockName:   dbTran.StockName,
		StockSymbol: dbTran.StockSymbol,
		Action:      dbTran.Action,
		Shares:      dbTran.Shares,
		TotalPrice:  dbTran.TotalPrice,
		DtCreate:    dbTran.DtCreate,
	}
}

func ConvertHolding(dbHolding dbModel.Holding) model.Holding {
	return model.Holding{
		StockName:   dbHolding.StockName,
		StockSymbol: dbHolding.StockSymbol,
		Shares:      dbHolding.Shares,
	}
}
