package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders the trade log into a single-sheet xlsx file.
func (g *XLSXGenerator) Generate(ctx context.Context, username string, trans []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	sheetName := fmt.Sprintf("History - %s", username)
	_, err = f.NewSheet(sheetName)
	if err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	_ = f.SetCellStr(sheetName, "A1", "date")
	_ = f.SetCellStr(sheetName, "B1", "symbol")
	_ = f.SetCellStr(sheetName, "C1", "name")
	_ = f.SetCellStr(sheetName, "D1", "action")
	_ = f.SetCellStr(sheetName, "E1", "shares")
	_ = f.SetCellStr(sheetName, "F1", "total price")

	if err := f.SetCellStyle(sheetName, "A1", "F1", headerStyleID); err != nil {
		return nil, "", fmt.Errorf("apply header style: %w", err)
	}

	for i, tran := range trans {
		row := i + 2
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), tran.DtCreate.Format("2006-01-02 15:04:05"))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), tran.StockSymbol)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", row), tran.StockName)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", row), tran.Action)
		_ = f.SetCellInt(sheetName, fmt.Sprintf("E%d", row), tran.Shares)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", row), tran.TotalPrice.StringFixed(2))
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}
