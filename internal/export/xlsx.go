package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

// SheetName is the worksheet holding exported donations.
const SheetName = "Támogatások"

// thousands-separated integer
const amountNumFmt = 3

var columnWidths = []float64{30, 14, 10, 12, 16, 20, 40}

// WriteXLSX writes donations as a single-sheet workbook.
func WriteXLSX(w io.Writer, donations []model.Donation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("writing header %s: %w", cell, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, d := range donations {
		r := i + 2
		values := []any{d.SupporterName, d.Amount, d.Currency, d.Date, d.PaymentMethod, d.Reference, d.Notes}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("writing %s: %w", cell, err)
			}
		}
	}

	if len(donations) > 0 {
		amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
		if err != nil {
			return fmt.Errorf("creating amount style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(2, len(donations)+1)
		if err := f.SetCellStyle(SheetName, "B2", last, amountStyle); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
