package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

// Format names accepted by Write.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Headers are the column titles shared by every export format.
var Headers = []string{"Támogató", "Összeg", "Pénznem", "Dátum", "Fizetési mód", "Hivatkozás", "Megjegyzés"}

// Write renders donations to w in the named format.
func Write(w io.Writer, format string, donations []model.Donation) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, donations)
	case FormatXLSX:
		return WriteXLSX(w, donations)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func row(d model.Donation) []string {
	return []string{
		d.SupporterName,
		strconv.FormatInt(d.Amount, 10),
		d.Currency,
		d.Date,
		d.PaymentMethod,
		d.Reference,
		d.Notes,
	}
}
