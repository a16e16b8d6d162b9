package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tamogatas-dev/tamogatas/internal/model"
)

const bom = "\uFEFF"

// WriteCSV writes a semicolon-separated export with a byte order mark and
// CRLF line endings.
func WriteCSV(w io.Writer, donations []model.Donation) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, d := range donations {
		if err := cw.Write(row(d)); err != nil {
			return fmt.Errorf("writing donation %d: %w", d.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
