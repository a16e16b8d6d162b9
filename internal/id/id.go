package id

import (
	"fmt"
	"strconv"
	"strings"
)

// transactionPrefix marks ids synthesized from statement rows.
const transactionPrefix = "csv-"

// FormatTransactionID returns an id like "csv-3-REF123" for the row at index row
// (counted after the header, before any filtering) and its raw reference.
func FormatTransactionID(row int, rawReference string) string {
	return transactionPrefix + strconv.Itoa(row) + "-" + rawReference
}

// ParseTransactionID splits "csv-3-REF123" into row 3 and reference "REF123".
// The reference may itself contain dashes or be empty.
func ParseTransactionID(id string) (row int, reference string, err error) {
	rest, ok := strings.CutPrefix(id, transactionPrefix)
	if !ok {
		return 0, "", fmt.Errorf("invalid transaction ID format: %q", id)
	}

	rowStr, reference, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, "", fmt.Errorf("invalid transaction ID format: %q", id)
	}

	row, err = strconv.Atoi(rowStr)
	if err != nil {
		return 0, "", fmt.Errorf("invalid row in transaction ID %q: %w", id, err)
	}
	if row < 0 {
		return 0, "", fmt.Errorf("negative row in transaction ID %q", id)
	}

	return row, reference, nil
}
