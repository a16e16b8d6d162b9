package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/tamogatas-dev/tamogatas/internal/id"
	"github.com/tamogatas-dev/tamogatas/internal/model"
)

// StatementParser parses semicolon-delimited Hungarian bank statement exports
// and keeps only incoming transfers.
type StatementParser struct{}

const (
	statementFormat    = "huf"
	statementSeparator = ";"
	statementNumFields = 9
	colType            = 0
	colBookingDate     = 1
	colReference       = 3
	colAmount          = 4
	colSource          = 5
	colNameHint        = 6
	colNoteHint        = 7
	colNoteHint2       = 8
)

// inboundTypes are the transaction type labels of incoming transfers.
var inboundTypes = map[string]bool{
	"Forint átutalás":                     true,
	"Elektronikus bankon belüli átutalás": true,
}

var bookingDateRe = regexp.MustCompile(`(\d{4})\.(\d{2})\.(\d{2})`)

// Format returns the parser name.
func (p *StatementParser) Format() string { return statementFormat }

// Parse reads a whole statement and returns its incoming transfers.
func (p *StatementParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	return ParseStatement(string(data)), nil
}

// ParseStatement converts statement text into incoming transfers, in file order.
// Rows that are not incoming transfers, or that cannot be read, are dropped.
func ParseStatement(text string) []model.BankTransaction {
	text = strings.TrimPrefix(text, "\uFEFF")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil
	}

	// First non-blank line is the header.
	var txns []model.BankTransaction
	for i, line := range lines[1:] {
		txn, ok := parseStatementRow(i, strings.Split(line, statementSeparator))
		if !ok {
			continue
		}
		txns = append(txns, txn)
	}
	return txns
}

func parseStatementRow(row int, rec []string) (model.BankTransaction, bool) {
	if len(rec) < statementNumFields {
		return model.BankTransaction{}, false
	}

	txnType := rec[colType]
	if !inboundTypes[txnType] {
		return model.BankTransaction{}, false
	}

	if !strings.HasPrefix(strings.TrimSpace(rec[colAmount]), "+") {
		return model.BankTransaction{}, false
	}
	amount, ok := parseAmount(rec[colAmount])
	if !ok {
		return model.BankTransaction{}, false
	}

	return model.BankTransaction{
		ID:            id.FormatTransactionID(row, rec[colReference]),
		Type:          txnType,
		Date:          parseBookingDate(rec[colBookingDate]),
		Reference:     strings.TrimSpace(rec[colReference]),
		Amount:        amount,
		Source:        strings.TrimSpace(rec[colSource]),
		SupporterHint: strings.TrimSpace(rec[colNameHint]),
		Notes:         joinNotes(rec[colNoteHint], rec[colNoteHint2]),
	}, true
}

// parseAmount turns "+7 000,00 HUF" into 7000. It reports false for
// unreadable, non-positive or out-of-range amounts.
func parseAmount(s string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	// Currency code suffix, any case.
	cleaned = strings.TrimRightFunc(cleaned, unicode.IsLetter)
	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}

	rounded := d.Round(0)
	if !rounded.IsPositive() || !rounded.BigInt().IsInt64() {
		return 0, false
	}
	return rounded.IntPart(), true
}

// parseBookingDate turns "2025.11.17., hétfő" into "2025-11-17", or "" when no
// date is present.
func parseBookingDate(s string) string {
	m := bookingDateRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2] + "-" + m[3]
}

func joinNotes(hints ...string) string {
	var parts []string
	for _, h := range hints {
		if strings.TrimSpace(h) != "" {
			parts = append(parts, h)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
