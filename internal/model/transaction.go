package model

// BankTransaction is an incoming transfer parsed from a bank statement row.
type BankTransaction struct {
	ID            string // "csv-<row>-<raw reference>", unique within one parse
	Type          string // bank transaction type label, verbatim
	Date          string // YYYY-MM-DD, empty when the statement date could not be read
	Reference     string // bank reference; dedup key against recorded donations
	Amount        int64  // whole currency units
	Source        string
	SupporterHint string
	Notes         string
}

// HasDate reports whether the statement date could be parsed.
func (t BankTransaction) HasDate() bool {
	return t.Date != ""
}
