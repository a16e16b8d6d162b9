package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Actions recorded during an import session.
const (
	ActionLoad     = "load"
	ActionImported = "imported"
	ActionFailed   = "failed"
	ActionArchived = "archived"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp     time.Time
	Session       string
	File          string
	Action        string
	TransactionID string
	Reference     string
	DonationID    int64
	Details       string
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,session,file,action,transaction_id,reference,donation_id,details"

const (
	numFields        = 8
	logDir           = "logs"
	logFile          = "logs/import-log.csv"
	colTimestamp     = 0
	colSession       = 1
	colFile          = 2
	colAction        = 3
	colTransactionID = 4
	colReference     = 5
	colDonationID    = 6
	colDetails       = 7
)

func marshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colSession] = e.Session
	row[colFile] = e.File
	row[colAction] = e.Action
	row[colTransactionID] = e.TransactionID
	row[colReference] = e.Reference
	if e.DonationID != 0 {
		row[colDonationID] = strconv.FormatInt(e.DonationID, 10)
	}
	row[colDetails] = e.Details
	return row
}

func unmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var donationID int64
	if record[colDonationID] != "" {
		donationID, err = strconv.ParseInt(record[colDonationID], 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("parsing donation id %q: %w", record[colDonationID], err)
		}
	}

	return Entry{
		Timestamp:     ts,
		Session:       record[colSession],
		File:          record[colFile],
		Action:        record[colAction],
		TransactionID: record[colTransactionID],
		Reference:     record[colReference],
		DonationID:    donationID,
		Details:       record[colDetails],
	}, nil
}

// Append writes entries to <root>/logs/import-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(marshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/import-log.csv.
// A missing file yields no entries.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := unmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Summary counts the logged activity for one statement file.
type Summary struct {
	Sessions int
	Imported int
	Failed   int
	Last     time.Time
}

// Summarize totals the entries recorded for file.
func Summarize(entries []Entry, file string) Summary {
	var sum Summary
	for _, e := range entries {
		if e.File != file {
			continue
		}
		switch e.Action {
		case ActionLoad:
			sum.Sessions++
			if e.Timestamp.After(sum.Last) {
				sum.Last = e.Timestamp
			}
		case ActionImported:
			sum.Imported++
		case ActionFailed:
			sum.Failed++
		}
	}
	return sum
}
