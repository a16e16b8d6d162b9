package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTransactionID(t *testing.T) {
	tests := []struct {
		row  int
		ref  string
		want string
	}{
		{0, "REF1", "csv-0-REF1"},
		{12, "", "csv-12-"},
		{3, "A-B-C", "csv-3-A-B-C"},
		{7, " 999 ", "csv-7- 999 "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTransactionID(tt.row, tt.ref))
	}
}

func TestParseTransactionID(t *testing.T) {
	tests := []struct {
		id      string
		row     int
		ref     string
		wantErr bool
	}{
		{"csv-0-REF1", 0, "REF1", false},
		{"csv-12-", 12, "", false},
		{"csv-3-A-B-C", 3, "A-B-C", false},
		{"csv-x-REF", 0, "", true},
		{"csv-5", 0, "", true},
		{"bank-1-REF", 0, "", true},
		{"csv--1-REF", 0, "", true},
		{"", 0, "", true},
	}
	for _, tt := range tests {
		row, ref, err := ParseTransactionID(tt.id)
		if tt.wantErr {
			assert.Error(t, err, "ParseTransactionID(%q)", tt.id)
			continue
		}
		require.NoError(t, err, "ParseTransactionID(%q)", tt.id)
		assert.Equal(t, tt.row, row)
		assert.Equal(t, tt.ref, ref)
	}
}

func TestTransactionIDRoundTrip(t *testing.T) {
	for row, ref := range []string{"", "REF", "2025-11-17-XYZ"} {
		gotRow, gotRef, err := ParseTransactionID(FormatTransactionID(row, ref))
		require.NoError(t, err)
		assert.Equal(t, row, gotRow)
		assert.Equal(t, ref, gotRef)
	}
}
