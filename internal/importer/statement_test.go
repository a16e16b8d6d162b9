package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Típus;Dátum;Értéknap;Azonosító;Összeg;Számla;Név;Közlemény;Közlemény 2\n"

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/statement.csv")
	require.NoError(t, err)
	return string(data)
}

func TestStatementParser_Parse(t *testing.T) {
	p := &StatementParser{}
	txns, err := p.Parse(strings.NewReader(readFixture(t)))
	require.NoError(t, err)
	require.Len(t, txns, 4)

	first := txns[0]
	assert.Equal(t, "csv-0-TRX-1001", first.ID)
	assert.Equal(t, "Forint átutalás", first.Type)
	assert.Equal(t, "2025-11-17", first.Date)
	assert.Equal(t, "TRX-1001", first.Reference)
	assert.Equal(t, int64(7000), first.Amount)
	assert.Equal(t, "11111111-22222222", first.Source)
	assert.Equal(t, "Kovács Anna", first.SupporterHint)
	assert.Equal(t, "Havi támogatás november", first.Notes)

	// Intra-bank transfer without a reference is still emitted.
	assert.Equal(t, "csv-3-", txns[1].ID)
	assert.Equal(t, "", txns[1].Reference)
	assert.Equal(t, "Elektronikus bankon belüli átutalás", txns[1].Type)
	assert.Equal(t, int64(15000), txns[1].Amount)
	assert.Empty(t, txns[1].Notes)

	assert.Equal(t, "csv-5-TRX-1006", txns[2].ID)
	assert.Equal(t, int64(1235), txns[2].Amount)
	assert.Equal(t, "Adomány", txns[2].Notes)

	// Unreadable date is kept, not dropped.
	assert.Equal(t, "csv-6-TRX-1007", txns[3].ID)
	assert.Equal(t, "", txns[3].Date)
	assert.False(t, txns[3].HasDate())
}

func TestStatementParser_Format(t *testing.T) {
	p := &StatementParser{}
	assert.Equal(t, "huf", p.Format())
}

func TestParseStatement_Idempotent(t *testing.T) {
	text := readFixture(t)
	assert.Equal(t, ParseStatement(text), ParseStatement(text))
}

func TestParseStatement_BOMAndCRLF(t *testing.T) {
	text := "\uFEFF" + strings.ReplaceAll(testHeader, "\n", "\r\n") +
		"Forint átutalás;2025.01.02.;;R1;+1 000,00 HUF;SRC;Hint;n1;n2\r\n"
	txns := ParseStatement(text)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(1000), txns[0].Amount)
	assert.Equal(t, "n1 n2", txns[0].Notes)
	assert.Equal(t, "2025-01-02", txns[0].Date)
}

func TestParseStatement_TooFewLines(t *testing.T) {
	assert.Empty(t, ParseStatement(""))
	assert.Empty(t, ParseStatement("\n  \n"))
	assert.Empty(t, ParseStatement(testHeader))
	// A single data-looking line is treated as the header.
	assert.Empty(t, ParseStatement("Forint átutalás;2025.01.02.;;R1;+1 000,00 HUF;SRC;Hint;;\n"))
}

func TestParseStatement_EightFieldsDropped(t *testing.T) {
	text := testHeader + "Forint átutalás;2025.01.02.;;R1;+1 000,00 HUF;SRC;Hint;note\n"
	assert.Empty(t, ParseStatement(text))
}

func TestParseStatement_TypeFilter(t *testing.T) {
	text := testHeader + "Készpénz befizetés;2025.01.02.;;R1;+1 000,00 HUF;SRC;Hint;;\n"
	assert.Empty(t, ParseStatement(text))
}

func TestParseStatement_TypeMustMatchExactly(t *testing.T) {
	text := testHeader + " Forint átutalás;2025.01.02.;;R1;+1 000,00 HUF;SRC;Hint;;\n"
	assert.Empty(t, ParseStatement(text))
}

func TestParseStatement_RowIndexCountsFilteredRows(t *testing.T) {
	text := testHeader +
		"Díj;2025.01.01.;;F1;-100,00 HUF;;;;\n" +
		"Forint átutalás;2025.01.02.;;R2;+1 000,00 HUF;SRC;Hint;;\n"
	txns := ParseStatement(text)
	require.Len(t, txns, 1)
	assert.Equal(t, "csv-1-R2", txns[0].ID)
}

func TestParseStatement_RawReferenceInID(t *testing.T) {
	text := testHeader + "Forint átutalás;2025.01.02.;; R9 ;+1 000,00 HUF;SRC;Hint;;\n"
	txns := ParseStatement(text)
	require.Len(t, txns, 1)
	assert.Equal(t, "csv-0- R9 ", txns[0].ID)
	assert.Equal(t, "R9", txns[0].Reference)
}

func TestParseStatement_ExtraFieldsIgnored(t *testing.T) {
	text := testHeader + "Forint átutalás;2025.01.02.;;R1;+500 HUF;SRC;Hint;a;b;extra;more\n"
	txns := ParseStatement(text)
	require.Len(t, txns, 1)
	assert.Equal(t, "a b", txns[0].Notes)
}

func TestParseStatement_LengthBound(t *testing.T) {
	text := readFixture(t)
	var nonBlank int
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			nonBlank++
		}
	}
	assert.LessOrEqual(t, len(ParseStatement(text)), nonBlank-1)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"+7 000,00 HUF", 7000, true},
		{"+1 234,50 EUR", 1235, true},
		{"+1 234,49 huf", 1234, true},
		{"+7\u00a0000,00 HUF", 7000, true},
		{"+0,40 HUF", 0, false},
		{"+0,00 HUF", 0, false},
		{"+abc HUF", 0, false},
		{"+ HUF", 0, false},
		{"+12", 12, true},
		{"+9223372036854775807 HUF", 9223372036854775807, true},
		{"+9223372036854775808 HUF", 0, false},
		{"+18446744073709551615 HUF", 0, false},
		{"+1e400 HUF", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, "parseAmount(%q)", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "parseAmount(%q)", tt.in)
		}
	}
}

func TestParseStatement_DropsOutOfRangeAmount(t *testing.T) {
	text := testHeader +
		"Forint átutalás;2025.01.02.;;R1;+1e400 HUF;SRC;Hint;;\n" +
		"Forint átutalás;2025.01.02.;;R2;+9 223 372 036 854 775 808,00 HUF;SRC;Hint;;\n" +
		"Forint átutalás;2025.01.02.;;R3;+500,00 HUF;SRC;Hint;;\n"

	got := ParseStatement(text)
	require.Len(t, got, 1)
	assert.Equal(t, "R3", got[0].Reference)
	assert.Equal(t, int64(500), got[0].Amount)
}

func TestParseStatement_SignFilter(t *testing.T) {
	for _, amount := range []string{"-26 017,00 HUF", "26 017,00 HUF", "0,00 HUF"} {
		text := testHeader + "Forint átutalás;2025.01.02.;;R1;" + amount + ";SRC;Hint;;\n"
		assert.Empty(t, ParseStatement(text), "amount %q", amount)
	}
}

func TestParseBookingDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2025.11.17., hétfő", "2025-11-17"},
		{"2025.11.17.", "2025-11-17"},
		{"Könyvelve: 2024.02.29", "2024-02-29"},
		{"2025-11-17", ""},
		{"17.11.2025", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseBookingDate(tt.in), "parseBookingDate(%q)", tt.in)
	}
}

func TestJoinNotes(t *testing.T) {
	assert.Equal(t, "", joinNotes("", "  "))
	assert.Equal(t, "a", joinNotes("a", ""))
	assert.Equal(t, "b", joinNotes(" ", "b\r"))
	assert.Equal(t, "a b", joinNotes("a", "b"))
}
