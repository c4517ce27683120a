// Package tabular reads CSV sheets and resolves their columns by semantic
// name. It is the only place that knows about header spellings; callers get
// back column indexes and typed cell values.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// Table is a sheet: a header row followed by data rows. Rows may be ragged.
type Table struct {
	Header []string
	Rows   [][]string

	normalized []string
}

// ReadCSV reads a whole CSV sheet. A UTF-8 BOM on the first header cell is
// dropped. An empty input yields an empty Table.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	t := &Table{}
	if len(records) == 0 {
		return t, nil
	}
	t.Header = records[0]
	if len(t.Header) > 0 {
		t.Header[0] = strings.TrimPrefix(t.Header[0], "\ufeff")
	}
	t.Rows = records[1:]
	t.normalized = make([]string, len(t.Header))
	for i, h := range t.Header {
		t.normalized[i] = NormalizeHeader(h)
	}
	return t, nil
}

// Column returns the index of the first header matching one of aliases, or -1.
func (t *Table) Column(aliases []string) int {
	return FindColumn(t.normalized, aliases)
}

// Cell returns the trimmed cell at column idx, or "" when idx is -1 or the row
// is too short.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// BlankRow reports whether every cell of the row is empty.
func BlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader folds a header or alias into its comparison form: full-width
// characters narrowed, case folded, whitespace and bracket/separator
// punctuation removed. "期末余额（本币）" and "期末余额本币" normalize alike.
func NormalizeHeader(s string) string {
	s = width.Narrow.String(strings.TrimSpace(s))
	s = cases.Fold().String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '(', ')', '[', ']', '【', '】', ':', '%', '/', '\\', '-':
			return -1
		}
		return r
	}, s)
}

// FindColumn looks aliases up in already-normalized headers. Exact matches win
// in alias order; failing that, the first header containing any alias is used.
func FindColumn(headers []string, aliases []string) int {
	return findColumn(headers, aliases, nil)
}

func findColumn(headers []string, aliases []string, taken map[int]bool) int {
	norms := make([]string, 0, len(aliases))
	for _, a := range aliases {
		norms = append(norms, NormalizeHeader(a))
	}
	for _, a := range norms {
		for i, h := range headers {
			if !taken[i] && h == a {
				return i
			}
		}
	}
	for i, h := range headers {
		if taken[i] {
			continue
		}
		for _, a := range norms {
			if a != "" && strings.Contains(h, a) {
				return i
			}
		}
	}
	return -1
}

// Claimer resolves several columns of one sheet so that no header is used
// twice. Resolve the most specific columns first: a generic alias such as
// "余额" would otherwise match "期初余额" by containment.
type Claimer struct {
	t     *Table
	taken map[int]bool
}

// Claimer returns a column resolver for t.
func (t *Table) Claimer() *Claimer {
	return &Claimer{t: t, taken: make(map[int]bool)}
}

// Claim resolves aliases among the still unclaimed headers and marks the hit
// as taken. It returns -1 when nothing matches.
func (c *Claimer) Claim(aliases []string) int {
	i := findColumn(c.t.normalized, aliases, c.taken)
	if i >= 0 {
		c.taken[i] = true
	}
	return i
}

// ParseNumber parses an amount cell. Thousands separators are ignored and
// "(123.45)" is read as -123.45. Empty or non-numeric cells report false.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseNullNumber is ParseNumber returning a NullDecimal.
func ParseNullNumber(s string) decimal.NullDecimal {
	d, ok := ParseNumber(s)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

// DirectionSign maps a balance-direction cell to +1 (debit) or -1 (credit).
func DirectionSign(s string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "借", "借方", "debit", "d", "dr":
		return 1, true
	case "贷", "贷方", "credit", "c", "cr":
		return -1, true
	}
	return 0, false
}

// NormalizeCode renders an account code cell as a plain string. Spreadsheet
// exports often write integer codes as "1001.0"; those lose the ".0".
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if whole, frac, ok := strings.Cut(s, "."); ok && whole != "" && strings.Trim(frac, "0") == "" && isDigits(whole) {
		return whole
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
