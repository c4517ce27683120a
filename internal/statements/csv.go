package statements

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/model"
)

// Header is the CSV header of bs.csv, is.csv and cf.csv.
const Header = "section,line_item,account_code,amount"

// UnclassifiedHeader is the CSV header of unclassified.csv.
const UnclassifiedHeader = "account_code,account_name,end_balance"

const (
	numFields   = 4
	colSection  = 0
	colLineItem = 1
	colCode     = 2
	colAmount   = 3
)

// FileName returns the output file name of a statement, e.g. "bs.csv".
func FileName(st model.Statement) string {
	return strings.ToLower(string(st)) + ".csv"
}

// UnclassifiedFile is the output file name of the unclassified report.
const UnclassifiedFile = "unclassified.csv"

// MarshalRow converts a Row to a CSV record.
func MarshalRow(r Row) []string {
	rec := make([]string, numFields)
	rec[colSection] = r.Section
	rec[colLineItem] = r.LineItem
	rec[colCode] = r.Code
	rec[colAmount] = r.Amount.StringFixed(2)
	return rec
}

// UnmarshalRow parses a CSV record into a Row.
func UnmarshalRow(rec []string) (Row, error) {
	if len(rec) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}
	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("invalid amount %q: %w", rec[colAmount], err)
	}
	return Row{
		Section:  rec[colSection],
		LineItem: rec[colLineItem],
		Code:     rec[colCode],
		Amount:   amount,
	}, nil
}

// WriteStatement writes a statement including the header.
func WriteStatement(w io.Writer, s Statement) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range s.Rows {
		if err := cw.Write(MarshalRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadStatement reads rows written by WriteStatement.
func ReadStatement(r io.Reader, kind model.Statement) (Statement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return Statement{}, fmt.Errorf("reading statement CSV: %w", err)
	}

	out := Statement{Kind: kind}
	if len(records) == 0 {
		return out, nil
	}
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return Statement{}, fmt.Errorf("row %d: %w", i+2, err)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// WriteUnclassified writes the accounts the heuristic could not place.
func WriteUnclassified(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(UnclassifiedHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, a := range accounts {
		if err := cw.Write([]string{a.Code, a.Name, a.EndBalance.StringFixed(2)}); err != nil {
			return fmt.Errorf("writing account %s: %w", a.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes bs.csv, is.csv and cf.csv to dir, plus unclassified.csv for
// heuristic output. It returns the paths written.
// A stale unclassified.csv is removed when the set is not heuristic.
func (s Set) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string
	for _, st := range s.Statements() {
		path := filepath.Join(dir, FileName(st.Kind))
		if err := writeFile(path, func(w io.Writer) error { return WriteStatement(w, st) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	path := filepath.Join(dir, UnclassifiedFile)
	if !s.Auto {
		// A list left over from an earlier heuristic run no longer applies.
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return paths, fmt.Errorf("removing %s: %w", path, err)
		}
		return paths, nil
	}
	if err := writeFile(path, func(w io.Writer) error { return WriteUnclassified(w, s.Unclassified) }); err != nil {
		return paths, err
	}
	paths = append(paths, path)
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
