package config

import (
	"fmt"
	"io"
	"os"

	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/engine"
	"github.com/cleared-dev/finstat/internal/tabular"
)

// Parameter keys and their accepted spellings in a parameter sheet.
var paramAliases = map[string][]string{
	"cash_begin": {"cash_begin", "期初现金", "现金期初", "期初货币资金", "期初现金及现金等价物"},
	"cash_end":   {"cash_end", "期末现金", "现金期末", "期末货币资金", "期末现金及现金等价物"},
	"tolerance":  {"tolerance", "容差", "允许误差"},
}

var paramKeys = func() map[string]string {
	m := make(map[string]string)
	for key, aliases := range paramAliases {
		for _, a := range aliases {
			m[tabular.NormalizeHeader(a)] = key
		}
	}
	return m
}()

// ReadParameters reads a key/value parameter sheet: the first column is the
// key, the second the value. Every row is data; unknown keys (including a
// "key,value" header) and empty values are ignored.
func ReadParameters(r io.Reader) (engine.Params, error) {
	t, err := tabular.ReadCSV(r)
	if err != nil {
		return engine.Params{}, fmt.Errorf("reading parameters: %w", err)
	}

	var p engine.Params
	rows := append([][]string{t.Header}, t.Rows...)
	for _, rec := range rows {
		key, ok := paramKeys[tabular.NormalizeHeader(tabular.Cell(rec, 0))]
		if !ok {
			continue
		}
		raw := tabular.Cell(rec, 1)
		if raw == "" {
			continue
		}
		v, ok := tabular.ParseNumber(raw)
		if !ok {
			return engine.Params{}, fmt.Errorf("%w: parameter %s: invalid number %q", apperrors.ErrSchema, key, raw)
		}
		switch key {
		case "cash_begin":
			p.CashBegin.Decimal, p.CashBegin.Valid = v, true
		case "cash_end":
			p.CashEnd.Decimal, p.CashEnd.Valid = v, true
		case "tolerance":
			p.Tolerance.Decimal, p.Tolerance.Valid = v, true
		}
	}
	return p, nil
}

// ReadParametersFile reads a parameter sheet from disk.
func ReadParametersFile(path string) (engine.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Params{}, fmt.Errorf("opening parameters: %w", err)
	}
	defer f.Close()

	p, err := ReadParameters(f)
	if err != nil {
		return engine.Params{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return p, nil
}
