package accounts

import (
	"fmt"
	"io"
	"os"

	"github.com/cleared-dev/finstat/internal/tabular"
)

type columnIndex struct {
	code       int
	name       int
	typ        int
	endBal     int
	endDebit   int
	endCredit  int
	beginBal   int
	beginDebit int
	beginCred  int
	direction  int
}

// resolveColumns claims the most specific headers first so generic aliases
// ("余额", "科目") only match what is left over.
func resolveColumns(t *tabular.Table) columnIndex {
	c := t.Claimer()
	var idx columnIndex
	idx.code = c.Claim(CodeHeaders)
	idx.beginDebit = c.Claim(BeginDebitHeaders)
	idx.beginCred = c.Claim(BeginCreditHeaders)
	idx.endDebit = c.Claim(EndDebitHeaders)
	idx.endCredit = c.Claim(EndCreditHeaders)
	idx.beginBal = c.Claim(BeginBalanceHeaders)
	idx.endBal = c.Claim(EndBalanceHeaders)
	idx.direction = c.Claim(DirectionHeaders)
	idx.typ = c.Claim(TypeHeaders)
	idx.name = c.Claim(NameHeaders)
	return idx
}

func (c columnIndex) columns() Columns {
	return Columns{
		Code:         c.code >= 0,
		Name:         c.name >= 0,
		Type:         c.typ >= 0,
		EndBalance:   c.endBal >= 0,
		EndDebit:     c.endDebit >= 0,
		EndCredit:    c.endCredit >= 0,
		BeginBalance: c.beginBal >= 0,
		BeginDebit:   c.beginDebit >= 0,
		BeginCredit:  c.beginCred >= 0,
		Direction:    c.direction >= 0,
	}
}

// HasTrialBalanceHeaders reports whether a sheet looks like a trial balance:
// it has a code column and some ending-balance representation.
func HasTrialBalanceHeaders(t *tabular.Table) bool {
	return resolveColumns(t).columns().Validate() == nil
}

// ReadTrialBalance reads a trial-balance CSV sheet into registry input.
// Column validation is left to Load.
func ReadTrialBalance(r io.Reader) (Input, error) {
	t, err := tabular.ReadCSV(r)
	if err != nil {
		return Input{}, fmt.Errorf("reading trial balance CSV: %w", err)
	}
	return FromTable(t), nil
}

// FromTable converts an already-read sheet into registry input.
func FromTable(t *tabular.Table) Input {
	idx := resolveColumns(t)
	in := Input{Columns: idx.columns()}

	for _, rec := range t.Rows {
		if tabular.BlankRow(rec) {
			continue
		}
		row := Row{
			Code:         tabular.NormalizeCode(tabular.Cell(rec, idx.code)),
			Name:         tabular.Cell(rec, idx.name),
			Type:         tabular.Cell(rec, idx.typ),
			EndBalance:   tabular.ParseNullNumber(tabular.Cell(rec, idx.endBal)),
			EndDebit:     tabular.ParseNullNumber(tabular.Cell(rec, idx.endDebit)),
			EndCredit:    tabular.ParseNullNumber(tabular.Cell(rec, idx.endCredit)),
			BeginBalance: tabular.ParseNullNumber(tabular.Cell(rec, idx.beginBal)),
			BeginDebit:   tabular.ParseNullNumber(tabular.Cell(rec, idx.beginDebit)),
			BeginCredit:  tabular.ParseNullNumber(tabular.Cell(rec, idx.beginCred)),
		}
		if sign, ok := tabular.DirectionSign(tabular.Cell(rec, idx.direction)); ok {
			row.Direction = sign
		}
		in.Rows = append(in.Rows, row)
	}
	return in
}

// LoadFile reads a trial-balance CSV file and loads it into a Registry.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trial balance: %w", err)
	}
	defer f.Close()

	in, err := ReadTrialBalance(f)
	if err != nil {
		return nil, err
	}
	reg, err := Load(in)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return reg, nil
}
