package mapping

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/model"
)

type fakeBalances struct {
	codes    []string
	balances map[string]decimal.Decimal
}

func (f fakeBalances) Codes() []string { return f.codes }

func (f fakeBalances) Balance(code string) decimal.Decimal { return f.balances[code] }

func balances(pairs ...string) fakeBalances {
	f := fakeBalances{balances: make(map[string]decimal.Decimal)}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.codes = append(f.codes, pairs[i])
		f.balances[pairs[i]] = decimal.RequireFromString(pairs[i+1])
	}
	return f
}

func rule(st model.Statement, section, line string, sign int64, tokens ...string) model.MappingRule {
	return model.MappingRule{Statement: st, Section: section, LineItem: line, Codes: tokens, Sign: decimal.NewFromInt(sign)}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

func TestApply_SignApplication(t *testing.T) {
	b := balances("2202", "500")
	res := Apply(b, []model.MappingRule{rule(model.StatementBS, "Liabilities", "Payables", -1, "2202")})

	assertDec(t, "-500", res.Table.LineTotal(model.StatementBS, "Liabilities", "Payables"))
	assertDec(t, "-500", res.Table.SectionTotal(model.StatementBS, "Liabilities"))
	assert.True(t, res.Used["2202"])
	// Balances are not mutated.
	assertDec(t, "500", b.Balance("2202"))
}

func TestApply_OrderIsFirstSeen(t *testing.T) {
	b := balances("1001", "1", "2202", "2", "1122", "3")
	res := Apply(b, []model.MappingRule{
		rule(model.StatementBS, "Liabilities", "Payables", 1, "2202"),
		rule(model.StatementBS, "Assets", "Receivables", 1, "1122"),
		rule(model.StatementBS, "Assets", "Cash", 1, "1001"),
		rule(model.StatementBS, "Liabilities", "Payables", 1, "2202"),
	})

	assert.Equal(t, []string{"Liabilities", "Assets"}, res.Table.Sections(model.StatementBS))
	assert.Equal(t, []string{"Receivables", "Cash"}, res.Table.LineItems(model.StatementBS, "Assets"))
	// The second Payables rule counts 2202 again.
	assertDec(t, "4", res.Table.LineTotal(model.StatementBS, "Liabilities", "Payables"))
	assert.Empty(t, res.Table.Sections(model.StatementCF))
}

func TestApply_MissingTokens(t *testing.T) {
	b := balances("1001", "10")
	res := Apply(b, []model.MappingRule{
		rule(model.StatementBS, "Assets", "Ghost", 1, "9999", "8*"),
		rule(model.StatementBS, "Assets", "Cash", 1, "1001", "9999"),
	})

	assert.Equal(t, []string{"9999", "8*"}, res.Missing)
	// A line whose tokens match nothing is still present with a zero total.
	assert.Equal(t, []string{"Ghost", "Cash"}, res.Table.LineItems(model.StatementBS, "Assets"))
	assertDec(t, "0", res.Table.LineTotal(model.StatementBS, "Assets", "Ghost"))
	assertDec(t, "10", res.Table.SectionTotal(model.StatementBS, "Assets"))
}

func TestApply_Idempotent(t *testing.T) {
	b := balances("1001", "10", "1002", "20", "1131", "5")
	rules := []model.MappingRule{
		rule(model.StatementBS, "Assets", "Cash", 1, "1001-1002"),
		rule(model.StatementBS, "Assets", "Other", 1, "113*"),
	}

	first := Apply(b, rules)
	second := Apply(b, rules)
	assert.Equal(t, first.Table.Sections(model.StatementBS), second.Table.Sections(model.StatementBS))
	assert.True(t, first.Table.StatementTotal(model.StatementBS).Equal(second.Table.StatementTotal(model.StatementBS)))
	assertDec(t, "35", second.Table.StatementTotal(model.StatementBS))
}

func TestUnmapped(t *testing.T) {
	b := balances("1001", "1", "1002", "2", "6001", "3")
	res := Apply(b, []model.MappingRule{rule(model.StatementBS, "Assets", "Cash", 1, "1001")})
	assert.Equal(t, []string{"1002", "6001"}, res.Unmapped(b.Codes()))
}

func TestApply_ExplicitZeroSignExcludesBalance(t *testing.T) {
	rules, err := ReadRules(strings.NewReader("statement,section,line_item,account_code,sign\nBS,Assets,Excluded,1001,0\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assertDec(t, "0", rules[0].Sign)

	res := Apply(balances("1001", "500"), rules)
	assertDec(t, "0", res.Table.LineTotal(model.StatementBS, "Assets", "Excluded"))
	assert.True(t, res.Used["1001"])
}

func TestReadRules_NormalizesEachToken(t *testing.T) {
	rules, err := ReadRules(strings.NewReader("statement,section,line_item,account_code\nBS,Assets,Cash,\"1001.0;1002.0, 113*\"\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"1001", "1002", "113*"}, rules[0].Codes)

	res := Apply(balances("1001", "1", "1002", "2", "1131", "3"), rules)
	assert.Empty(t, res.Missing)
	assertDec(t, "6", res.Table.LineTotal(model.StatementBS, "Assets", "Cash"))
}

func TestSumSections(t *testing.T) {
	tbl := NewTable()
	tbl.Add(model.StatementIS, "Operating Revenue", "Sales", decimal.NewFromInt(100))
	tbl.Add(model.StatementIS, "其他收入", "Interest", decimal.NewFromInt(5))
	tbl.Add(model.StatementIS, "Cost of sales", "COGS", decimal.NewFromInt(40))

	rev, found := tbl.SumSections(model.StatementIS, []string{"revenue", "income", "收入"})
	assert.True(t, found)
	assertDec(t, "105", rev)

	_, found = tbl.SumSections(model.StatementIS, []string{"equity"})
	assert.False(t, found)

	assertDec(t, "145", tbl.StatementTotal(model.StatementIS))
}

func TestReadRules(t *testing.T) {
	data := strings.Join([]string{
		"报表,板块,项目,科目编码,符号",
		"资产负债表,资产,货币资金,1001;1002、1012,",
		"",
		"利润表,收入,营业收入,6001,-1",
		"cf,经营活动,净利润,6*,(1)",
	}, "\n")

	rules, err := ReadRules(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, model.StatementBS, rules[0].Statement)
	assert.Equal(t, "资产", rules[0].Section)
	assert.Equal(t, "货币资金", rules[0].LineItem)
	assert.Equal(t, []string{"1001", "1002", "1012"}, rules[0].Codes)
	assertDec(t, "1", rules[0].Sign)

	assert.Equal(t, model.StatementIS, rules[1].Statement)
	assertDec(t, "-1", rules[1].Sign)

	assert.Equal(t, model.StatementCF, rules[2].Statement)
	assertDec(t, "-1", rules[2].Sign)
}

func TestReadRules_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		msg  string
	}{
		{"missing columns", "statement,section\nBS,Assets\n", "missing required mapping columns"},
		{"missing values", "statement,section,line_item,account_code\nBS,,Cash,1001\n", "row 2 missing mapping values"},
		{"unknown statement", "statement,section,line_item,account_code\nBS,Assets,Cash,1001\nXX,Assets,Cash,1001\n", "row 3"},
		{"empty tokens", "statement,section,line_item,account_code\nBS,Assets,Cash,\" ; \"\n", "row 2 has empty account_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRules(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrMapping)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWriteRules_ReadBack(t *testing.T) {
	rules := []model.MappingRule{
		rule(model.StatementBS, "Assets", "Cash", 1, "1001", "1002"),
		rule(model.StatementIS, "Revenue", "Sales", -1, "6*"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRules(&buf, rules))

	got, err := ReadRules(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rules[0].Codes, got[0].Codes)
	assertDec(t, "-1", got[1].Sign)
}

func TestReadRulesFile_Fixture(t *testing.T) {
	rules, err := ReadRulesFile("../../testdata/mapping.csv")
	require.NoError(t, err)
	require.Len(t, rules, 11)
	assert.Equal(t, []string{"1001-1002"}, rules[0].Codes)
	assert.Equal(t, model.StatementCF, rules[10].Statement)
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules("../../testdata/mapping.yaml")
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, model.StatementBS, rules[0].Statement)
	assert.Equal(t, []string{"1001", "1002"}, rules[0].Codes)
	assertDec(t, "1", rules[0].Sign)

	assert.Equal(t, []string{"2202"}, rules[1].Codes)
	assertDec(t, "-1", rules[1].Sign)

	assert.Equal(t, model.StatementIS, rules[2].Statement)
	assert.Equal(t, []string{"6001"}, rules[2].Codes)
}

func TestLoadRules_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - statement: BS\n    section: Assets\n    codes: [\"1001\"]\n"), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMapping)
	assert.Contains(t, err.Error(), "missing line item")
}
