package accounts

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d(s), Valid: true}
}

func TestLoad_MergesDuplicateCodes(t *testing.T) {
	in := Input{
		Columns: Columns{Code: true, Name: true, EndBalance: true, BeginBalance: true},
		Rows: []Row{
			{Code: "1001", Name: "Cash A", EndBalance: nd("100"), BeginBalance: nd("10")},
			{Code: "1002", Name: "Bank", EndBalance: nd("5")},
			{Code: "1001", Name: "Cash B", EndBalance: nd("-30"), BeginBalance: nd("5")},
		},
	}

	reg, err := Load(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"1001", "1002"}, reg.Codes())
	assert.Equal(t, 2, reg.Len())

	acc, ok := reg.Get("1001")
	require.True(t, ok)
	assert.True(t, acc.EndBalance.Equal(d("70")), "got %s", acc.EndBalance)
	require.True(t, acc.BeginBalance.Valid)
	assert.True(t, acc.BeginBalance.Decimal.Equal(d("15")))
	assert.Equal(t, "Cash B", acc.Name, "last non-empty name wins")

	bank, _ := reg.Get("1002")
	assert.False(t, bank.BeginBalance.Valid)

	assert.True(t, reg.Balance("1001").Equal(d("70")))
	assert.True(t, reg.Balance("9999").IsZero())
	assert.True(t, reg.Total().Equal(d("75")))
}

func TestLoad_FirstTypeWins(t *testing.T) {
	reg, err := Load(Input{
		Columns: Columns{Code: true, Type: true, EndBalance: true},
		Rows: []Row{
			{Code: "1001", EndBalance: nd("1")},
			{Code: "1001", Type: "资产", EndBalance: nd("1")},
			{Code: "1001", Type: "负债", EndBalance: nd("1")},
		},
	})
	require.NoError(t, err)
	acc, _ := reg.Get("1001")
	assert.Equal(t, "资产", acc.Type)
	assert.Equal(t, "1001", acc.Label())
}

func TestLoad_SkipsUnusableRows(t *testing.T) {
	reg, err := Load(Input{
		Columns: Columns{Code: true, EndBalance: true},
		Rows: []Row{
			{Code: "", EndBalance: nd("1")},
			{Code: "  ", EndBalance: nd("1")},
			{Code: "1001"},
			{Code: "1002", EndBalance: nd("3")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1002"}, reg.Codes())
	assert.False(t, reg.Exists("1001"))
	assert.True(t, reg.Exists("1002"))
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"no code column", Input{Columns: Columns{EndBalance: true}}},
		{"no balance columns", Input{Columns: Columns{Code: true}}},
		{"half a debit/credit pair", Input{Columns: Columns{Code: true, EndDebit: true}}},
		{"no usable rows", Input{
			Columns: Columns{Code: true, EndBalance: true},
			Rows:    []Row{{Code: "1001"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrSchema)
		})
	}
}

func TestLoad_BalanceResolution(t *testing.T) {
	cols := Columns{Code: true, EndBalance: true, EndDebit: true, EndCredit: true, Direction: true}
	tests := []struct {
		name string
		row  Row
		want string
		skip bool
	}{
		{"direct wins over pair", Row{EndBalance: nd("10"), EndDebit: nd("99"), EndCredit: nd("1")}, "10", false},
		{"credit direction flips positive", Row{EndBalance: nd("10"), Direction: -1}, "-10", false},
		{"direction ignored for negative", Row{EndBalance: nd("-10"), Direction: -1}, "-10", false},
		{"empty direct falls back to pair", Row{EndDebit: nd("50"), EndCredit: nd("20")}, "30", false},
		{"missing credit counts as zero", Row{EndDebit: nd("50")}, "50", false},
		{"missing debit counts as zero", Row{EndCredit: nd("20")}, "-20", false},
		{"nothing present is absent", Row{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.row
			row.Code = "1001"
			reg, err := Load(Input{
				Columns: cols,
				Rows:    []Row{row, {Code: "9999", EndBalance: nd("0")}},
			})
			require.NoError(t, err)
			acc, ok := reg.Get("1001")
			if tt.skip {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.True(t, acc.EndBalance.Equal(d(tt.want)), "got %s", acc.EndBalance)
		})
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry([]model.Account{
		{Code: "1001", EndBalance: d("1")},
		{Code: "1001", EndBalance: d("2")},
	})
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Balance("1001").Equal(d("3")))

	// Accounts returns a copy.
	accs := reg.Accounts()
	accs[0].Name = "changed"
	got, _ := reg.Get("1001")
	assert.Empty(t, got.Name)
}

func TestReadTrialBalance_DebitCreditColumns(t *testing.T) {
	data := strings.Join([]string{
		"科目编码,科目名称,期初借方余额,期初贷方余额,期末借方余额,期末贷方余额",
		"1001.0,现金,100,,150,",
		"2202,应付账款,,40,,60",
		",小计,100,40,150,60",
		"",
	}, "\n")

	in, err := ReadTrialBalance(strings.NewReader(data))
	require.NoError(t, err)
	assert.True(t, in.Columns.EndDebit)
	assert.True(t, in.Columns.EndCredit)
	assert.False(t, in.Columns.EndBalance, "generic 余额 alias must not steal a debit/credit column")
	assert.False(t, in.Columns.BeginBalance)

	reg, err := Load(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "2202"}, reg.Codes())

	cash, _ := reg.Get("1001")
	assert.True(t, cash.EndBalance.Equal(d("150")))
	assert.True(t, cash.BeginBalance.Decimal.Equal(d("100")))

	ap, _ := reg.Get("2202")
	assert.True(t, ap.EndBalance.Equal(d("-60")))
	assert.True(t, ap.BeginBalance.Decimal.Equal(d("-40")))
}

func TestLoadFile(t *testing.T) {
	reg, err := LoadFile("../../testdata/trial_balance.csv")
	require.NoError(t, err)

	assert.Equal(t, 8, reg.Len())
	assert.True(t, reg.Total().IsZero(), "fixture nets to zero, got %s", reg.Total())

	cash, ok := reg.Get("1001")
	require.True(t, ok)
	assert.Equal(t, "库存现金", cash.Name)
	assert.Equal(t, "资产", cash.Type)
	assert.True(t, cash.EndBalance.Equal(d("150")))

	revenue, _ := reg.Get("6001")
	assert.True(t, revenue.EndBalance.Equal(d("-1200")), "credit direction applied")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("../../testdata/does-not-exist.csv")
	require.Error(t, err)
}
