package model

import "github.com/shopspring/decimal"

// Category is the bucket the heuristic classifier assigns an account to.
type Category string

const (
	CategoryAssets      Category = "Assets"
	CategoryLiabilities Category = "Liabilities"
	CategoryEquity      Category = "Equity"
	CategoryRevenue     Category = "Revenue"
	CategoryExpense     Category = "Expense"
)

// BalanceSheetCategories lists the BS buckets in presentation order.
var BalanceSheetCategories = []Category{CategoryAssets, CategoryLiabilities, CategoryEquity}

// IncomeCategories lists the IS buckets in presentation order.
var IncomeCategories = []Category{CategoryRevenue, CategoryExpense}

// Statement returns the statement a category is reported on.
func (c Category) Statement() Statement {
	switch c {
	case CategoryRevenue, CategoryExpense:
		return StatementIS
	default:
		return StatementBS
	}
}

// Account is one logical trial-balance account. Rows sharing a code are
// merged into a single Account by summing their balances.
type Account struct {
	Code         string
	Name         string
	Type         string // free text from the source, e.g. "资产" or "损益"
	EndBalance   decimal.Decimal
	BeginBalance decimal.NullDecimal // invalid when no source row carried it
}

// Label returns the account name, or the code when the name is empty.
func (a Account) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Code
}
