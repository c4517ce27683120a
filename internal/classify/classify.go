// Package classify assigns accounts to statement categories when no mapping
// table is available, using account type text, name keywords and code
// prefixes.
package classify

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/model"
)

// Config holds every keyword and prefix table the classifier consults. Type
// keywords are matched case-insensitively against the account type text; name
// keywords against the account name.
type Config struct {
	AssetTypes     []string `yaml:"asset_types"`
	LiabilityTypes []string `yaml:"liability_types"`
	EquityTypes    []string `yaml:"equity_types"`

	AssetPrefixes     []string `yaml:"asset_prefixes"`
	LiabilityPrefixes []string `yaml:"liability_prefixes"`
	EquityPrefixes    []string `yaml:"equity_prefixes"`

	RevenueKeywords []string `yaml:"revenue_keywords"`
	ExpenseKeywords []string `yaml:"expense_keywords"`
	RevenueTypes    []string `yaml:"revenue_types"`
	ExpenseTypes    []string `yaml:"expense_types"`

	RevenuePrefixes []string `yaml:"revenue_prefixes"`
	ExpensePrefixes []string `yaml:"expense_prefixes"`

	CashKeywords []string `yaml:"cash_keywords"`
	CashPrefixes []string `yaml:"cash_prefixes"`
}

// DefaultConfig returns the tables for the PRC chart of accounts, with English
// type words accepted alongside.
func DefaultConfig() Config {
	return Config{
		AssetTypes:     []string{"资产", "asset"},
		LiabilityTypes: []string{"负债", "liabilit"},
		EquityTypes:    []string{"权益", "所有者权益", "equity"},

		AssetPrefixes:     []string{"1"},
		LiabilityPrefixes: []string{"2"},
		EquityPrefixes:    []string{"3"},

		RevenueKeywords: []string{
			"收入", "主营业务收入", "其他业务收入", "投资收益", "公允价值变动收益",
			"资产处置收益", "营业外收入", "利息收入", "手续费收入",
		},
		ExpenseKeywords: []string{
			"成本", "费用", "税金", "附加", "所得税", "损失", "营业外支出",
			"管理费用", "销售费用", "财务费用", "研发费用", "信用减值损失",
			"资产减值损失", "手续费支出",
		},
		RevenueTypes: []string{"收入", "revenue", "income"},
		ExpenseTypes: []string{"费用", "成本", "expense", "cost"},

		RevenuePrefixes: []string{"6"},
		ExpensePrefixes: []string{"5", "4"},

		CashKeywords: []string{"现金", "银行存款", "库存现金", "货币资金", "现金等价物"},
		CashPrefixes: []string{"1001", "1002", "1012"},
	}
}

// Merge returns c with every empty table filled from base.
func (c Config) Merge(base Config) Config {
	pick := func(v, def []string) []string {
		if len(v) == 0 {
			return def
		}
		return v
	}
	return Config{
		AssetTypes:        pick(c.AssetTypes, base.AssetTypes),
		LiabilityTypes:    pick(c.LiabilityTypes, base.LiabilityTypes),
		EquityTypes:       pick(c.EquityTypes, base.EquityTypes),
		AssetPrefixes:     pick(c.AssetPrefixes, base.AssetPrefixes),
		LiabilityPrefixes: pick(c.LiabilityPrefixes, base.LiabilityPrefixes),
		EquityPrefixes:    pick(c.EquityPrefixes, base.EquityPrefixes),
		RevenueKeywords:   pick(c.RevenueKeywords, base.RevenueKeywords),
		ExpenseKeywords:   pick(c.ExpenseKeywords, base.ExpenseKeywords),
		RevenueTypes:      pick(c.RevenueTypes, base.RevenueTypes),
		ExpenseTypes:      pick(c.ExpenseTypes, base.ExpenseTypes),
		RevenuePrefixes:   pick(c.RevenuePrefixes, base.RevenuePrefixes),
		ExpensePrefixes:   pick(c.ExpensePrefixes, base.ExpensePrefixes),
		CashKeywords:      pick(c.CashKeywords, base.CashKeywords),
		CashPrefixes:      pick(c.CashPrefixes, base.CashPrefixes),
	}
}

// Classifier applies a Config.
type Classifier struct {
	cfg Config
}

// New returns a Classifier for cfg.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// ClassifyBS returns the balance-sheet category of acc, if any. Type text is
// consulted before the code prefix.
func (c *Classifier) ClassifyBS(acc model.Account) (model.Category, bool) {
	typ := strings.ToLower(acc.Type)
	switch {
	case containsAny(typ, c.cfg.AssetTypes):
		return model.CategoryAssets, true
	case containsAny(typ, c.cfg.LiabilityTypes):
		return model.CategoryLiabilities, true
	case containsAny(typ, c.cfg.EquityTypes):
		return model.CategoryEquity, true
	case hasAnyPrefix(acc.Code, c.cfg.AssetPrefixes):
		return model.CategoryAssets, true
	case hasAnyPrefix(acc.Code, c.cfg.LiabilityPrefixes):
		return model.CategoryLiabilities, true
	case hasAnyPrefix(acc.Code, c.cfg.EquityPrefixes):
		return model.CategoryEquity, true
	}
	return "", false
}

// ClassifyIS returns the income-statement category of acc, if any. Name
// keywords win over type text, which wins over code prefixes.
func (c *Classifier) ClassifyIS(acc model.Account) (model.Category, bool) {
	name := strings.ToLower(acc.Name)
	typ := strings.ToLower(acc.Type)
	switch {
	case containsAny(name, c.cfg.RevenueKeywords):
		return model.CategoryRevenue, true
	case containsAny(name, c.cfg.ExpenseKeywords):
		return model.CategoryExpense, true
	case containsAny(typ, c.cfg.RevenueTypes):
		return model.CategoryRevenue, true
	case containsAny(typ, c.cfg.ExpenseTypes):
		return model.CategoryExpense, true
	}
	// "损益" typed accounts fall through to the same prefix rule as untyped ones.
	if hasAnyPrefix(acc.Code, c.cfg.RevenuePrefixes) {
		return model.CategoryRevenue, true
	}
	if hasAnyPrefix(acc.Code, c.cfg.ExpensePrefixes) {
		return model.CategoryExpense, true
	}
	return "", false
}

// Classify tries the balance sheet first, then the income statement.
func (c *Classifier) Classify(acc model.Account) (model.Category, bool) {
	if cat, ok := c.ClassifyBS(acc); ok {
		return cat, true
	}
	return c.ClassifyIS(acc)
}

// Classification is the result of partitioning a trial balance.
type Classification struct {
	ByCategory   map[model.Category][]model.Account
	Unclassified []model.Account
}

// Accounts returns the accounts of cat in input order.
func (cl Classification) Accounts(cat model.Category) []model.Account {
	return cl.ByCategory[cat]
}

// Has reports whether cat has at least one account.
func (cl Classification) Has(cat model.Category) bool {
	return len(cl.ByCategory[cat]) > 0
}

// Sum returns the signed sum of ending balances of cat.
func (cl Classification) Sum(cat model.Category) decimal.Decimal {
	total := decimal.Zero
	for _, a := range cl.ByCategory[cat] {
		total = total.Add(a.EndBalance)
	}
	return total
}

// AbsSum returns the sum of absolute ending balances of cat.
func (cl Classification) AbsSum(cat model.Category) decimal.Decimal {
	total := decimal.Zero
	for _, a := range cl.ByCategory[cat] {
		total = total.Add(a.EndBalance.Abs())
	}
	return total
}

// Partition classifies every account, keeping input order within each bucket.
func (c *Classifier) Partition(accounts []model.Account) Classification {
	cl := Classification{ByCategory: make(map[model.Category][]model.Account)}
	for _, a := range accounts {
		cat, ok := c.Classify(a)
		if !ok {
			cl.Unclassified = append(cl.Unclassified, a)
			continue
		}
		cl.ByCategory[cat] = append(cl.ByCategory[cat], a)
	}
	return cl
}

// IsCash reports whether acc is a cash or cash-equivalent account. This is
// independent of its BS/IS category.
func (c *Classifier) IsCash(acc model.Account) bool {
	return containsAny(strings.ToLower(acc.Name), c.cfg.CashKeywords) || hasAnyPrefix(acc.Code, c.cfg.CashPrefixes)
}

// CashTotals sums the beginning and ending balances of all cash accounts. A
// total is invalid when no cash account carries that figure.
func (c *Classifier) CashTotals(accounts []model.Account) (begin, end decimal.NullDecimal) {
	for _, a := range accounts {
		if !c.IsCash(a) {
			continue
		}
		end = addNull(end, a.EndBalance)
		if a.BeginBalance.Valid {
			begin = addNull(begin, a.BeginBalance.Decimal)
		}
	}
	return begin, end
}

func addNull(n decimal.NullDecimal, v decimal.Decimal) decimal.NullDecimal {
	if !n.Valid {
		return decimal.NullDecimal{Decimal: v, Valid: true}
	}
	return decimal.NullDecimal{Decimal: n.Decimal.Add(v), Valid: true}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(code string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}
