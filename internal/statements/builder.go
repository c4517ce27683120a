// Package statements turns accumulated totals or classified accounts into
// ordered statement rows.
package statements

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/classify"
	"github.com/cleared-dev/finstat/internal/mapping"
	"github.com/cleared-dev/finstat/internal/model"
)

// Line item labels the builder emits itself.
const (
	TotalLabel           = "TOTAL"
	NetProfitLabel       = "NetProfit"
	NetChangeInCashLabel = "NetChangeInCash"
	CashBeginLabel       = "CashBegin"
	CashEndLabel         = "CashEnd"

	ProfitSection  = "Profit"
	SummarySection = "Summary"
	CashSection    = "Cash"
)

// Row is one output line. Code is only set for per-account rows.
type Row struct {
	Section  string
	LineItem string
	Code     string
	Amount   decimal.Decimal
}

// Statement is the ordered rows of one statement.
type Statement struct {
	Kind model.Statement
	Rows []Row
}

// Find returns the first row with the given section and line item.
func (s Statement) Find(section, lineItem string) (Row, bool) {
	for _, r := range s.Rows {
		if r.Section == section && r.LineItem == lineItem {
			return r, true
		}
	}
	return Row{}, false
}

// Set is the full output of one run.
type Set struct {
	BS Statement
	IS Statement
	CF Statement

	NetProfit decimal.Decimal

	// Auto is set for heuristic output, which also reports Unclassified.
	Auto         bool
	Unclassified []model.Account
}

// Statements returns BS, IS and CF in output order.
func (s Set) Statements() []Statement {
	return []Statement{s.BS, s.IS, s.CF}
}

// CashSummary carries the cash figures of the heuristic cash-flow summary.
type CashSummary struct {
	Begin decimal.NullDecimal
	End   decimal.NullDecimal
}

// BuildMapped renders a mapping table. Each section lists its line items in
// first-seen order followed by a TOTAL row.
func BuildMapped(t *mapping.Table, netProfit decimal.Decimal) Set {
	set := Set{
		BS:        mappedStatement(t, model.StatementBS),
		IS:        mappedStatement(t, model.StatementIS),
		CF:        mappedStatement(t, model.StatementCF),
		NetProfit: netProfit,
	}
	set.IS.Rows = append(set.IS.Rows, Row{Section: ProfitSection, LineItem: NetProfitLabel, Amount: netProfit})
	set.CF.Rows = append(set.CF.Rows, Row{
		Section:  SummarySection,
		LineItem: NetChangeInCashLabel,
		Amount:   t.StatementTotal(model.StatementCF),
	})
	return set
}

func mappedStatement(t *mapping.Table, st model.Statement) Statement {
	out := Statement{Kind: st}
	for _, section := range t.Sections(st) {
		for _, item := range t.LineItems(st, section) {
			out.Rows = append(out.Rows, Row{Section: section, LineItem: item, Amount: t.LineTotal(st, section, item)})
		}
		out.Rows = append(out.Rows, Row{Section: section, LineItem: TotalLabel, Amount: t.SectionTotal(st, section)})
	}
	return out
}

// HeuristicNetProfit is revenue minus expense, both as absolute amounts.
func HeuristicNetProfit(c classify.Classification) decimal.Decimal {
	return c.AbsSum(model.CategoryRevenue).Sub(c.AbsSum(model.CategoryExpense))
}

// BuildHeuristic renders classified accounts one row per account. Assets keep
// their sign; liabilities, equity, revenue and expense are shown as absolute
// amounts.
func BuildHeuristic(c classify.Classification, cash CashSummary) Set {
	netProfit := HeuristicNetProfit(c)
	set := Set{
		BS:           Statement{Kind: model.StatementBS},
		IS:           Statement{Kind: model.StatementIS},
		CF:           Statement{Kind: model.StatementCF},
		NetProfit:    netProfit,
		Auto:         true,
		Unclassified: c.Unclassified,
	}

	for _, cat := range model.BalanceSheetCategories {
		set.BS.Rows = append(set.BS.Rows, accountRows(c, cat, cat != model.CategoryAssets)...)
	}
	for _, cat := range model.IncomeCategories {
		set.IS.Rows = append(set.IS.Rows, accountRows(c, cat, true)...)
	}
	set.IS.Rows = append(set.IS.Rows, Row{Section: ProfitSection, LineItem: NetProfitLabel, Amount: netProfit})

	if cash.Begin.Valid {
		set.CF.Rows = append(set.CF.Rows, Row{Section: CashSection, LineItem: CashBeginLabel, Amount: cash.Begin.Decimal})
	}
	if cash.End.Valid {
		set.CF.Rows = append(set.CF.Rows, Row{Section: CashSection, LineItem: CashEndLabel, Amount: cash.End.Decimal})
	}
	if cash.Begin.Valid && cash.End.Valid {
		set.CF.Rows = append(set.CF.Rows, Row{
			Section:  CashSection,
			LineItem: NetChangeInCashLabel,
			Amount:   cash.End.Decimal.Sub(cash.Begin.Decimal),
		})
	}
	set.CF.Rows = append(set.CF.Rows, Row{Section: ProfitSection, LineItem: NetProfitLabel, Amount: netProfit})
	return set
}

func accountRows(c classify.Classification, cat model.Category, abs bool) []Row {
	var rows []Row
	total := decimal.Zero
	for _, a := range c.Accounts(cat) {
		amount := a.EndBalance
		if abs {
			amount = amount.Abs()
		}
		total = total.Add(amount)
		rows = append(rows, Row{Section: string(cat), LineItem: a.Label(), Code: a.Code, Amount: amount})
	}
	return append(rows, Row{Section: string(cat), LineItem: TotalLabel, Amount: total})
}
