// Package mapping applies mapping rules to trial-balance balances and
// accumulates statement line items and sections.
package mapping

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/codes"
	"github.com/cleared-dev/finstat/internal/model"
)

// Balances is the read-only view of a trial balance the engine needs.
type Balances interface {
	Codes() []string
	Balance(code string) decimal.Decimal
}

// Result is the outcome of applying a rule set.
type Result struct {
	Table   *Table
	Used    map[string]bool
	Missing []string // tokens that matched nothing, first-seen
}

// Apply evaluates rules in order against b. Sections and line items are
// registered before their tokens are resolved, so a line whose tokens match
// nothing still appears with a zero total. An account matched by several rules
// is counted by each of them. Sign is applied as given; readers default an
// omitted sign to 1.
func Apply(b Balances, rules []model.MappingRule) *Result {
	res := &Result{
		Table: NewTable(),
		Used:  make(map[string]bool),
	}
	all := b.Codes()
	seenMissing := make(map[string]bool)

	for _, rule := range rules {
		res.Table.Register(rule.Statement, rule.Section, rule.LineItem)
		for _, tok := range rule.Codes {
			matched := codes.Resolve(tok, all)
			if len(matched) == 0 {
				if !seenMissing[tok] {
					seenMissing[tok] = true
					res.Missing = append(res.Missing, tok)
				}
				continue
			}
			for _, code := range matched {
				res.Table.Add(rule.Statement, rule.Section, rule.LineItem, b.Balance(code).Mul(rule.Sign))
				res.Used[code] = true
			}
		}
	}
	return res
}

// Unmapped returns the codes no rule touched, in the order given.
func (r *Result) Unmapped(all []string) []string {
	var out []string
	for _, c := range all {
		if !r.Used[c] {
			out = append(out, c)
		}
	}
	return out
}
