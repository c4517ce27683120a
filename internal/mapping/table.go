package mapping

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/model"
)

type sectionKey struct {
	statement model.Statement
	section   string
}

type lineKey struct {
	statement model.Statement
	section   string
	lineItem  string
}

// Table accumulates line-item and section totals per statement and remembers
// the order in which sections and line items were first seen.
type Table struct {
	sections      map[model.Statement][]string
	lineItems     map[sectionKey][]string
	lineTotals    map[lineKey]decimal.Decimal
	sectionTotals map[sectionKey]decimal.Decimal
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		sections:      make(map[model.Statement][]string),
		lineItems:     make(map[sectionKey][]string),
		lineTotals:    make(map[lineKey]decimal.Decimal),
		sectionTotals: make(map[sectionKey]decimal.Decimal),
	}
}

// Register records a section and line item in first-seen order. Registering
// twice is a no-op.
func (t *Table) Register(st model.Statement, section, lineItem string) {
	sk := sectionKey{st, section}
	if _, ok := t.sectionTotals[sk]; !ok {
		t.sections[st] = append(t.sections[st], section)
		t.sectionTotals[sk] = decimal.Zero
	}
	lk := lineKey{st, section, lineItem}
	if _, ok := t.lineTotals[lk]; !ok {
		t.lineItems[sk] = append(t.lineItems[sk], lineItem)
		t.lineTotals[lk] = decimal.Zero
	}
}

// Add adds amount to a line item and its section, registering both if needed.
func (t *Table) Add(st model.Statement, section, lineItem string, amount decimal.Decimal) {
	t.Register(st, section, lineItem)
	lk := lineKey{st, section, lineItem}
	sk := sectionKey{st, section}
	t.lineTotals[lk] = t.lineTotals[lk].Add(amount)
	t.sectionTotals[sk] = t.sectionTotals[sk].Add(amount)
}

// Sections returns the sections of st in first-seen order.
func (t *Table) Sections(st model.Statement) []string {
	return append([]string(nil), t.sections[st]...)
}

// LineItems returns the line items of a section in first-seen order.
func (t *Table) LineItems(st model.Statement, section string) []string {
	return append([]string(nil), t.lineItems[sectionKey{st, section}]...)
}

// LineTotal returns the accumulated amount of one line item.
func (t *Table) LineTotal(st model.Statement, section, lineItem string) decimal.Decimal {
	return t.lineTotals[lineKey{st, section, lineItem}]
}

// SectionTotal returns the accumulated amount of one section.
func (t *Table) SectionTotal(st model.Statement, section string) decimal.Decimal {
	return t.sectionTotals[sectionKey{st, section}]
}

// StatementTotal returns the sum of all section totals of st.
func (t *Table) StatementTotal(st model.Statement) decimal.Decimal {
	total := decimal.Zero
	for _, s := range t.sections[st] {
		total = total.Add(t.sectionTotals[sectionKey{st, s}])
	}
	return total
}

// SumSections sums the sections of st whose lowercased name contains any of
// keywords. found is false when no section matched.
func (t *Table) SumSections(st model.Statement, keywords []string) (total decimal.Decimal, found bool) {
	total = decimal.Zero
	for _, s := range t.sections[st] {
		if !matchesAny(s, keywords) {
			continue
		}
		total = total.Add(t.sectionTotals[sectionKey{st, s}])
		found = true
	}
	return total, found
}

func matchesAny(section string, keywords []string) bool {
	text := strings.ToLower(strings.TrimSpace(section))
	for _, k := range keywords {
		if k = strings.ToLower(k); k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}
