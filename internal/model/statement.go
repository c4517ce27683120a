package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Statement identifies one of the three generated financial statements.
type Statement string

const (
	StatementBS Statement = "BS"
	StatementIS Statement = "IS"
	StatementCF Statement = "CF"
)

// Statements lists every statement in output order.
var Statements = []Statement{StatementBS, StatementIS, StatementCF}

var statementAliases = map[string]Statement{
	"bs":               StatementBS,
	"balance sheet":    StatementBS,
	"资产负债表":            StatementBS,
	"is":               StatementIS,
	"income statement": StatementIS,
	"利润表":              StatementIS,
	"损益表":              StatementIS,
	"cf":               StatementCF,
	"cash flow":        StatementCF,
	"cashflow":         StatementCF,
	"现金流量表":            StatementCF,
}

// ParseStatement maps a statement label from a mapping table to a Statement.
func ParseStatement(s string) (Statement, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if st, ok := statementAliases[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown statement %q", s)
}

// MappingRule ties one or more account code tokens to a statement line item.
type MappingRule struct {
	Statement Statement
	Section   string
	LineItem  string
	Codes     []string // raw tokens: "1122", "113*", "1001-1012"
	Sign      decimal.Decimal
}

// Validate reports the first missing field of the rule.
func (r MappingRule) Validate() error {
	switch {
	case r.Statement == "":
		return fmt.Errorf("missing statement")
	case r.Section == "":
		return fmt.Errorf("missing section")
	case r.LineItem == "":
		return fmt.Errorf("missing line item")
	case len(r.Codes) == 0:
		return fmt.Errorf("missing account codes")
	}
	return nil
}
