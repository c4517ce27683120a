// Package checks evaluates the accounting identities of a generated statement
// set. Every check appends at most one result; nothing short-circuits, so a
// run reports all of its findings at once.
package checks

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/model"
)

// DefaultTolerance is the absolute difference accepted by every numeric check.
var DefaultTolerance = decimal.RequireFromString("0.01")

// unclassifiedSample caps the codes listed in the unclassified warning.
const unclassifiedSample = 10

// Checker accumulates check results for one run.
type Checker struct {
	tolerance decimal.Decimal
	results   []model.CheckResult
}

// New returns a Checker. A negative tolerance is treated as zero.
func New(tolerance decimal.Decimal) *Checker {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	return &Checker{tolerance: tolerance}
}

// Tolerance returns the tolerance in use.
func (c *Checker) Tolerance() decimal.Decimal { return c.tolerance }

func (c *Checker) add(sev model.Severity, check, format string, args ...any) {
	c.results = append(c.results, model.CheckResult{
		Severity: sev,
		Check:    check,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *Checker) exceeds(v decimal.Decimal) bool {
	return v.Abs().GreaterThan(c.tolerance)
}

// TrialBalanceZero warns when the ending balances of the trial balance do not
// net to zero.
func (c *Checker) TrialBalanceZero(sum decimal.Decimal) {
	if c.exceeds(sum) {
		c.add(model.SeverityWarn, model.CheckTrialBalanceZero, "Trial balance not zero. Sum: %s", sum.StringFixed(2))
	}
}

// BalanceInputs are the balance-sheet side totals. A side is invalid when no
// section or account for it was found.
type BalanceInputs struct {
	Assets      decimal.NullDecimal
	Liabilities decimal.NullDecimal
	Equity      decimal.NullDecimal

	// Auto marks totals produced by the heuristic classifier.
	Auto bool
}

// BalanceIdentity checks Assets = Liabilities + Equity.
func (c *Checker) BalanceIdentity(in BalanceInputs) {
	if !in.Assets.Valid || !in.Liabilities.Valid || !in.Equity.Valid {
		if in.Auto {
			c.add(model.SeverityError, model.CheckBalanceIdentity, "BS sections Assets/Liabilities/Equity not identified in auto mode.")
			return
		}
		c.add(model.SeverityError, model.CheckBalanceIdentity, "BS sections Assets/Liabilities/Equity not found.")
		return
	}
	diff := in.Assets.Decimal.Sub(in.Liabilities.Decimal.Add(in.Equity.Decimal))
	if c.exceeds(diff) {
		c.add(model.SeverityError, model.CheckBalanceIdentity, "BS not balanced. Difference: %s", diff.StringFixed(2))
	}
}

// CashRollForward checks that the change in cash equals the cash-flow total.
// It only warns when either cash figure is unknown.
func (c *Checker) CashRollForward(begin, end, cfTotal decimal.NullDecimal) {
	if !begin.Valid || !end.Valid {
		c.add(model.SeverityWarn, model.CheckCashRollForward, "cash_begin/cash_end not provided; CF check skipped.")
		return
	}
	diff := end.Decimal.Sub(begin.Decimal).Sub(cfTotal.Decimal)
	if c.exceeds(diff) {
		c.add(model.SeverityError, model.CheckCashRollForward, "CF net change mismatch. Difference: %s", diff.StringFixed(2))
	}
}

// CashFigures warns when the heuristic cash summary cannot be completed.
func (c *Checker) CashFigures(begin, end decimal.NullDecimal) {
	if !begin.Valid || !end.Valid {
		c.add(model.SeverityWarn, model.CheckCashRollForward, "cash_begin/cash_end not identified; CF summary limited.")
	}
}

// MissingAccounts reports mapping tokens that matched no account.
func (c *Checker) MissingAccounts(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	c.add(model.SeverityError, model.CheckMissingAccounts, "Missing account_code(s): %s", strings.Join(sorted(tokens), ", "))
}

// UnmappedAccounts reports accounts no mapping rule touched.
func (c *Checker) UnmappedAccounts(codes []string) {
	if len(codes) == 0 {
		return
	}
	c.add(model.SeverityWarn, model.CheckUnmapped, "Unmapped account_code(s): %s", strings.Join(sorted(codes), ", "))
}

// UnclassifiedAccounts reports accounts the heuristic could not place. Only the
// first few codes are listed.
func (c *Checker) UnclassifiedAccounts(codes []string) {
	if len(codes) == 0 {
		return
	}
	sample := codes
	suffix := ""
	if len(codes) > unclassifiedSample {
		sample = codes[:unclassifiedSample]
		suffix = fmt.Sprintf(" ... (%d more)", len(codes)-unclassifiedSample)
	}
	c.add(model.SeverityWarn, model.CheckUnclassified, "Unclassified accounts: %s%s", strings.Join(sample, ", "), suffix)
}

// IncomeSections warns when no revenue or expense section was identified in a
// mapped income statement.
func (c *Checker) IncomeSections(found bool) {
	if !found {
		c.add(model.SeverityWarn, model.CheckIncomeSections, "IS revenue/expense sections not identified; net profit uses total.")
	}
}

// IncomeAccounts warns when the heuristic found no revenue or expense account.
func (c *Checker) IncomeAccounts(found bool) {
	if !found {
		c.add(model.SeverityWarn, model.CheckIncomeSections, "IS revenue/expense accounts not identified in auto mode.")
	}
}

// Results returns all results in the order they were recorded.
func (c *Checker) Results() []model.CheckResult {
	return append([]model.CheckResult(nil), c.results...)
}

// Failed reports whether any ERROR was recorded.
func (c *Checker) Failed() bool {
	return model.HasErrors(c.results)
}

// Counts returns the number of warnings and errors.
func (c *Checker) Counts() (warnings, errors int) {
	for _, r := range c.results {
		switch r.Severity {
		case model.SeverityWarn:
			warnings++
		case model.SeverityError:
			errors++
		}
	}
	return warnings, errors
}

func sorted(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}
