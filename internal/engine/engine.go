// Package engine runs one statement generation: mapping or heuristic
// classification, consistency checks and statement building.
package engine

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/accounts"
	"github.com/cleared-dev/finstat/internal/checks"
	"github.com/cleared-dev/finstat/internal/classify"
	"github.com/cleared-dev/finstat/internal/mapping"
	"github.com/cleared-dev/finstat/internal/model"
	"github.com/cleared-dev/finstat/internal/statements"
)

// Mode is how statements were derived.
type Mode string

const (
	ModeMapping   Mode = "mapping"
	ModeHeuristic Mode = "heuristic"
)

// Params are the optional run parameters. Invalid fields fall back to values
// derived from the trial balance or to defaults.
type Params struct {
	CashBegin decimal.NullDecimal
	CashEnd   decimal.NullDecimal
	Tolerance decimal.NullDecimal
}

// Override returns p with every valid field of o applied on top.
func (p Params) Override(o Params) Params {
	if o.CashBegin.Valid {
		p.CashBegin = o.CashBegin
	}
	if o.CashEnd.Valid {
		p.CashEnd = o.CashEnd
	}
	if o.Tolerance.Valid {
		p.Tolerance = o.Tolerance
	}
	return p
}

// Sections holds the keywords that identify mapped sections. Matching is a
// case-insensitive substring test on the section name.
type Sections struct {
	Assets      []string `yaml:"assets"`
	Liabilities []string `yaml:"liabilities"`
	Equity      []string `yaml:"equity"`
	Revenue     []string `yaml:"revenue"`
	Expense     []string `yaml:"expense"`
}

// DefaultSections returns the built-in English and Chinese section keywords.
func DefaultSections() Sections {
	return Sections{
		Assets:      []string{"asset", "资产"},
		Liabilities: []string{"liabilit", "负债"},
		Equity:      []string{"equity", "权益", "capital", "所有者权益"},
		Revenue:     []string{"revenue", "income", "收入"},
		Expense:     []string{"expense", "cost", "费用", "成本", "税金", "损失"},
	}
}

// Merge returns s with every empty list filled from base.
func (s Sections) Merge(base Sections) Sections {
	pick := func(v, def []string) []string {
		if len(v) == 0 {
			return def
		}
		return v
	}
	return Sections{
		Assets:      pick(s.Assets, base.Assets),
		Liabilities: pick(s.Liabilities, base.Liabilities),
		Equity:      pick(s.Equity, base.Equity),
		Revenue:     pick(s.Revenue, base.Revenue),
		Expense:     pick(s.Expense, base.Expense),
	}
}

// Input is everything one run needs. A nil Rules slice selects heuristic
// mode; Classifier, Sections and Logger have defaults.
type Input struct {
	Registry   *accounts.Registry
	Rules      []model.MappingRule
	Params     Params
	Classifier *classify.Classifier
	Sections   Sections
	Logger     *slog.Logger
}

// Result is the outcome of a run. Statements are present even when checks
// failed.
type Result struct {
	RunID      string
	Mode       Mode
	Tolerance  decimal.Decimal
	Statements statements.Set
	Checks     []model.CheckResult
	Missing    []string
	Unmapped   []string
}

// Failed reports whether any check recorded an ERROR.
func (r *Result) Failed() bool {
	return model.HasErrors(r.Checks)
}

// Counts returns the number of warning and error results.
func (r *Result) Counts() (warnings, errs int) {
	for _, c := range r.Checks {
		switch c.Severity {
		case model.SeverityWarn:
			warnings++
		case model.SeverityError:
			errs++
		}
	}
	return warnings, errs
}

// Run executes one generation over an already loaded registry.
func Run(in Input) (*Result, error) {
	if in.Registry == nil {
		return nil, errors.New("engine: nil account registry")
	}
	classifier := in.Classifier
	if classifier == nil {
		classifier = classify.New(classify.DefaultConfig())
	}
	sections := in.Sections.Merge(DefaultSections())
	logger := in.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tolerance := checks.DefaultTolerance
	if in.Params.Tolerance.Valid {
		tolerance = in.Params.Tolerance.Decimal
	}

	res := &Result{RunID: uuid.NewString(), Tolerance: tolerance}
	log := logger.With("run_id", res.RunID)

	chk := checks.New(tolerance)
	chk.TrialBalanceZero(in.Registry.Total())

	accs := in.Registry.Accounts()
	cashBegin, cashEnd := classifier.CashTotals(accs)
	if in.Params.CashBegin.Valid {
		cashBegin = in.Params.CashBegin
	}
	if in.Params.CashEnd.Valid {
		cashEnd = in.Params.CashEnd
	}
	log.Debug("cash figures", "begin", nullString(cashBegin), "end", nullString(cashEnd))

	if in.Rules != nil {
		res.Mode = ModeMapping
		runMapped(in, sections, chk, cashBegin, cashEnd, res)
		log.Info("mapping applied", "rules", len(in.Rules), "missing", len(res.Missing), "unmapped", len(res.Unmapped))
	} else {
		res.Mode = ModeHeuristic
		runHeuristic(accs, classifier, chk, cashBegin, cashEnd, res)
		log.Info("heuristic classification", "accounts", len(accs), "unclassified", len(res.Statements.Unclassified))
	}

	res.Checks = chk.Results()
	warnings, errs := chk.Counts()
	log.Info("run complete", "mode", res.Mode, "accounts", in.Registry.Len(), "warnings", warnings, "errors", errs)
	return res, nil
}

func runMapped(in Input, sections Sections, chk *checks.Checker, cashBegin, cashEnd decimal.NullDecimal, res *Result) {
	applied := mapping.Apply(in.Registry, in.Rules)
	res.Missing = applied.Missing
	res.Unmapped = applied.Unmapped(in.Registry.Codes())
	chk.MissingAccounts(res.Missing)
	chk.UnmappedAccounts(res.Unmapped)

	t := applied.Table
	assets, hasAssets := t.SumSections(model.StatementBS, sections.Assets)
	liabilities, hasLiab := t.SumSections(model.StatementBS, sections.Liabilities)
	equity, hasEquity := t.SumSections(model.StatementBS, sections.Equity)
	chk.BalanceIdentity(checks.BalanceInputs{
		Assets:      present(assets, hasAssets),
		Liabilities: present(liabilities, hasLiab),
		Equity:      present(equity, hasEquity),
	})

	revenue, hasRev := t.SumSections(model.StatementIS, sections.Revenue)
	expense, hasExp := t.SumSections(model.StatementIS, sections.Expense)
	netProfit := t.StatementTotal(model.StatementIS)
	if hasRev || hasExp {
		netProfit = revenue.Sub(expense)
	}
	chk.IncomeSections(hasRev || hasExp)

	cfTotal := t.StatementTotal(model.StatementCF)
	chk.CashRollForward(cashBegin, cashEnd, decimal.NewNullDecimal(cfTotal))

	res.Statements = statements.BuildMapped(t, netProfit)
}

func runHeuristic(accs []model.Account, classifier *classify.Classifier, chk *checks.Checker, cashBegin, cashEnd decimal.NullDecimal, res *Result) {
	cl := classifier.Partition(accs)

	// Liabilities and equity carry credit (negative) balances; negating them
	// turns A - (L + E) into the signed identity A + L + E = 0.
	chk.BalanceIdentity(checks.BalanceInputs{
		Assets:      present(cl.Sum(model.CategoryAssets), cl.Has(model.CategoryAssets)),
		Liabilities: present(cl.Sum(model.CategoryLiabilities).Neg(), cl.Has(model.CategoryLiabilities)),
		Equity:      present(cl.Sum(model.CategoryEquity).Neg(), cl.Has(model.CategoryEquity)),
		Auto:        true,
	})
	chk.IncomeAccounts(cl.Has(model.CategoryRevenue) || cl.Has(model.CategoryExpense))

	codes := make([]string, len(cl.Unclassified))
	for i, a := range cl.Unclassified {
		codes[i] = a.Code
	}
	chk.UnclassifiedAccounts(codes)
	chk.CashFigures(cashBegin, cashEnd)

	res.Statements = statements.BuildHeuristic(cl, statements.CashSummary{Begin: cashBegin, End: cashEnd})
}

func present(v decimal.Decimal, ok bool) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: v, Valid: ok}
}

func nullString(n decimal.NullDecimal) string {
	if !n.Valid {
		return "-"
	}
	return n.Decimal.StringFixed(2)
}
