package accounts

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/model"
)

// Columns records which semantic trial-balance columns the reader resolved.
type Columns struct {
	Code         bool
	Name         bool
	Type         bool
	EndBalance   bool
	EndDebit     bool
	EndCredit    bool
	BeginBalance bool
	BeginDebit   bool
	BeginCredit  bool
	Direction    bool
}

// Validate fails with ErrSchema when the columns cannot yield an account code
// and an ending balance.
func (c Columns) Validate() error {
	if !c.Code {
		return fmt.Errorf("%w: missing account code column", apperrors.ErrSchema)
	}
	if !c.EndBalance && !(c.EndDebit && c.EndCredit) {
		return fmt.Errorf("%w: missing ending balance columns", apperrors.ErrSchema)
	}
	return nil
}

// Row is one trial-balance row with its fields already resolved and typed.
type Row struct {
	Code string
	Name string
	Type string

	EndBalance decimal.NullDecimal
	EndDebit   decimal.NullDecimal
	EndCredit  decimal.NullDecimal

	BeginBalance decimal.NullDecimal
	BeginDebit   decimal.NullDecimal
	BeginCredit  decimal.NullDecimal

	Direction int // +1 debit, -1 credit, 0 unknown
}

// Input is everything the registry needs from a trial-balance reader.
type Input struct {
	Columns Columns
	Rows    []Row
}

// Registry is the in-memory trial balance for one run. It is read-only once
// loaded.
type Registry struct {
	accounts []model.Account
	byCode   map[string]int
}

// Load builds a Registry from resolved rows. Rows with an empty code or no
// ending balance are skipped; rows sharing a code are merged by summation.
func Load(in Input) (*Registry, error) {
	if err := in.Columns.Validate(); err != nil {
		return nil, err
	}

	endPair := in.Columns.EndDebit && in.Columns.EndCredit
	beginPair := in.Columns.BeginDebit && in.Columns.BeginCredit

	r := &Registry{byCode: make(map[string]int)}
	for _, row := range in.Rows {
		code := strings.TrimSpace(row.Code)
		if code == "" {
			continue
		}
		end := resolveBalance(row.EndBalance, row.EndDebit, row.EndCredit, in.Columns.EndBalance, endPair, row.Direction)
		if !end.Valid {
			continue
		}
		begin := resolveBalance(row.BeginBalance, row.BeginDebit, row.BeginCredit, in.Columns.BeginBalance, beginPair, row.Direction)
		r.merge(model.Account{
			Code:         code,
			Name:         strings.TrimSpace(row.Name),
			Type:         strings.TrimSpace(row.Type),
			EndBalance:   end.Decimal,
			BeginBalance: begin,
		})
	}

	if len(r.accounts) == 0 {
		return nil, fmt.Errorf("%w: no usable account rows", apperrors.ErrSchema)
	}
	return r, nil
}

// NewRegistry builds a Registry directly from accounts, merging duplicates.
func NewRegistry(accounts []model.Account) *Registry {
	r := &Registry{byCode: make(map[string]int, len(accounts))}
	for _, a := range accounts {
		r.merge(a)
	}
	return r
}

func (r *Registry) merge(a model.Account) {
	i, ok := r.byCode[a.Code]
	if !ok {
		r.byCode[a.Code] = len(r.accounts)
		r.accounts = append(r.accounts, a)
		return
	}
	cur := &r.accounts[i]
	cur.EndBalance = cur.EndBalance.Add(a.EndBalance)
	if a.BeginBalance.Valid {
		if cur.BeginBalance.Valid {
			cur.BeginBalance.Decimal = cur.BeginBalance.Decimal.Add(a.BeginBalance.Decimal)
		} else {
			cur.BeginBalance = a.BeginBalance
		}
	}
	if a.Name != "" {
		cur.Name = a.Name
	}
	if cur.Type == "" {
		cur.Type = a.Type
	}
}

// resolveBalance picks the balance representation of one row. A direct
// balance wins over a debit/credit pair; the direction sign only applies to
// non-negative direct balances. An empty direct cell falls back to the pair.
func resolveBalance(direct, debit, credit decimal.NullDecimal, hasDirect, hasPair bool, direction int) decimal.NullDecimal {
	if hasDirect && direct.Valid {
		v := direct.Decimal
		if direction != 0 && !v.IsNegative() {
			v = v.Mul(decimal.NewFromInt(int64(direction)))
		}
		return decimal.NullDecimal{Decimal: v, Valid: true}
	}
	if hasPair && (debit.Valid || credit.Valid) {
		return decimal.NullDecimal{Decimal: debit.Decimal.Sub(credit.Decimal), Valid: true}
	}
	return decimal.NullDecimal{}
}

// Accounts returns all accounts in first-seen order.
func (r *Registry) Accounts() []model.Account {
	out := make([]model.Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// Codes returns all account codes in first-seen order.
func (r *Registry) Codes() []string {
	codes := make([]string, len(r.accounts))
	for i, a := range r.accounts {
		codes[i] = a.Code
	}
	return codes
}

// Get returns an account by code.
func (r *Registry) Get(code string) (model.Account, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return model.Account{}, false
	}
	return r.accounts[i], true
}

// Exists reports whether an account code exists.
func (r *Registry) Exists(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

// Balance returns the ending balance of code, zero when unknown.
func (r *Registry) Balance(code string) decimal.Decimal {
	if i, ok := r.byCode[code]; ok {
		return r.accounts[i].EndBalance
	}
	return decimal.Zero
}

// Total returns the sum of all ending balances. A clean trial balance nets to
// zero.
func (r *Registry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.accounts {
		total = total.Add(a.EndBalance)
	}
	return total
}

// Len returns the number of distinct accounts.
func (r *Registry) Len() int {
	return len(r.accounts)
}
