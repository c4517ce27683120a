package model

// Severity grades a consistency check result.
type Severity string

const (
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Check identifiers carried on every CheckResult.
const (
	CheckTrialBalanceZero = "tb_zero_sum"
	CheckBalanceIdentity  = "bs_identity"
	CheckCashRollForward  = "cash_roll_forward"
	CheckMissingAccounts  = "missing_accounts"
	CheckUnmapped         = "unmapped_accounts"
	CheckUnclassified     = "unclassified_accounts"
	CheckIncomeSections   = "is_sections"
)

// CheckResult is one finding of the consistency checker.
type CheckResult struct {
	Severity Severity
	Check    string
	Message  string
}

// HasErrors reports whether any result has ERROR severity.
func HasErrors(results []CheckResult) bool {
	for _, r := range results {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}
