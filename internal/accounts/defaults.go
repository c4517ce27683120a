package accounts

// Header aliases for trial-balance sheets, most specific first.
var (
	CodeHeaders = []string{"account_code", "account", "code", "科目编码", "科目代码", "科目编号"}
	NameHeaders = []string{"account_name", "name", "description", "科目名称", "科目", "科目全名"}
	TypeHeaders = []string{"account_type", "科目类型", "科目类别", "科目性质"}

	EndBalanceHeaders = []string{"ending_balance", "期末余额", "余额", "本币余额", "期末余额本币"}
	EndDebitHeaders   = []string{"ending_debit", "期末借方余额", "期末借方余额本币", "期末借方", "借方余额", "借方期末余额"}
	EndCreditHeaders  = []string{"ending_credit", "期末贷方余额", "期末贷方余额本币", "期末贷方", "贷方余额", "贷方期末余额"}

	BeginBalanceHeaders = []string{"beginning_balance", "期初余额", "期初余额本币"}
	BeginDebitHeaders   = []string{"beginning_debit", "期初借方余额", "期初借方余额本币", "期初借方", "借方期初余额"}
	BeginCreditHeaders  = []string{"beginning_credit", "期初贷方余额", "期初贷方余额本币", "期初贷方", "贷方期初余额"}

	DirectionHeaders = []string{"direction", "余额方向", "借贷方向", "方向", "方向借贷"}
)
