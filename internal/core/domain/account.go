package domain

// AccountClass defines the fundamental accounting classification of an account.
// The class is encoded in the first digit of the account code and is fixed at creation.
type AccountClass string

const (
	Asset     AccountClass = "ASSET"
	Liability AccountClass = "LIABILITY"
	Equity    AccountClass = "EQUITY"
	Income    AccountClass = "INCOME"
	Expense   AccountClass = "EXPENSE"
)

// BalanceSide indicates whether an amount sits on the debit or the credit side.
type BalanceSide string

const (
	Debit  BalanceSide = "DEBIT"
	Credit BalanceSide = "CREDIT"
)

// ClassForDigit maps the leading digit of an account code to its class.
// Returns false for digits outside 1..5.
func ClassForDigit(d byte) (AccountClass, bool) {
	switch d {
	case '1':
		return Asset, true
	case '2':
		return Liability, true
	case '3':
		return Equity, true
	case '4':
		return Income, true
	case '5':
		return Expense, true
	}
	return "", false
}

// NormalBalance returns the side on which accounts of this class normally carry a balance.
func (c AccountClass) NormalBalance() BalanceSide {
	switch c {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// Account represents one node in the chart of accounts.
// Accounts form a lookup tree via ParentCode; the parent owns nothing.
type Account struct {
	Code          string       `json:"code"`          // 5-digit code ABCDE, immutable
	Name          string       `json:"name"`          // Display name
	Class         AccountClass `json:"class"`         // Derived from leading digit at creation
	NormalBalance BalanceSide  `json:"normalBalance"` // Derived from class
	ParentCode    string       `json:"parentCode"`    // Optional reference to a parent account
	IsBankAccount bool         `json:"isBankAccount"` // Eligible for bank reconciliation
	IsActive      bool         `json:"isActive"`      // Deactivated accounts reject new postings
	AuditFields
}

// CategoryCode returns the two-digit major-category segment of the account code.
func (a Account) CategoryCode() string {
	if len(a.Code) != 5 {
		return ""
	}
	return a.Code[1:3]
}
