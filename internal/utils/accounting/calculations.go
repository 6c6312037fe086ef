package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// SumSides totals the debit and credit sides of a set of lines.
func SumSides(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.Side == domain.Debit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}
	return debits, credits
}

// ValidateBalanced checks the double-entry invariant sum(debits) == sum(credits)
// and that every amount is strictly positive.
func ValidateBalanced(lines []domain.JournalLine) error {
	for _, l := range lines {
		if l.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s", l.AccountCode)
		}
	}
	debits, credits := SumSides(lines)
	if !debits.Equal(credits) {
		return fmt.Errorf("debits %s != credits %s (delta %s)",
			debits.String(), credits.String(), debits.Sub(credits).String())
	}
	return nil
}
