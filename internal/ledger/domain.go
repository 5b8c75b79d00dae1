package ledger

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Account types as stored on the accounts table. Bank, Crypto Wallet and
// Stock Account are treated as assets by the forecast; everything else is a
// liability.
const (
	TypeBank       = "Bank"
	TypeCrypto     = "Crypto Wallet"
	TypeStock      = "Stock Account"
	TypeCreditCard = "Credit Card"
	TypeLoan       = "Loan"
	TypeMortgage   = "Mortgage"
	TypeOther      = "Other"
)

// Transaction kinds.
const (
	Income  = "income"
	Expense = "expense"
)

type (
	// Transaction is one parsed statement line. Amount keeps the sign
	// convention of the exporting bank; consumers that need an expense
	// magnitude take the absolute value.
	Transaction struct {
		Date        time.Time
		Description string
		Amount      float64
		Category    string
	}

	// RecurringCandidate is a charge matched across every scanned period.
	// Amount is the absolute value of the mean of the matched amounts and is
	// always non-negative.
	RecurringCandidate struct {
		Description string
		Amount      float64
		Category    string
	}

	// OneTimeCandidate is an outflow observed in a single scanned period.
	OneTimeCandidate struct {
		Description string
		Amount      float64 // absolute value
		Date        time.Time
		Category    string
	}

	// Account carries the payment terms the amortization engine works on.
	Account struct {
		Name           string
		Balance        float64
		MonthlyPayment float64
		Type           string
		APR            float64
		Escrow         float64
		Insurance      float64
		Tax            float64
	}

	// Totals summarizes a user's ledger.
	Totals struct {
		Income  float64
		Expense float64
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty account name")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
)

// Key identifies a one-time candidate across repeated scans of overlapping
// statement windows: description, absolute amount and the calendar date with
// no time component.
func (c OneTimeCandidate) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(c.Description))
	b.WriteByte('|')
	b.WriteString(formatAmount(c.Amount))
	b.WriteByte('|')
	b.WriteString(c.Date.Format("2006-01-02"))
	return b.String()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// PrincipalPayment is the portion of the monthly payment that reduces
// balance. It may be zero or negative, which is a valid terminal state for
// the amortization engine, not an error.
func (a Account) PrincipalPayment() float64 {
	return a.MonthlyPayment - a.Escrow - a.Insurance - a.Tax
}

// IsAsset reports whether the account belongs on the asset side of a
// forecast.
func (a Account) IsAsset() bool {
	switch a.Type {
	case TypeBank, TypeCrypto, TypeStock:
		return true
	}
	return false
}

// Net is income minus expense.
func (t Totals) Net() float64 {
	return t.Income - t.Expense
}

// ValidateKind checks an income/expense discriminator.
func ValidateKind(kind string) error {
	if kind != Income && kind != Expense {
		return ErrInvalidType
	}
	return nil
}

// formatAmount renders an amount with two decimals so that key equality
// matches monetary equality at cent precision.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
