// Package amortize computes loan payoff horizons and future balance
// projections under monthly compound interest. "Never pays off" is a regular
// result, not an error: callers must distinguish it from 0 months (already
// paid off).
package amortize

import "math"

// MaxPayoffMonths caps the payoff simulation. The convergence guard should
// always terminate the loop first; the cap is a safety bound on top of it.
const MaxPayoffMonths = 10000

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(apr float64) float64 {
	return apr / 12 / 100
}

// MonthsToPayoff estimates how many months of payments retire the balance.
// The balance sign is ignored. ok is false when the account never pays off:
// either the principal portion of the payment is not positive, or interest
// outpaces the payment so the balance cannot shrink.
func MonthsToPayoff(balance, payment, apr, escrow, insurance, tax float64) (months int, ok bool) {
	balance = math.Abs(balance)
	principal := payment - escrow - insurance - tax
	if principal <= 0 {
		return 0, false
	}
	if balance == 0 {
		return 0, true
	}
	if apr <= 0 {
		// Linear division; a payment that exactly divides the balance is not
		// charged an extra month.
		return int(math.Ceil(balance / principal)), true
	}

	r := MonthlyRate(apr)
	for months < MaxPayoffMonths {
		next := balance + balance*r - principal
		months++
		if next <= 0 {
			return months, true
		}
		if next >= balance {
			// The payment cannot outpace interest; iterating further would
			// never converge.
			return 0, false
		}
		balance = next
	}
	return 0, false
}

// BalanceAfterMonths simulates exactly months payment steps and returns the
// resulting balance. There is no early termination and no floor: the balance
// may cross zero and keep moving, which lets multi-account aggregation sum
// signed projections.
func BalanceAfterMonths(balance, payment, apr, escrow, insurance, tax float64, months int) float64 {
	principal := payment - escrow - insurance - tax
	r := 0.0
	if apr > 0 {
		r = MonthlyRate(apr)
	}
	for i := 0; i < months; i++ {
		balance = balance*(1+r) - principal
	}
	return balance
}

// MonthsUntilNegative estimates when an aggregate bank balance crosses zero
// under a constant net monthly flow. ok is false when the net flow is
// non-negative and the balance never drains.
func MonthsUntilNegative(bank, net float64) (months int, ok bool) {
	if net >= 0 {
		return 0, false
	}
	if bank <= 0 {
		return 0, true
	}
	return int(math.Ceil(bank / -net)), true
}
