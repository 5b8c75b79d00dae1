// Package forecast combines per-account projections into an asset/debt
// summary for a horizon of whole months.
package forecast

import (
	"fmt"

	"github.com/PhantomExMachina/Budget-Tool/internal/amortize"
	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
)

// Projection is the projected position of one account after the horizon.
type Projection struct {
	Name      string
	Type      string
	Current   float64
	Projected float64
}

// Change is the signed movement over the horizon.
func (p Projection) Change() float64 {
	return p.Projected - p.Current
}

// Project forecasts every account months ahead and partitions the results
// into assets and debts. Input order is preserved within each partition.
//
// Bank accounts are not interest-bearing: instead of the compound formula,
// the aggregate net cash flow (income minus expense per month) is spread
// across them in proportion to current balance. When the aggregate bank
// balance is zero the flow is split equally. Every other account type runs
// through the amortization simulation, negative projections included.
func Project(accounts []ledger.Account, net float64, months int) (assets, debts []Projection) {
	var bankTotal float64
	var banks int
	for _, a := range accounts {
		if a.Type == ledger.TypeBank {
			bankTotal += a.Balance
			banks++
		}
	}

	for _, a := range accounts {
		p := Projection{Name: a.Name, Type: a.Type, Current: a.Balance}
		switch {
		case a.Type == ledger.TypeBank:
			p.Projected = a.Balance + net*float64(months)*bankShare(a.Balance, bankTotal, banks)
		default:
			p.Projected = amortize.BalanceAfterMonths(a.Balance, a.MonthlyPayment, a.APR, a.Escrow, a.Insurance, a.Tax, months)
		}
		if a.IsAsset() {
			assets = append(assets, p)
		} else {
			debts = append(debts, p)
		}
	}
	return assets, debts
}

// bankShare is the fraction of the net flow attributed to one bank account.
func bankShare(balance, total float64, banks int) float64 {
	if total == 0 {
		return 1 / float64(banks)
	}
	return balance / total
}

// MonthsLabel formats a horizon for display, e.g. "1 month" or "6 months".
func MonthsLabel(months int) string {
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}
