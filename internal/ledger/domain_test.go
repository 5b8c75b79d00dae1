package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestOneTimeCandidateKey(t *testing.T) {
	base := OneTimeCandidate{
		Description: "Car Repair",
		Amount:      450.00,
		Date:        time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	tests := []struct {
		name  string
		other OneTimeCandidate
		same  bool
	}{
		{
			name:  "identical",
			other: base,
			same:  true,
		},
		{
			name: "different case",
			other: OneTimeCandidate{
				Description: "CAR REPAIR", Amount: 450.00, Date: base.Date,
			},
			same: true,
		},
		{
			name: "same day different time",
			other: OneTimeCandidate{
				Description: "Car Repair", Amount: 450.00,
				Date: time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC),
			},
			same: true,
		},
		{
			name: "sub-cent rounding",
			other: OneTimeCandidate{
				Description: "Car Repair", Amount: 450.001, Date: base.Date,
			},
			same: true,
		},
		{
			name: "different amount",
			other: OneTimeCandidate{
				Description: "Car Repair", Amount: 450.01, Date: base.Date,
			},
			same: false,
		},
		{
			name: "different day",
			other: OneTimeCandidate{
				Description: "Car Repair", Amount: 450.00,
				Date: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
			},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.other.Key() == base.Key()
			if got != tt.same {
				t.Errorf("Key() equality = %v, want %v (%q vs %q)", got, tt.same, tt.other.Key(), base.Key())
			}
		})
	}
}

func TestAccountPrincipalPayment(t *testing.T) {
	a := Account{MonthlyPayment: 2000, Escrow: 200, Insurance: 100, Tax: 150}
	if got := a.PrincipalPayment(); got != 1550 {
		t.Errorf("PrincipalPayment() = %v, want 1550", got)
	}

	// Carrying costs swallowing the payment is a valid state.
	a = Account{MonthlyPayment: 400, Escrow: 200, Insurance: 150, Tax: 150}
	if got := a.PrincipalPayment(); got != -100 {
		t.Errorf("PrincipalPayment() = %v, want -100", got)
	}
}

func TestAccountIsAsset(t *testing.T) {
	tests := []struct {
		accountType string
		want        bool
	}{
		{TypeBank, true},
		{TypeCrypto, true},
		{TypeStock, true},
		{TypeCreditCard, false},
		{TypeLoan, false},
		{TypeMortgage, false},
		{TypeOther, false},
		{"", false},
	}
	for _, tt := range tests {
		a := Account{Type: tt.accountType}
		if got := a.IsAsset(); got != tt.want {
			t.Errorf("IsAsset() for type %q = %v, want %v", tt.accountType, got, tt.want)
		}
	}
}

func TestTotalsNet(t *testing.T) {
	totals := Totals{Income: 3000, Expense: 2900}
	if got := totals.Net(); got != 100 {
		t.Errorf("Net() = %v, want 100", got)
	}
}

func TestValidateKind(t *testing.T) {
	if err := ValidateKind(Income); err != nil {
		t.Errorf("ValidateKind(income) error = %v", err)
	}
	if err := ValidateKind(Expense); err != nil {
		t.Errorf("ValidateKind(expense) error = %v", err)
	}
	if err := ValidateKind("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("ValidateKind(transfer) error = %v, want ErrInvalidType", err)
	}
}

func TestValidation(t *testing.T) {
	if err := (Transaction{Description: "  "}).Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("Transaction.Validate() error = %v, want ErrEmptyDescription", err)
	}
	if err := (Account{Name: ""}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Account.Validate() error = %v, want ErrEmptyName", err)
	}
	if err := (Account{Name: "checking"}).Validate(); err != nil {
		t.Errorf("Account.Validate() error = %v, want nil", err)
	}
}
