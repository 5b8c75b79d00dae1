package services

import (
	"context"
	"testing"
	"time"

	"github.com/PhantomExMachina/Budget-Tool/internal/cache"
	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
)

func seedLedger(t *testing.T, svc *LedgerService, user string) {
	t.Helper()
	ctx := context.Background()
	if err := svc.storage.CreateCategory(ctx, "salary"); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if err := svc.storage.CreateCategory(ctx, "rent"); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if err := svc.AddIncome(ctx, user, "salary", 3000, "pay"); err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}
	if _, err := svc.AddExpense(ctx, user, "rent", 2900, "", ""); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
}

func TestForecastProjectsAccounts(t *testing.T) {
	repo := newTestStorage(t)
	ledgerSvc := NewLedgerService(repo)
	forecastSvc := NewForecastService(repo, cache.New[ledger.Totals](16, time.Minute))
	ctx := context.Background()

	seedLedger(t, ledgerSvc, "alice")

	accounts := []ledger.Account{
		{Name: "checking", Balance: 3000, Type: ledger.TypeBank},
		{Name: "savings", Balance: 1000, Type: ledger.TypeBank},
		{Name: "car loan", Balance: 1200, MonthlyPayment: 150, Type: ledger.TypeLoan},
	}
	for i, a := range accounts {
		if err := repo.UpsertAccount(ctx, a); err != nil {
			t.Fatalf("UpsertAccount() %d error = %v", i, err)
		}
	}

	result, err := forecastSvc.Forecast(ctx, "alice", 4)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if result.Net != 100 {
		t.Fatalf("Forecast() net = %v, want 100", result.Net)
	}
	if len(result.Assets) != 2 || len(result.Debts) != 1 {
		t.Fatalf("Forecast() split = %d assets %d debts, want 2 and 1", len(result.Assets), len(result.Debts))
	}

	// Net of 100 over 4 months is 400, split 3:1 across bank balances.
	for _, p := range result.Assets {
		switch p.Name {
		case "checking":
			if p.Projected != 3300 {
				t.Errorf("checking projected = %v, want 3300", p.Projected)
			}
		case "savings":
			if p.Projected != 1100 {
				t.Errorf("savings projected = %v, want 1100", p.Projected)
			}
		}
	}
	if got := result.Debts[0].Projected; got != 600 {
		t.Errorf("car loan projected = %v, want 600", got)
	}
}

func TestForecastRejectsNonPositiveHorizon(t *testing.T) {
	repo := newTestStorage(t)
	forecastSvc := NewForecastService(repo, nil)

	if _, err := forecastSvc.Forecast(context.Background(), "alice", 0); err == nil {
		t.Error("Forecast() with zero months should fail")
	}
}

func TestForecastUsesCachedTotals(t *testing.T) {
	repo := newTestStorage(t)
	ledgerSvc := NewLedgerService(repo)
	forecastSvc := NewForecastService(repo, cache.New[ledger.Totals](16, time.Minute))
	ctx := context.Background()

	seedLedger(t, ledgerSvc, "alice")

	first, err := forecastSvc.Forecast(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	// A new entry is invisible until the cache entry is dropped.
	if err := ledgerSvc.AddIncome(ctx, "alice", "salary", 500, "bonus"); err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}
	cached, err := forecastSvc.Forecast(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("Forecast() cached error = %v", err)
	}
	if cached.Net != first.Net {
		t.Errorf("cached net = %v, want %v", cached.Net, first.Net)
	}

	forecastSvc.InvalidateTotals("alice")
	fresh, err := forecastSvc.Forecast(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("Forecast() after invalidate error = %v", err)
	}
	if fresh.Net != first.Net+500 {
		t.Errorf("fresh net = %v, want %v", fresh.Net, first.Net+500)
	}
}

func TestBankOutlook(t *testing.T) {
	repo := newTestStorage(t)
	ledgerSvc := NewLedgerService(repo)
	forecastSvc := NewForecastService(repo, nil)
	ctx := context.Background()

	if err := repo.UpsertAccount(ctx, ledger.Account{Name: "checking", Balance: 1000, Type: ledger.TypeBank}); err != nil {
		t.Fatalf("UpsertAccount() error = %v", err)
	}
	if err := repo.CreateCategory(ctx, "rent"); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if _, err := ledgerSvc.AddExpense(ctx, "alice", "rent", 250, "", ""); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	months, willGoNegative, err := forecastSvc.BankOutlook(ctx, "alice")
	if err != nil {
		t.Fatalf("BankOutlook() error = %v", err)
	}
	if !willGoNegative || months != 4 {
		t.Errorf("BankOutlook() = %d %v, want 4 true", months, willGoNegative)
	}
}
