package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/PhantomExMachina/Budget-Tool/internal/amortize"
	"github.com/PhantomExMachina/Budget-Tool/internal/cache"
	"github.com/PhantomExMachina/Budget-Tool/internal/forecast"
	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
	"github.com/PhantomExMachina/Budget-Tool/internal/storage"
)

// ForecastService projects account balances forward from the user's current
// monthly net. Ledger totals are cached briefly since balance and forecast
// views tend to be requested together.
type ForecastService struct {
	storage *storage.SQLiteRepository
	totals  *cache.TTLCache[ledger.Totals]
}

func NewForecastService(storage *storage.SQLiteRepository, totalsCache *cache.TTLCache[ledger.Totals]) *ForecastService {
	return &ForecastService{
		storage: storage,
		totals:  totalsCache,
	}
}

// ForecastResult holds the projected balances for one horizon.
type ForecastResult struct {
	Months int
	Net    float64
	Assets []forecast.Projection
	Debts  []forecast.Projection
}

// Forecast loads accounts and ledger totals, then projects every account
// months ahead.
func (s *ForecastService) Forecast(ctx context.Context, user string, months int) (ForecastResult, error) {
	if months <= 0 {
		return ForecastResult{}, fmt.Errorf("forecast horizon must be positive, got %d", months)
	}

	userID, err := s.storage.EnsureUser(ctx, user)
	if err != nil {
		return ForecastResult{}, fmt.Errorf("resolve user: %w", err)
	}

	var (
		accounts []ledger.Account
		totals   ledger.Totals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.storage.ListAccounts(gctx)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		totals, err = s.userTotals(gctx, user, userID)
		if err != nil {
			return fmt.Errorf("load totals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ForecastResult{}, err
	}

	net := totals.Net()
	assets, debts := forecast.Project(accounts, net, months)

	return ForecastResult{
		Months: months,
		Net:    net,
		Assets: assets,
		Debts:  debts,
	}, nil
}

// BankOutlook reports how many months until the combined bank balance goes
// negative at the current net. ok=false means it never does.
func (s *ForecastService) BankOutlook(ctx context.Context, user string) (months int, ok bool, err error) {
	userID, err := s.storage.EnsureUser(ctx, user)
	if err != nil {
		return 0, false, fmt.Errorf("resolve user: %w", err)
	}

	bank, err := s.storage.TotalBankBalance(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("load bank balance: %w", err)
	}
	totals, err := s.userTotals(ctx, user, userID)
	if err != nil {
		return 0, false, fmt.Errorf("load totals: %w", err)
	}

	months, willGoNegative := amortize.MonthsUntilNegative(bank, totals.Net())
	return months, willGoNegative, nil
}

func (s *ForecastService) userTotals(ctx context.Context, user string, userID int64) (ledger.Totals, error) {
	if s.totals != nil {
		if cached, ok := s.totals.Get(user); ok {
			return cached, nil
		}
	}

	totals, err := s.storage.Totals(ctx, userID)
	if err != nil {
		return ledger.Totals{}, err
	}
	if s.totals != nil {
		s.totals.Set(user, totals)
	}
	return totals, nil
}

// InvalidateTotals drops the cached totals for a user after a write.
func (s *ForecastService) InvalidateTotals(user string) {
	if s.totals != nil {
		s.totals.Delete(user)
	}
}
