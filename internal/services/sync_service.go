package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/PhantomExMachina/Budget-Tool/internal/bankfeed"
	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
	"github.com/PhantomExMachina/Budget-Tool/internal/storage"
)

var (
	ErrNoSubscription = errors.New("bank sync requires a subscription")
	ErrSyncCooldown   = errors.New("bank sync already ran recently")
)

// SyncService pulls transactions from a bank feed for subscribed users. The
// cooldown keeps the feed from being polled more than once per window,
// whatever the tier.
type SyncService struct {
	storage   *storage.SQLiteRepository
	connector bankfeed.Connector
	cooldown  time.Duration
	now       func() time.Time
}

func NewSyncService(storage *storage.SQLiteRepository, connector bankfeed.Connector, cooldown time.Duration) *SyncService {
	return &SyncService{
		storage:   storage,
		connector: connector,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Sync fetches new transactions for the user and stores outflows as one-time
// charges. Returns how many were new.
func (s *SyncService) Sync(ctx context.Context, user string) (int, error) {
	userID, err := s.storage.EnsureUser(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("resolve user: %w", err)
	}

	tier, lastSync, ok, err := s.storage.Subscription(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("check subscription: %w", err)
	}
	if !ok || tier == "" {
		return 0, ErrNoSubscription
	}

	now := s.now()
	if !lastSync.IsZero() && now.Sub(lastSync) < s.cooldown {
		return 0, fmt.Errorf("%w: last sync %s", ErrSyncCooldown, lastSync.Format(time.RFC3339))
	}

	txs, err := s.connector.FetchTransactions(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("fetch bank feed: %w", err)
	}

	added := 0
	for _, tx := range txs {
		if tx.Amount >= 0 {
			continue
		}
		candidate := ledger.OneTimeCandidate{
			Description: tx.Description,
			Amount:      math.Abs(tx.Amount),
			Date:        tx.Date,
			Category:    tx.Category,
		}
		inserted, err := s.storage.InsertOneTime(ctx, userID, candidate)
		if err != nil {
			return added, fmt.Errorf("store synced transaction: %w", err)
		}
		if inserted {
			added++
		}
	}

	if err := s.storage.RecordSync(ctx, userID, now); err != nil {
		return added, fmt.Errorf("stamp sync time: %w", err)
	}

	slog.InfoContext(ctx, "Bank feed sync completed",
		"user", user,
		"fetched", len(txs),
		"added", added)

	return added, nil
}
