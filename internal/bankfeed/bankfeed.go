// Package bankfeed abstracts third-party bank aggregators that push
// transactions for premium users. Only a no-op connector ships today.
package bankfeed

import (
	"context"

	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
)

// Connector fetches transactions from an external bank feed.
type Connector interface {
	// FetchTransactions returns the transactions posted since the last sync.
	FetchTransactions(ctx context.Context, user string) ([]ledger.Transaction, error)
}

// NoopConnector returns no transactions. It stands in until a real
// aggregator integration lands.
type NoopConnector struct{}

func NewNoopConnector() *NoopConnector {
	return &NoopConnector{}
}

func (c *NoopConnector) FetchTransactions(ctx context.Context, user string) ([]ledger.Transaction, error) {
	return nil, nil
}
