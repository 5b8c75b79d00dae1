package services

import (
	"context"
	"fmt"

	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
	"github.com/PhantomExMachina/Budget-Tool/internal/storage"
)

// LedgerService handles manual income and expense bookkeeping plus the
// spending goals attached to categories.
type LedgerService struct {
	storage *storage.SQLiteRepository
}

func NewLedgerService(storage *storage.SQLiteRepository) *LedgerService {
	return &LedgerService{storage: storage}
}

// GoalWarning reports a category goal that the latest expense pushed over.
type GoalWarning struct {
	Exceeded bool
	Category string
	Goal     float64
	Spent    float64
}

// AddIncome records an income entry for a category.
func (s *LedgerService) AddIncome(ctx context.Context, user, category string, amount float64, description string) error {
	return s.addEntry(ctx, user, category, amount, ledger.Income, description, "")
}

// AddExpense records an expense entry and checks the category goal. The
// returned warning is set when the category's spending now exceeds its goal.
func (s *LedgerService) AddExpense(ctx context.Context, user, category string, amount float64, description, itemName string) (GoalWarning, error) {
	userID, categoryID, err := s.resolve(ctx, user, category)
	if err != nil {
		return GoalWarning{}, err
	}

	if amount <= 0 {
		return GoalWarning{}, ledger.ErrInvalidAmount
	}
	if err := s.storage.AddEntry(ctx, userID, categoryID, amount, ledger.Expense, description, itemName); err != nil {
		return GoalWarning{}, err
	}

	goal, hasGoal, err := s.storage.Goal(ctx, userID, categoryID)
	if err != nil {
		return GoalWarning{}, fmt.Errorf("check goal: %w", err)
	}
	if !hasGoal {
		return GoalWarning{}, nil
	}

	totals, err := s.storage.CategoryTotals(ctx, userID, categoryID)
	if err != nil {
		return GoalWarning{}, fmt.Errorf("check category spending: %w", err)
	}
	if totals.Expense > goal {
		return GoalWarning{
			Exceeded: true,
			Category: category,
			Goal:     goal,
			Spent:    totals.Expense,
		}, nil
	}
	return GoalWarning{}, nil
}

// SetGoal sets the monthly spending goal for a category.
func (s *LedgerService) SetGoal(ctx context.Context, user, category string, amount float64) error {
	userID, categoryID, err := s.resolve(ctx, user, category)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	return s.storage.SetGoal(ctx, userID, categoryID, amount)
}

// Totals returns the user's overall income and expense sums.
func (s *LedgerService) Totals(ctx context.Context, user string) (ledger.Totals, error) {
	userID, err := s.storage.EnsureUser(ctx, user)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("resolve user: %w", err)
	}
	return s.storage.Totals(ctx, userID)
}

// History returns the most recent entries, optionally limited to a category.
func (s *LedgerService) History(ctx context.Context, user, category string, limit int) ([]storage.LedgerEntry, error) {
	userID, err := s.storage.EnsureUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	var categoryID *int64
	if category != "" {
		id, err := s.storage.CategoryID(ctx, category)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}
	if limit <= 0 {
		limit = 20
	}
	return s.storage.ListEntries(ctx, userID, categoryID, limit)
}

func (s *LedgerService) addEntry(ctx context.Context, user, category string, amount float64, kind, description, itemName string) error {
	userID, categoryID, err := s.resolve(ctx, user, category)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	return s.storage.AddEntry(ctx, userID, categoryID, amount, kind, description, itemName)
}

func (s *LedgerService) resolve(ctx context.Context, user, category string) (userID, categoryID int64, err error) {
	userID, err = s.storage.EnsureUser(ctx, user)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve user: %w", err)
	}
	categoryID, err = s.storage.CategoryID(ctx, category)
	if err != nil {
		return 0, 0, err
	}
	return userID, categoryID, nil
}
