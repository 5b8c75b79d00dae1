// Package storage persists the budgeting ledger: users, categories,
// transactions, goals, accounts, and the recurring/one-time entries derived
// from statement scans. The projection engine itself never touches this
// package; callers load plain records here and hand them to the engine.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"

	_ "modernc.org/sqlite"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicate        = errors.New("already exists")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnsureUser creates the user if missing and returns its id either way.
func (r *SQLiteRepository) EnsureUser(ctx context.Context, username string) (int64, error) {
	_, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO users(username) VALUES(?)", username)
	if err != nil {
		return 0, fmt.Errorf("ensure user: %w", err)
	}
	return r.UserID(ctx, username)
}

func (r *SQLiteRepository) UserID(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM users WHERE username=?", username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return 0, fmt.Errorf("get user id: %w", err)
	}
	return id, nil
}

// CreateCategory adds a spending category. ErrDuplicate when it exists.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO categories(name) VALUES(?)", name)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: category %s", ErrDuplicate, name)
	}
	return nil
}

// DeleteCategory removes a category and its transactions.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) error {
	id, err := r.CategoryID(ctx, name)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE category_id=?", id); err != nil {
		return fmt.Errorf("delete category transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM goals WHERE category_id=?", id); err != nil {
		return fmt.Errorf("delete category goals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// RenameCategory renames a category while preserving its transactions.
func (r *SQLiteRepository) RenameCategory(ctx context.Context, oldName, newName string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE categories SET name=? WHERE name=?", newName, oldName)
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: category %s", ErrCategoryNotFound, oldName)
	}
	return nil
}

func (r *SQLiteRepository) CategoryID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM categories WHERE name=?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("get category id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LedgerEntry is one stored income/expense row joined with its category.
type LedgerEntry struct {
	Category    string
	Amount      float64
	Kind        string
	Description string
	ItemName    string
	CreatedAt   time.Time
}

// AddEntry records an income or expense transaction for a user.
func (r *SQLiteRepository) AddEntry(ctx context.Context, userID, categoryID int64, amount float64, kind, description, itemName string) error {
	if err := ledger.ValidateKind(kind); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions(category_id, user_id, amount, type, description, item_name, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		categoryID, userID, amount, kind, description, itemName, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add entry: %w", err)
	}
	return nil
}

// ListEntries returns the most recent entries, optionally restricted to one
// category.
func (r *SQLiteRepository) ListEntries(ctx context.Context, userID int64, categoryID *int64, limit int) ([]LedgerEntry, error) {
	query := `SELECT c.name, t.amount, t.type, COALESCE(t.description,''), COALESCE(t.item_name,''), t.created_at
		FROM transactions t JOIN categories c ON t.category_id = c.id
		WHERE t.user_id = ?`
	args := []any{userID}
	if categoryID != nil {
		query += " AND t.category_id = ?"
		args = append(args, *categoryID)
	}
	query += " ORDER BY t.created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var created string
		if err := rows.Scan(&e.Category, &e.Amount, &e.Kind, &e.Description, &e.ItemName, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Totals sums a user's income and expense entries.
func (r *SQLiteRepository) Totals(ctx context.Context, userID int64) (ledger.Totals, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT type, COALESCE(SUM(amount),0) FROM transactions WHERE user_id=? GROUP BY type", userID)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var totals ledger.Totals
	for rows.Next() {
		var kind string
		var sum float64
		if err := rows.Scan(&kind, &sum); err != nil {
			return ledger.Totals{}, fmt.Errorf("scan totals: %w", err)
		}
		switch kind {
		case ledger.Income:
			totals.Income = sum
		case ledger.Expense:
			totals.Expense = sum
		}
	}
	return totals, rows.Err()
}

// CategoryTotals sums one category's income and expense for a user.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, userID, categoryID int64) (ledger.Totals, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT type, COALESCE(SUM(amount),0) FROM transactions WHERE user_id=? AND category_id=? GROUP BY type",
		userID, categoryID)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var totals ledger.Totals
	for rows.Next() {
		var kind string
		var sum float64
		if err := rows.Scan(&kind, &sum); err != nil {
			return ledger.Totals{}, fmt.Errorf("scan category totals: %w", err)
		}
		switch kind {
		case ledger.Income:
			totals.Income = sum
		case ledger.Expense:
			totals.Expense = sum
		}
	}
	return totals, rows.Err()
}

// SetGoal upserts a spending goal for a category and user.
func (r *SQLiteRepository) SetGoal(ctx context.Context, userID, categoryID int64, amount float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals(category_id, user_id, amount) VALUES(?,?,?)
		 ON CONFLICT(category_id, user_id) DO UPDATE SET amount=excluded.amount`,
		categoryID, userID, amount)
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	return nil
}

// Goal returns the goal amount for a category, ok=false when unset.
func (r *SQLiteRepository) Goal(ctx context.Context, userID, categoryID int64) (float64, bool, error) {
	var amount float64
	err := r.db.QueryRowContext(ctx,
		"SELECT amount FROM goals WHERE category_id=? AND user_id=?", categoryID, userID).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get goal: %w", err)
	}
	return amount, true, nil
}

// UpsertAccount adds or replaces an account's payment terms.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a ledger.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts(name, balance, monthly_payment, type, apr, escrow, insurance, tax)
		 VALUES(?,?,?,?,?,?,?,?)
		 ON CONFLICT(name) DO UPDATE SET balance=excluded.balance,
		   monthly_payment=excluded.monthly_payment, type=excluded.type,
		   apr=excluded.apr, escrow=excluded.escrow, insurance=excluded.insurance, tax=excluded.tax`,
		a.Name, a.Balance, a.MonthlyPayment, a.Type, a.APR, a.Escrow, a.Insurance, a.Tax)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// DeleteAccount removes an account by name.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE name=?", name)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return nil
}

// ListAccounts returns all accounts ordered by name.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, balance, monthly_payment, type, apr, escrow, insurance, tax
		 FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.Name, &a.Balance, &a.MonthlyPayment, &a.Type, &a.APR, &a.Escrow, &a.Insurance, &a.Tax); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// TotalBankBalance sums the balances of all Bank accounts.
func (r *SQLiteRepository) TotalBankBalance(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(balance),0) FROM accounts WHERE type=?", ledger.TypeBank).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total bank balance: %w", err)
	}
	return total, nil
}

// UpsertRecurring stores a detected recurring charge, replacing the averaged
// amount when the merchant is already tracked.
func (r *SQLiteRepository) UpsertRecurring(ctx context.Context, userID int64, c ledger.RecurringCandidate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_expenses(user_id, description, amount, category, created_at)
		 VALUES(?,?,?,?,?)
		 ON CONFLICT(user_id, description) DO UPDATE SET amount=excluded.amount, category=excluded.category`,
		userID, c.Description, c.Amount, c.Category, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert recurring expense: %w", err)
	}
	return nil
}

// InsertOneTime stores a one-time candidate. The (description, amount, date)
// uniqueness absorbs re-scans of overlapping windows; inserted reports
// whether this call actually added a row.
func (r *SQLiteRepository) InsertOneTime(ctx context.Context, userID int64, c ledger.OneTimeCandidate) (inserted bool, err error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO one_time_expenses(user_id, description, amount, date, category, created_at)
		 VALUES(?,?,?,?,?,?)`,
		userID, c.Description, c.Amount, c.Date.Format("2006-01-02"), c.Category, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert one-time expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListRecurring returns the tracked recurring charges for a user.
func (r *SQLiteRepository) ListRecurring(ctx context.Context, userID int64) ([]ledger.RecurringCandidate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT description, amount, category FROM recurring_expenses WHERE user_id=? ORDER BY description", userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()

	var out []ledger.RecurringCandidate
	for rows.Next() {
		var c ledger.RecurringCandidate
		if err := rows.Scan(&c.Description, &c.Amount, &c.Category); err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListOneTime returns the stored one-time charges for a user.
func (r *SQLiteRepository) ListOneTime(ctx context.Context, userID int64) ([]ledger.OneTimeCandidate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT description, amount, date, category FROM one_time_expenses WHERE user_id=? ORDER BY date, description", userID)
	if err != nil {
		return nil, fmt.Errorf("list one-time expenses: %w", err)
	}
	defer rows.Close()

	var out []ledger.OneTimeCandidate
	for rows.Next() {
		var c ledger.OneTimeCandidate
		var date string
		if err := rows.Scan(&c.Description, &c.Amount, &date, &c.Category); err != nil {
			return nil, fmt.Errorf("scan one-time expense: %w", err)
		}
		if t, err := time.Parse("2006-01-02", date); err == nil {
			c.Date = t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ScanRun records one completed statement scan.
type ScanRun struct {
	ID           string
	Periods      int
	RecurringNew int
	OneTimeNew   int
	CreatedAt    time.Time
}

// RecordScanRun persists the outcome of a scan for audit.
func (r *SQLiteRepository) RecordScanRun(ctx context.Context, userID int64, run ScanRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scan_runs(id, user_id, periods, recurring_found, one_time_found, created_at)
		 VALUES(?,?,?,?,?,?)`,
		run.ID, userID, run.Periods, run.RecurringNew, run.OneTimeNew, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record scan run: %w", err)
	}
	return nil
}

// SetSubscription upserts a user's subscription tier.
func (r *SQLiteRepository) SetSubscription(ctx context.Context, userID int64, tier string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions(user_id, tier) VALUES(?,?)
		 ON CONFLICT(user_id) DO UPDATE SET tier=excluded.tier`,
		userID, tier)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	return nil
}

// Subscription returns a user's tier and last sync time. ok=false when the
// user has no subscription row.
func (r *SQLiteRepository) Subscription(ctx context.Context, userID int64) (tier string, lastSync time.Time, ok bool, err error) {
	var last sql.NullString
	err = r.db.QueryRowContext(ctx,
		"SELECT tier, last_sync FROM subscriptions WHERE user_id=?", userID).Scan(&tier, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("get subscription: %w", err)
	}
	if last.Valid {
		if t, perr := time.Parse(time.RFC3339, last.String); perr == nil {
			lastSync = t
		}
	}
	return tier, lastSync, true, nil
}

// RecordSync stamps the user's last bank-feed sync at now.
func (r *SQLiteRepository) RecordSync(ctx context.Context, userID int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE subscriptions SET last_sync=? WHERE user_id=?",
		now.UTC().Format(time.RFC3339), userID)
	if err != nil {
		return fmt.Errorf("record sync: %w", err)
	}
	return nil
}
