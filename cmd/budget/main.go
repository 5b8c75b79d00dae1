package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/PhantomExMachina/Budget-Tool/internal/amortize"
	"github.com/PhantomExMachina/Budget-Tool/internal/bankfeed"
	"github.com/PhantomExMachina/Budget-Tool/internal/cache"
	"github.com/PhantomExMachina/Budget-Tool/internal/cli"
	"github.com/PhantomExMachina/Budget-Tool/internal/config"
	"github.com/PhantomExMachina/Budget-Tool/internal/forecast"
	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
	"github.com/PhantomExMachina/Budget-Tool/internal/log"
	"github.com/PhantomExMachina/Budget-Tool/internal/services"
	"github.com/PhantomExMachina/Budget-Tool/internal/storage"
)

const usage = `usage: budget <command> [flags]

Setup:
  init
  add-user         -name <username>

Ledger:
  add-category     -name <category>
  list-categories
  delete-category  -name <category>
  rename-category  -old <category> -new <category>
  add-income       -category <c> -amount <n> [-description <text>]
  add-expense      -category <c> -amount <n> [-description <text>] [-item <name>]
  set-goal         -category <c> -amount <n>
  balance
  history          [-category <c>] [-limit <n>]

Accounts:
  set-account      -name <a> -balance <n> -type <t> [-payment <n>] [-apr <n>]
                   [-escrow <n>] [-insurance <n>] [-tax <n>]
  delete-account   -name <a>
  list-accounts
  bank-balance

Statements:
  scan             <statement.csv> [<statement.csv> ...]  (oldest period first)
  list-recurring
  list-one-time

Sync:
  subscribe        -tier <tier>
  sync

Projection:
  forecast         -months <n>

Every command accepts -user (default from BUDGET_USER).
`

type app struct {
	cfg      *config.Config
	storage  *storage.SQLiteRepository
	ledger   *services.LedgerService
	forecast *services.ForecastService
	scan     *services.ScanService
	sync     *services.SyncService
}

func main() {
	logger := cli.SetupLogger(log.ComponentCLI)
	cli.LoadEnvFile()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	a := &app{
		cfg:      cfg,
		storage:  repo,
		ledger:   services.NewLedgerService(repo),
		forecast: services.NewForecastService(repo, cache.New[ledger.Totals](cfg.ForecastCacheSize, cfg.ForecastCacheTTL)),
		scan:     services.NewScanService(repo, amqpClient, cfg.ScanTolerance, cfg.ScanDayWindow),
		sync:     services.NewSyncService(repo, bankfeed.NewNoopConnector(), cfg.SyncCooldown),
	}

	ctx := context.Background()
	if err := a.run(ctx, command, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("Command failed", "command", command, log.FieldError, err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "init":
		return a.initDB(ctx, args)
	case "add-user":
		return a.addUser(ctx, args)
	case "add-category":
		return a.addCategory(ctx, args)
	case "list-categories":
		return a.listCategories(ctx, args)
	case "delete-category":
		return a.deleteCategory(ctx, args)
	case "rename-category":
		return a.renameCategory(ctx, args)
	case "add-income":
		return a.addIncome(ctx, args)
	case "add-expense":
		return a.addExpense(ctx, args)
	case "set-goal":
		return a.setGoal(ctx, args)
	case "balance":
		return a.balance(ctx, args)
	case "history":
		return a.history(ctx, args)
	case "set-account":
		return a.setAccount(ctx, args)
	case "delete-account":
		return a.deleteAccount(ctx, args)
	case "list-accounts":
		return a.listAccounts(ctx, args)
	case "bank-balance":
		return a.bankBalance(ctx, args)
	case "scan":
		return a.runScan(ctx, args)
	case "list-recurring":
		return a.listRecurring(ctx, args)
	case "list-one-time":
		return a.listOneTime(ctx, args)
	case "subscribe":
		return a.subscribe(ctx, args)
	case "sync":
		return a.runSync(ctx, args)
	case "forecast":
		return a.runForecast(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func newFlagSet(name string, user *string, defaultUser string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(user, "user", defaultUser, "username")
	return fs
}

func (a *app) initDB(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("init", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Migrations already ran when the repository opened; seed the default user.
	if _, err := a.storage.EnsureUser(ctx, user); err != nil {
		return err
	}
	fmt.Printf("Database ready at %s, user %q created\n", a.cfg.SQLiteDBPath, user)
	return nil
}

func (a *app) addUser(ctx context.Context, args []string) error {
	var user, name string
	fs := newFlagSet("add-user", &user, a.cfg.DefaultUser)
	fs.StringVar(&name, "name", "", "username to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("-name is required")
	}
	if _, err := a.storage.EnsureUser(ctx, name); err != nil {
		return err
	}
	fmt.Printf("User %q created\n", name)
	return nil
}

func (a *app) listCategories(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("list-categories", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	names, err := a.storage.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No categories")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func (a *app) addCategory(ctx context.Context, args []string) error {
	var user, name string
	fs := newFlagSet("add-category", &user, a.cfg.DefaultUser)
	fs.StringVar(&name, "name", "", "category name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("-name is required")
	}
	if err := a.storage.CreateCategory(ctx, name); err != nil {
		return err
	}
	fmt.Printf("Category %q created\n", name)
	return nil
}

func (a *app) deleteCategory(ctx context.Context, args []string) error {
	var user, name string
	fs := newFlagSet("delete-category", &user, a.cfg.DefaultUser)
	fs.StringVar(&name, "name", "", "category name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("-name is required")
	}
	if err := a.storage.DeleteCategory(ctx, name); err != nil {
		return err
	}
	fmt.Printf("Category %q deleted\n", name)
	return nil
}

func (a *app) renameCategory(ctx context.Context, args []string) error {
	var user, oldName, newName string
	fs := newFlagSet("rename-category", &user, a.cfg.DefaultUser)
	fs.StringVar(&oldName, "old", "", "current category name")
	fs.StringVar(&newName, "new", "", "new category name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if oldName == "" || newName == "" {
		return fmt.Errorf("-old and -new are required")
	}
	if err := a.storage.RenameCategory(ctx, oldName, newName); err != nil {
		return err
	}
	fmt.Printf("Category %q renamed to %q\n", oldName, newName)
	return nil
}

func (a *app) addIncome(ctx context.Context, args []string) error {
	var user, category, description string
	var amount float64
	fs := newFlagSet("add-income", &user, a.cfg.DefaultUser)
	fs.StringVar(&category, "category", "", "category name")
	fs.Float64Var(&amount, "amount", 0, "income amount")
	fs.StringVar(&description, "description", "", "optional description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if category == "" {
		return fmt.Errorf("-category is required")
	}
	if err := a.ledger.AddIncome(ctx, user, category, amount, description); err != nil {
		return err
	}
	fmt.Printf("Recorded income of %.2f in %q\n", amount, category)
	return nil
}

func (a *app) addExpense(ctx context.Context, args []string) error {
	var user, category, description, item string
	var amount float64
	fs := newFlagSet("add-expense", &user, a.cfg.DefaultUser)
	fs.StringVar(&category, "category", "", "category name")
	fs.Float64Var(&amount, "amount", 0, "expense amount")
	fs.StringVar(&description, "description", "", "optional description")
	fs.StringVar(&item, "item", "", "optional item name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if category == "" {
		return fmt.Errorf("-category is required")
	}
	warning, err := a.ledger.AddExpense(ctx, user, category, amount, description, item)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded expense of %.2f in %q\n", amount, category)
	if warning.Exceeded {
		fmt.Printf("Warning: spending in %q is %.2f, over the %.2f goal\n",
			warning.Category, warning.Spent, warning.Goal)
	}
	return nil
}

func (a *app) setGoal(ctx context.Context, args []string) error {
	var user, category string
	var amount float64
	fs := newFlagSet("set-goal", &user, a.cfg.DefaultUser)
	fs.StringVar(&category, "category", "", "category name")
	fs.Float64Var(&amount, "amount", 0, "goal amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if category == "" {
		return fmt.Errorf("-category is required")
	}
	if err := a.ledger.SetGoal(ctx, user, category, amount); err != nil {
		return err
	}
	fmt.Printf("Goal for %q set to %.2f\n", category, amount)
	return nil
}

func (a *app) balance(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("balance", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	totals, err := a.ledger.Totals(ctx, user)
	if err != nil {
		return err
	}
	fmt.Printf("Income:  %10.2f\nExpense: %10.2f\nNet:     %10.2f\n",
		totals.Income, totals.Expense, totals.Net())

	months, willGoNegative, err := a.forecast.BankOutlook(ctx, user)
	if err != nil {
		return err
	}
	if willGoNegative {
		fmt.Printf("Warning: bank balance goes negative in %s at the current net\n",
			forecast.MonthsLabel(months))
	}
	return nil
}

func (a *app) history(ctx context.Context, args []string) error {
	var user, category string
	var limit int
	fs := newFlagSet("history", &user, a.cfg.DefaultUser)
	fs.StringVar(&category, "category", "", "filter by category")
	fs.IntVar(&limit, "limit", 20, "maximum entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entries, err := a.ledger.History(ctx, user, category, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries")
		return nil
	}
	for _, e := range entries {
		sign := "+"
		if e.Kind == ledger.Expense {
			sign = "-"
		}
		desc := e.Description
		if desc == "" {
			desc = e.ItemName
		}
		fmt.Printf("%s  %-15s %s%10.2f  %s\n",
			e.CreatedAt.Format("2006-01-02"), e.Category, sign, e.Amount, desc)
	}
	return nil
}

func (a *app) setAccount(ctx context.Context, args []string) error {
	var user string
	account := ledger.Account{}
	fs := newFlagSet("set-account", &user, a.cfg.DefaultUser)
	fs.StringVar(&account.Name, "name", "", "account name")
	fs.Float64Var(&account.Balance, "balance", 0, "current balance")
	fs.StringVar(&account.Type, "type", ledger.TypeBank, "account type")
	fs.Float64Var(&account.MonthlyPayment, "payment", 0, "monthly payment")
	fs.Float64Var(&account.APR, "apr", 0, "annual percentage rate")
	fs.Float64Var(&account.Escrow, "escrow", 0, "monthly escrow portion")
	fs.Float64Var(&account.Insurance, "insurance", 0, "monthly insurance portion")
	fs.Float64Var(&account.Tax, "tax", 0, "monthly tax portion")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.storage.UpsertAccount(ctx, account); err != nil {
		return err
	}
	fmt.Printf("Account %q saved\n", account.Name)
	return nil
}

func (a *app) deleteAccount(ctx context.Context, args []string) error {
	var user, name string
	fs := newFlagSet("delete-account", &user, a.cfg.DefaultUser)
	fs.StringVar(&name, "name", "", "account name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("-name is required")
	}
	if err := a.storage.DeleteAccount(ctx, name); err != nil {
		return err
	}
	fmt.Printf("Account %q deleted\n", name)
	return nil
}

func (a *app) listAccounts(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("list-accounts", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	accounts, err := a.storage.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts")
		return nil
	}
	for _, acct := range accounts {
		fmt.Printf("%-20s %-14s %12.2f", acct.Name, acct.Type, acct.Balance)
		if !acct.IsAsset() {
			months, ok := amortize.MonthsToPayoff(acct.Balance, acct.MonthlyPayment, acct.APR, acct.Escrow, acct.Insurance, acct.Tax)
			if ok {
				fmt.Printf("  paid off in %s", forecast.MonthsLabel(months))
			} else {
				fmt.Printf("  never paid off at %.2f/month", acct.MonthlyPayment)
			}
		}
		fmt.Println()
	}
	return nil
}

func (a *app) bankBalance(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("bank-balance", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	total, err := a.storage.TotalBankBalance(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total bank balance: %.2f\n", total)

	months, willGoNegative, err := a.forecast.BankOutlook(ctx, user)
	if err != nil {
		return err
	}
	if willGoNegative {
		fmt.Printf("Goes negative in %s at the current net\n", forecast.MonthsLabel(months))
	} else {
		fmt.Println("Stays positive at the current net")
	}
	return nil
}

func (a *app) runScan(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("scan", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("at least one statement file is required, oldest period first")
	}
	result, err := a.scan.ScanFiles(ctx, user, paths)
	if err != nil {
		return err
	}
	fmt.Printf("Scanned %d period(s), run %s\n", result.Periods, result.RunID)
	if len(result.Recurring) == 0 {
		fmt.Println("No recurring charges detected")
	}
	for _, c := range result.Recurring {
		fmt.Printf("Recurring: %-30s %10.2f/month\n", c.Description, c.Amount)
	}
	fmt.Printf("One-time charges: %d found, %d new\n", len(result.OneTimes), result.NewOneTimes)
	return nil
}

func (a *app) listRecurring(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("list-recurring", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := a.storage.EnsureUser(ctx, user)
	if err != nil {
		return err
	}
	charges, err := a.storage.ListRecurring(ctx, userID)
	if err != nil {
		return err
	}
	if len(charges) == 0 {
		fmt.Println("No recurring charges")
		return nil
	}
	for _, c := range charges {
		fmt.Printf("%-30s %10.2f/month\n", c.Description, c.Amount)
	}
	return nil
}

func (a *app) listOneTime(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("list-one-time", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := a.storage.EnsureUser(ctx, user)
	if err != nil {
		return err
	}
	charges, err := a.storage.ListOneTime(ctx, userID)
	if err != nil {
		return err
	}
	if len(charges) == 0 {
		fmt.Println("No one-time charges")
		return nil
	}
	for _, c := range charges {
		fmt.Printf("%s  %-30s %10.2f\n", c.Date.Format("2006-01-02"), c.Description, c.Amount)
	}
	return nil
}

func (a *app) subscribe(ctx context.Context, args []string) error {
	var user, tier string
	fs := newFlagSet("subscribe", &user, a.cfg.DefaultUser)
	fs.StringVar(&tier, "tier", "premium", "subscription tier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := a.storage.EnsureUser(ctx, user)
	if err != nil {
		return err
	}
	if err := a.storage.SetSubscription(ctx, userID, tier); err != nil {
		return err
	}
	fmt.Printf("User %q subscribed at tier %q\n", user, tier)
	return nil
}

func (a *app) runSync(ctx context.Context, args []string) error {
	var user string
	fs := newFlagSet("sync", &user, a.cfg.DefaultUser)
	if err := fs.Parse(args); err != nil {
		return err
	}
	added, err := a.sync.Sync(ctx, user)
	if err != nil {
		return err
	}
	fmt.Printf("Sync complete, %d new transaction(s)\n", added)
	return nil
}

func (a *app) runForecast(ctx context.Context, args []string) error {
	var user string
	var months int
	fs := newFlagSet("forecast", &user, a.cfg.DefaultUser)
	fs.IntVar(&months, "months", 12, "forecast horizon in months")
	if err := fs.Parse(args); err != nil {
		return err
	}
	result, err := a.forecast.Forecast(ctx, user, months)
	if err != nil {
		return err
	}
	fmt.Printf("Forecast over %s at net %.2f/month\n\n", forecast.MonthsLabel(result.Months), result.Net)
	printProjections("Assets", result.Assets)
	printProjections("Debts", result.Debts)
	return nil
}

func printProjections(title string, projections []forecast.Projection) {
	if len(projections) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, p := range projections {
		fmt.Printf("  %-20s %12.2f -> %12.2f (%+.2f)\n",
			p.Name, p.Current, p.Projected, p.Change())
	}
	fmt.Println()
}
