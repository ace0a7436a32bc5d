package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/dedupe"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
	"bilancio/internal/reconcile"
	"bilancio/internal/report"
	"bilancio/internal/services"
	"bilancio/internal/snapshot"
	snapcsv "bilancio/internal/snapshot/csv"
	gsnap "bilancio/internal/snapshot/google"
	"bilancio/internal/store"
	storemem "bilancio/internal/store/memory"
	storesqlite "bilancio/internal/store/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	})
	applog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "import":
		err = runImport(ctx, cfg, os.Args[2:])
	case "balances":
		err = runBalances(ctx, cfg, os.Args[2:])
	case "duplicates":
		err = runDuplicates(ctx, cfg, os.Args[2:])
	case "reconcile":
		err = runReconcile(ctx, cfg, os.Args[2:])
	case "run":
		err = runFull(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bilancio <command> [flags]

commands:
  import     import a transaction CSV into the store
  balances   compute per-account balances
  duplicates detect duplicate transactions, optionally apply a resolution
  reconcile  compare balances against the ground-truth snapshot
  run        full pipeline: dedupe, aggregate, reconcile, report as JSON`)
}

func openStore(cfg *config.Config) (store.TransactionStore, func(), error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storesqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, func() { repo.Close() }, nil
	default:
		return storemem.New(), func() {}, nil
	}
}

func openSnapshots(ctx context.Context, cfg *config.Config) (snapshot.Source, error) {
	switch cfg.SnapshotSource {
	case "sheets":
		return gsnap.NewFromEnv(ctx)
	case "csv":
		return snapcsv.NewReader(cfg.SnapshotCSVPath), nil
	default:
		return nil, nil
	}
}

func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "transaction CSV to import")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("missing -file")
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	summary, err := services.NewImportService(st).Import(ctx, f)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d of %d rows\n", summary.Added, summary.Rows)
	for _, r := range summary.Rejected {
		fmt.Printf("rejected: %s\n", r)
	}
	return nil
}

func runBalances(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("balances", flag.ExitOnError)
	fs.Parse(args)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	accounts, err := ledger.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return err
	}

	txs, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	normalized, _ := core.NormalizeAll(txs)

	balances, recordErrs := ledger.ComputeBalances(normalized, ledger.Options{
		Accounts:  accounts,
		Lenient:   cfg.LenientAccounts,
		Composite: true,
		Filter:    fs.Args(),
	})

	if err := report.RenderBalances(os.Stdout, balances); err != nil {
		return err
	}
	for _, re := range recordErrs {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", re.Error())
	}
	return nil
}

func runDuplicates(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("duplicates", flag.ExitOnError)
	near := fs.Bool("near", false, "also report near duplicates (same amount, same week)")
	apply := fs.Bool("apply", false, "apply the resolution plan to the store")
	policy := fs.String("policy", string(dedupe.KeepFirstInserted), "resolution policy: keep-earliest-id, keep-first-inserted, manual-review")
	fs.Parse(args)

	pol, err := dedupe.ParsePolicy(*policy)
	if err != nil {
		return fmt.Errorf("policy %q: %w", *policy, err)
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	txs, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	normalized, _ := core.NormalizeAll(txs)

	groups := dedupe.FindDuplicates(normalized)
	for _, g := range groups {
		fmt.Printf("duplicate %s %s %q: %v\n", g.Key.Date, g.Key.Amount, g.Key.Description, g.IDs())
	}
	if *near {
		for _, g := range dedupe.FindNearDuplicates(normalized) {
			fmt.Printf("near-duplicate %s %s (needs review): %v\n", g.Key.Date, g.Key.Amount, g.IDs())
		}
	}

	if !*apply {
		return nil
	}

	plan, err := dedupe.Plan(groups, pol)
	if err != nil {
		return err
	}
	if len(plan.Ambiguous) > 0 {
		fmt.Printf("%d groups need manual review and were not touched\n", len(plan.Ambiguous))
	}

	accounts, err := ledger.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return err
	}
	svc := services.NewReconciliationService(st, nil, nil, accounts, cfg.EpsilonMoney(), cfg.LenientAccounts)
	removed, skipped, err := svc.RemoveDuplicates(ctx, plan.RemoveIDs)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d, skipped %d already absent\n", removed, skipped)
	return nil
}

func runReconcile(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	epsilon := fs.String("epsilon", cfg.Epsilon, "tolerance for balance differences")
	fs.Parse(args)

	eps, err := core.ParseMoney(*epsilon)
	if err != nil {
		return fmt.Errorf("epsilon %q: %w", *epsilon, err)
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	snaps, err := openSnapshots(ctx, cfg)
	if err != nil {
		return err
	}
	if snaps == nil {
		return fmt.Errorf("no snapshot source configured (set SNAPSHOT_SOURCE to csv or sheets)")
	}

	accounts, err := ledger.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return err
	}

	svc := services.NewReconciliationService(st, snaps, nil, accounts, eps, cfg.LenientAccounts)
	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	if err := report.RenderFindings(os.Stdout, result.Findings); err != nil {
		return err
	}
	if mismatches := reconcile.Mismatches(result.Findings); len(mismatches) > 0 {
		fmt.Fprintf(os.Stderr, "%d accounts outside tolerance\n", len(mismatches))
	}
	for _, re := range result.RecordErrors {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", re)
	}
	return nil
}

func runFull(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Parse(args)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	snaps, err := openSnapshots(ctx, cfg)
	if err != nil {
		return err
	}

	accounts, err := ledger.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return err
	}

	var reviews services.ReviewPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.ReviewQueue, cfg.ResolutionQueue)
		if err != nil {
			return fmt.Errorf("connect review queue: %w", err)
		}
		defer client.Close()
		reviews = client
	}

	svc := services.NewReconciliationService(st, snaps, reviews, accounts, cfg.EpsilonMoney(), cfg.LenientAccounts)
	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	return report.RenderJSON(os.Stdout, result)
}
