package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fortis/internal/archive"
	"fortis/internal/backend"
	"fortis/internal/cli"
	"fortis/internal/config"
	flog "fortis/internal/log"
	"fortis/internal/services"
)

var (
	flagUser    string
	flagBackend string
	flagDBPath  string
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "fortisctl",
	Short: "Budget ledger operations",
	Long:  "Inspect budgets, partition deposits, review alerts and archive transactions.",
	// Commands open the store lazily so --help works without configuration.
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "User id")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Data backend (memory|sqlite), overrides DATA_BACKEND")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path, overrides SQLITE_DB_PATH")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
}

// app bundles the services a command needs.
type app struct {
	cfg          *config.Config
	be           *backend.BackendResult
	budgets      *services.BudgetService
	alerts       *services.AlertService
	deposits     *services.DepositService
	transactions *services.TransactionService
	archive      *services.ArchiveService
	reports      *services.ReportService
}

func openApp(ctx context.Context) (*app, error) {
	cli.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagBackend != "" {
		cfg.DataBackend = flagBackend
	}
	if flagDBPath != "" {
		cfg.SQLiteDBPath = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Keep the terminal for command output; only warnings reach stderr.
	logger := flog.New(flog.Config{
		Level:     flog.ParseLevel("warn"),
		Format:    cfg.LogFormat,
		Component: "fortisctl",
		Output:    os.Stderr,
	})
	flog.SetDefault(logger)

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, err
	}

	events := be.Publisher()
	policy := archive.Policy{AfterDays: cfg.ArchiveAfterDays}
	budgets := services.NewBudgetService(be.Store, be.Store, events)
	return &app{
		cfg:          cfg,
		be:           be,
		budgets:      budgets,
		alerts:       services.NewAlertService(budgets, be.Store, be.Store, nil),
		deposits:     services.NewDepositService(be.Store, events),
		transactions: services.NewTransactionService(be.Store, policy),
		archive:      services.NewArchiveService(be.Store, policy),
		reports:      services.NewReportService(be.Store, be.Store, events),
	}, nil
}

func (a *app) Close() {
	if err := a.be.Cleanup(); err != nil {
		fmt.Fprintf(os.Stderr, "close backend: %v\n", err)
	}
}

// withApp opens the backend, runs fn and closes the backend.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, args)
	}
}

func requireUser() error {
	if flagUser == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}

// render prints v as JSON when --json is set, otherwise calls table.
func render(out io.Writer, v any, table func(w *tabwriter.Writer)) error {
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}
