// Package cmd provides CLI commands for ledger-close.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/audit"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/config"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/db"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/report"
)

var (
	cfgFile string
	debug   bool
	runID   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledger-close",
	Short: "Month-end close and bank reconciliation automation",
	Long: `ledger-close automates the month-end close over a local SQLite ledger.

It supports:
- Validating and accepting double-entry transactions
- Posting period totals to the general ledger
- Bank reconciliation with outstanding/bank-only classification
- Trial balance, income statement and balance sheet reporting
- Legacy ERP migration with data-quality assessment
- A complete append-only audit trail

Example:
  ledger-close close --year 2026 --month 1 --transactions txns.csv --bank bank.csv
  ledger-close report trial-balance --year 2026 --month 1
  ledger-close audit --limit 20`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)

		// One run ID per invocation, stamped on every audit event.
		runID = uuid.NewString()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(auditCmd)
}

// app bundles the wired components every command needs.
type app struct {
	cfg      *config.Config
	conn     *db.Connection
	store    *ledger.Store
	recorder *audit.Recorder
	service  *ledger.Service
	reports  *report.Engine
}

// openApp loads configuration and opens the database and services.
// Callers must Close.
func openApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate("dbPath", "actor"); err != nil {
		return nil, err
	}

	slog.Debug("Opening database", "path", cfg.DBPath)
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := ledger.NewStore(conn)
	recorder := audit.NewRecorder(conn, cfg.Actor, runID)

	return &app{
		cfg:      cfg,
		conn:     conn,
		store:    store,
		recorder: recorder,
		service:  ledger.NewService(store, recorder, cfg.Actor),
		reports:  report.NewEngine(store),
	}, nil
}

// Close closes the underlying database connection.
func (a *app) Close() {
	if a.conn != nil {
		a.conn.Close()
	}
}

// exitOnError logs the error and exits.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
