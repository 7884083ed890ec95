package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/importer"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

var (
	closeYear         int
	closeMonth        int
	closeTransactions string
	closeBank         string
	closeAccount      string
)

// closeCmd represents the close command.
var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Run the month-end close for one period",
	Long: `Run the full month-end close pipeline for one fiscal period.

This command:
1. Seeds the standard chart of accounts (existing accounts untouched)
2. Validates and accepts new transactions (rejected records are reported,
   the batch continues)
3. Imports bank statement lines
4. Posts period totals to the general ledger (idempotent replace)
5. Reconciles the cash account against the bank statement
6. Produces trial balance, income statement and balance sheet
7. Runs ledger integrity checks
8. Marks the period Closed when the trial balance balances and the
   integrity scan is clean

Example:
  ledger-close close --year 2026 --month 1 --transactions txns.csv --bank bank.csv`,
	Run: runClose,
}

func init() {
	closeCmd.Flags().IntVar(&closeYear, "year", 0, "Fiscal year (required)")
	closeCmd.Flags().IntVar(&closeMonth, "month", 0, "Fiscal month 1-12 (required)")
	closeCmd.Flags().StringVar(&closeTransactions, "transactions", "", "Transaction CSV to accept before closing")
	closeCmd.Flags().StringVar(&closeBank, "bank", "", "Bank statement CSV to import before reconciling")
	closeCmd.Flags().StringVar(&closeAccount, "account", "1000", "Cash account to reconcile")

	closeCmd.MarkFlagRequired("year")
	closeCmd.MarkFlagRequired("month")
}

func runClose(cmd *cobra.Command, args []string) {
	period := model.Period{Year: closeYear, Month: closeMonth}
	slog.Info("Starting month-end close", "period", period.String(), "account", closeAccount)

	a, err := openApp()
	exitOnError(err, "failed to initialize")
	defer a.Close()

	exitOnError(a.store.SeedAccounts(ledger.DefaultChart()), "failed to seed chart of accounts")

	if closeTransactions != "" {
		acceptTransactionFile(a, closeTransactions)
	}

	if closeBank != "" {
		f, err := os.Open(closeBank)
		exitOnError(err, "failed to open bank statement file")
		lines, err := importer.ReadBankStatements(f)
		f.Close()
		exitOnError(err, "failed to read bank statement file")

		exitOnError(a.service.ImportBankStatements(lines), "failed to import bank statements")
		slog.Info("Imported bank statements", "lines", len(lines))
	}

	// Post to general ledger.
	entries, err := a.service.PostPeriod(period)
	exitOnError(err, "failed to post general ledger")
	slog.Info("Posted general ledger", "period", period.String(), "accounts", len(entries))

	// Bank reconciliation.
	rec, err := a.service.Reconcile(closeAccount, period)
	exitOnError(err, "failed to reconcile")
	printReconciliation(rec)

	// Trial balance.
	rows, err := a.reports.TrialBalance(period)
	exitOnError(err, "failed to build trial balance")
	balanced := printTrialBalance(period, rows)

	// Financial statements.
	income, err := a.reports.IncomeStatement(period)
	exitOnError(err, "failed to build income statement")
	sheet, err := a.reports.BalanceSheet(periodEnd(period))
	exitOnError(err, "failed to build balance sheet")
	printStatements(income, sheet)

	// Integrity checks.
	integrity, err := a.service.CheckIntegrity()
	exitOnError(err, "failed to run integrity checks")
	printIntegrity(integrity)

	// Period close status.
	status := model.CloseStatusInProgress
	if balanced && integrity.Clean() {
		status = model.CloseStatusClosed
	}
	exitOnError(a.store.SetCloseStatus(period, status, a.cfg.Actor), "failed to update close status")
	exitOnError(a.recorder.Record(nil, model.AuditClose, "period_close_status", period.String(),
		fmt.Sprintf("Period %s marked %s", period, status)), "failed to record close event")

	fmt.Printf("\nPeriod %s: %s\n", period, status)
	slog.Info("Close completed", "period", period.String(), "status", string(status))
}

// acceptTransactionFile reads, validates and accepts a transaction CSV.
// Rejections are reported per transaction; only a store failure aborts.
func acceptTransactionFile(a *app, path string) {
	f, err := os.Open(path)
	exitOnError(err, "failed to open transaction file")
	raws, err := importer.ReadTransactions(f)
	f.Close()
	exitOnError(err, "failed to read transaction file")

	result, err := a.service.AcceptBatch(raws)
	if result != nil && len(result.Rejections) > 0 {
		fmt.Printf("\n=== Rejected Transactions ===\n")
		for _, r := range result.Rejections {
			fmt.Printf("  %s\n", r.Error())
		}
	}
	exitOnError(err, "failed to persist transactions")

	slog.Info("Accepted transactions",
		"accepted", result.Accepted,
		"lines", result.AcceptedLines,
		"rejected", len(result.Rejections),
	)
}

func printReconciliation(rec *model.Reconciliation) {
	fmt.Printf("\n=== Bank Reconciliation: account %s, %s ===\n", rec.AccountID, rec.Period)
	fmt.Printf("Book balance:       %14s\n", rec.BookBalance.StringFixed(2))
	fmt.Printf("Bank balance:       %14s\n", rec.BankBalance.StringFixed(2))
	fmt.Printf("Outstanding items:  %6d  %14s\n", len(rec.Outstanding), rec.OutstandingAmount.StringFixed(2))
	fmt.Printf("Bank-only items:    %6d  %14s\n", len(rec.BankOnly), rec.BankOnlyAmount.StringFixed(2))
	fmt.Printf("Adjusted book:      %14s\n", rec.AdjustedBook.StringFixed(2))
	fmt.Printf("Adjusted bank:      %14s\n", rec.AdjustedBank.StringFixed(2))
	fmt.Printf("Variance:           %14s\n", rec.Variance.StringFixed(2))
	fmt.Printf("Reconciled:         %v\n", rec.Reconciled)
}

func printIntegrity(r *ledger.IntegrityReport) {
	fmt.Printf("\n=== Integrity Checks ===\n")
	fmt.Printf("Unbalanced transactions: %d\n", len(r.Unbalanced))
	fmt.Printf("Orphaned transactions:   %d\n", len(r.OrphanedTransactions))
	fmt.Printf("Unresolved bank refs:    %d\n", len(r.UnresolvedBankRefs))
	fmt.Printf("GL matches books:        %v\n", r.GLMatchesBooks)
}

// periodEnd returns the last day of the period.
func periodEnd(p model.Period) time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1)
}
