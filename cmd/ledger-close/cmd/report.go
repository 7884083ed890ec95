package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

var (
	reportYear    int
	reportMonth   int
	reportAsOf    string
	reportAccount string
)

// reportCmd represents the report command group.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce financial reports from the ledger",
	Long: `Produce read-only financial reports from the ledger.

Available reports:
  trial-balance   Per-account debit/credit balances for a period
  income          Income statement for a period
  balance-sheet   Financial position as of a date
  gl              Posted general ledger entries for a period
  activity        Running balance for one account

Example:
  ledger-close report trial-balance --year 2026 --month 1
  ledger-close report activity --account 1000`,
}

var trialBalanceCmd = &cobra.Command{
	Use:   "trial-balance",
	Short: "Print the trial balance for a period",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to initialize")
		defer a.Close()

		period := model.Period{Year: reportYear, Month: reportMonth}
		rows, err := a.reports.TrialBalance(period)
		exitOnError(err, "failed to build trial balance")
		printTrialBalance(period, rows)
	},
}

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Print the income statement for a period",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to initialize")
		defer a.Close()

		period := model.Period{Year: reportYear, Month: reportMonth}
		income, err := a.reports.IncomeStatement(period)
		exitOnError(err, "failed to build income statement")

		fmt.Printf("\n=== Income Statement: %s ===\n", income.Period)
		fmt.Printf("Revenue:     %14s\n", income.Revenue.StringFixed(2))
		fmt.Printf("Expenses:    %14s\n", income.Expenses.StringFixed(2))
		fmt.Printf("Net Income:  %14s\n", income.NetIncome.StringFixed(2))
	},
}

var balanceSheetCmd = &cobra.Command{
	Use:   "balance-sheet",
	Short: "Print the balance sheet as of a date",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to initialize")
		defer a.Close()

		asOf := time.Now().UTC()
		if reportAsOf != "" {
			parsed, err := time.Parse("2006-01-02", reportAsOf)
			exitOnError(err, "invalid --as-of date")
			asOf = parsed
		}

		sheet, err := a.reports.BalanceSheet(asOf)
		exitOnError(err, "failed to build balance sheet")

		fmt.Printf("\n=== Balance Sheet: as of %s ===\n", sheet.AsOf.Format("2006-01-02"))
		fmt.Printf("Assets:      %14s\n", sheet.Assets.StringFixed(2))
		fmt.Printf("Liabilities: %14s\n", sheet.Liabilities.StringFixed(2))
		fmt.Printf("Equity:      %14s\n", sheet.TotalEquity.StringFixed(2))
		fmt.Printf("Balanced:    %v\n", sheet.Balanced())
	},
}

var glCmd = &cobra.Command{
	Use:   "gl",
	Short: "Print posted general ledger entries for a period",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to initialize")
		defer a.Close()

		period := model.Period{Year: reportYear, Month: reportMonth}
		entries, err := a.reports.GeneralLedger(period)
		exitOnError(err, "failed to read general ledger")

		fmt.Printf("\n=== General Ledger: %s ===\n", period)
		fmt.Printf("%-8s %14s %14s %14s\n", "Account", "Debits", "Credits", "Balance")
		for _, e := range entries {
			fmt.Printf("%-8s %14s %14s %14s\n",
				e.AccountID,
				e.TotalDebits.StringFixed(2),
				e.TotalCredits.StringFixed(2),
				e.EndingBalance.StringFixed(2),
			)
		}
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Print an account's running balance",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp()
		exitOnError(err, "failed to initialize")
		defer a.Close()

		rows, err := a.reports.RunningBalance(reportAccount)
		exitOnError(err, "failed to read account activity")

		fmt.Printf("\n=== Account Activity: %s ===\n", reportAccount)
		fmt.Printf("%-12s %-14s %14s %14s\n", "Date", "Transaction", "Net", "Balance")
		for row := range rows {
			fmt.Printf("%-12s %-14s %14s %14s\n",
				row.Date.Format("2006-01-02"),
				row.TransactionID,
				row.Net.StringFixed(2),
				row.Balance.StringFixed(2),
			)
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{trialBalanceCmd, incomeCmd, glCmd} {
		c.Flags().IntVar(&reportYear, "year", 0, "Fiscal year (required)")
		c.Flags().IntVar(&reportMonth, "month", 0, "Fiscal month 1-12 (required)")
		c.MarkFlagRequired("year")
		c.MarkFlagRequired("month")
	}

	balanceSheetCmd.Flags().StringVar(&reportAsOf, "as-of", "", "As-of date YYYY-MM-DD (default today)")

	activityCmd.Flags().StringVar(&reportAccount, "account", "", "Account ID (required)")
	activityCmd.MarkFlagRequired("account")

	reportCmd.AddCommand(trialBalanceCmd)
	reportCmd.AddCommand(incomeCmd)
	reportCmd.AddCommand(balanceSheetCmd)
	reportCmd.AddCommand(glCmd)
	reportCmd.AddCommand(activityCmd)
}
