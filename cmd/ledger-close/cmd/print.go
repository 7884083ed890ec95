package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/report"
)

// printTrialBalance prints the trial balance and returns whether the
// debit-balance and credit-balance column totals agree within tolerance.
func printTrialBalance(p model.Period, rows []report.TrialBalanceRow) bool {
	fmt.Printf("\n=== Trial Balance: %s ===\n", p)
	fmt.Printf("%-8s %-28s %-10s %14s %14s %14s %14s\n",
		"Account", "Name", "Type", "Debits", "Credits", "Debit Bal", "Credit Bal")

	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	for _, row := range rows {
		fmt.Printf("%-8s %-28s %-10s %14s %14s %14s %14s\n",
			row.AccountID,
			row.AccountName,
			string(row.AccountType),
			row.TotalDebits.StringFixed(2),
			row.TotalCredits.StringFixed(2),
			row.DebitBalance.StringFixed(2),
			row.CreditBalance.StringFixed(2),
		)
		debitTotal = debitTotal.Add(row.DebitBalance)
		creditTotal = creditTotal.Add(row.CreditBalance)
	}

	balanced := model.WithinTolerance(debitTotal.Sub(creditTotal))
	fmt.Printf("%-48s %30s %14s %14s\n", "TOTAL", "", debitTotal.StringFixed(2), creditTotal.StringFixed(2))
	fmt.Printf("Balanced: %v\n", balanced)
	return balanced
}

func printStatements(income *report.IncomeStatement, sheet *report.BalanceSheet) {
	fmt.Printf("\n=== Income Statement: %s ===\n", income.Period)
	fmt.Printf("Revenue:     %14s\n", income.Revenue.StringFixed(2))
	fmt.Printf("Expenses:    %14s\n", income.Expenses.StringFixed(2))
	fmt.Printf("Net Income:  %14s\n", income.NetIncome.StringFixed(2))

	fmt.Printf("\n=== Balance Sheet: as of %s ===\n", sheet.AsOf.Format("2006-01-02"))
	fmt.Printf("Assets:      %14s\n", sheet.Assets.StringFixed(2))
	fmt.Printf("Liabilities: %14s\n", sheet.Liabilities.StringFixed(2))
	fmt.Printf("Equity:      %14s\n", sheet.TotalEquity.StringFixed(2))
	fmt.Printf("Balanced:    %v\n", sheet.Balanced())
}
