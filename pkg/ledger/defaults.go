package ledger

import "github.com/shunichi-ikebuchi/ledger-close/pkg/model"

// DefaultChart returns the standard chart of accounts seeded at setup.
// Account 3950 is the clearing account that legacy migrations post their
// offsetting side to.
func DefaultChart() []model.Account {
	return []model.Account{
		{ID: "1000", Name: "Cash", Type: model.AccountTypeAsset, Active: true},
		{ID: "1010", Name: "Petty Cash", Type: model.AccountTypeAsset, Parent: "1000", Active: true},
		{ID: "1100", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Active: true},
		{ID: "1200", Name: "Inventory", Type: model.AccountTypeAsset, Active: true},
		{ID: "1500", Name: "Fixed Assets", Type: model.AccountTypeAsset, Active: true},
		{ID: "2000", Name: "Accounts Payable", Type: model.AccountTypeLiability, Active: true},
		{ID: "2100", Name: "Accrued Liabilities", Type: model.AccountTypeLiability, Active: true},
		{ID: "2500", Name: "Long-term Debt", Type: model.AccountTypeLiability, Active: true},
		{ID: "3000", Name: "Common Stock", Type: model.AccountTypeEquity, Active: true},
		{ID: "3100", Name: "Retained Earnings", Type: model.AccountTypeEquity, Active: true},
		{ID: "3950", Name: "Migration Clearing", Type: model.AccountTypeEquity, Active: true},
		{ID: "4000", Name: "Revenue", Type: model.AccountTypeRevenue, Active: true},
		{ID: "4100", Name: "Service Revenue", Type: model.AccountTypeRevenue, Parent: "4000", Active: true},
		{ID: "5000", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense, Active: true},
		{ID: "6000", Name: "Operating Expenses", Type: model.AccountTypeExpense, Active: true},
		{ID: "6100", Name: "Salaries Expense", Type: model.AccountTypeExpense, Parent: "6000", Active: true},
		{ID: "6200", Name: "Rent Expense", Type: model.AccountTypeExpense, Parent: "6000", Active: true},
	}
}
