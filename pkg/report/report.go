// Package report derives financial statements from the ledger store: trial
// balance, income statement, balance sheet and per-account running balances.
// Everything here is a read-only projection; nothing in this package writes.
package report

import (
	"iter"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// Engine produces reports over a schema store.
type Engine struct {
	store *ledger.Store
}

// NewEngine creates a reporting Engine.
func NewEngine(store *ledger.Store) *Engine {
	return &Engine{store: store}
}

// TrialBalanceRow is one account's line on the trial balance. An ending
// balance greater than zero appears in the DebitBalance column; less than
// zero appears (negated) in the CreditBalance column.
type TrialBalanceRow struct {
	AccountID     string
	AccountName   string
	AccountType   model.AccountType
	TotalDebits   decimal.Decimal
	TotalCredits  decimal.Decimal
	EndingBalance decimal.Decimal
	DebitBalance  decimal.Decimal
	CreditBalance decimal.Decimal
}

// TrialBalance lists every active account with the period's general ledger
// totals, ordered by account ID. Accounts without a posted entry for the
// period report zeros. For a balanced ledger, the debit-balance column total
// minus the credit-balance column total is zero within tolerance.
func (e *Engine) TrialBalance(p model.Period) ([]TrialBalanceRow, error) {
	accounts, err := e.store.Accounts()
	if err != nil {
		return nil, err
	}
	entries, err := e.store.GLEntriesForPeriod(p)
	if err != nil {
		return nil, err
	}

	var rows []TrialBalanceRow
	for _, a := range accounts {
		if !a.Active {
			continue
		}

		row := TrialBalanceRow{
			AccountID:     a.ID,
			AccountName:   a.Name,
			AccountType:   a.Type,
			TotalDebits:   decimal.Zero,
			TotalCredits:  decimal.Zero,
			EndingBalance: decimal.Zero,
			DebitBalance:  decimal.Zero,
			CreditBalance: decimal.Zero,
		}

		if entry, ok := entries[a.ID]; ok {
			row.TotalDebits = entry.TotalDebits
			row.TotalCredits = entry.TotalCredits
			row.EndingBalance = entry.EndingBalance
			if entry.EndingBalance.IsPositive() {
				row.DebitBalance = entry.EndingBalance
			} else if entry.EndingBalance.IsNegative() {
				row.CreditBalance = entry.EndingBalance.Neg()
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// IncomeStatement summarizes a period's operating result: revenue is the
// credit total on Revenue accounts, expenses the debit total on Expense
// accounts, net income their difference.
type IncomeStatement struct {
	Period    model.Period
	Revenue   decimal.Decimal
	Expenses  decimal.Decimal
	NetIncome decimal.Decimal
}

// IncomeStatement derives the period's income statement from transaction
// detail.
func (e *Engine) IncomeStatement(p model.Period) (*IncomeStatement, error) {
	lines, err := e.store.TransactionsForPeriod(p)
	if err != nil {
		return nil, err
	}
	accounts, err := e.store.AccountsByID()
	if err != nil {
		return nil, err
	}

	stmt := &IncomeStatement{
		Period:   p,
		Revenue:  decimal.Zero,
		Expenses: decimal.Zero,
	}
	for _, line := range lines {
		switch accounts[line.AccountID].Type {
		case model.AccountTypeRevenue:
			stmt.Revenue = stmt.Revenue.Add(line.Credit)
		case model.AccountTypeExpense:
			stmt.Expenses = stmt.Expenses.Add(line.Debit)
		}
	}
	stmt.NetIncome = stmt.Revenue.Sub(stmt.Expenses)

	return stmt, nil
}

// BalanceSheet states financial position as of a date. TotalEquity folds net
// income to date into contributed equity.
type BalanceSheet struct {
	AsOf        time.Time
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Equity      decimal.Decimal
	NetIncome   decimal.Decimal
	TotalEquity decimal.Decimal // Equity + NetIncome
}

// Balanced reports whether the accounting equation holds within tolerance:
// assets = liabilities + total equity. The engine itself never enforces
// this; it is a consistency check for callers.
func (b *BalanceSheet) Balanced() bool {
	return model.WithinTolerance(b.Assets.Sub(b.Liabilities.Add(b.TotalEquity)))
}

// BalanceSheet derives financial position from all transactions dated at or
// before asOf. Asset balances are debit minus credit; liability and equity
// balances are credit minus debit.
func (e *Engine) BalanceSheet(asOf time.Time) (*BalanceSheet, error) {
	lines, err := e.store.TransactionsThrough(asOf)
	if err != nil {
		return nil, err
	}
	accounts, err := e.store.AccountsByID()
	if err != nil {
		return nil, err
	}

	sheet := &BalanceSheet{
		AsOf:        asOf,
		Assets:      decimal.Zero,
		Liabilities: decimal.Zero,
		Equity:      decimal.Zero,
		NetIncome:   decimal.Zero,
	}
	for _, line := range lines {
		switch accounts[line.AccountID].Type {
		case model.AccountTypeAsset:
			sheet.Assets = sheet.Assets.Add(line.Net())
		case model.AccountTypeLiability:
			sheet.Liabilities = sheet.Liabilities.Sub(line.Net())
		case model.AccountTypeEquity:
			sheet.Equity = sheet.Equity.Sub(line.Net())
		case model.AccountTypeRevenue:
			sheet.NetIncome = sheet.NetIncome.Sub(line.Net())
		case model.AccountTypeExpense:
			sheet.NetIncome = sheet.NetIncome.Sub(line.Net())
		}
	}
	sheet.TotalEquity = sheet.Equity.Add(sheet.NetIncome)

	return sheet, nil
}

// RunningBalanceRow is one step of an account's running balance.
type RunningBalanceRow struct {
	Date          time.Time
	TransactionID string
	LineNumber    int
	Description   string
	Net           decimal.Decimal
	Balance       decimal.Decimal // cumulative net through this row
}

// RunningBalance returns the account's transaction detail as a lazy,
// restartable sequence ordered by (date, transaction ID), with the
// cumulative balance recomputed on each traversal.
func (e *Engine) RunningBalance(accountID string) (iter.Seq[RunningBalanceRow], error) {
	lines, err := e.store.TransactionsForAccount(accountID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	return func(yield func(RunningBalanceRow) bool) {
		balance := decimal.Zero
		for _, line := range lines {
			balance = balance.Add(line.Net())
			row := RunningBalanceRow{
				Date:          line.Date,
				TransactionID: line.TransactionID,
				LineNumber:    line.LineNumber,
				Description:   line.Description,
				Net:           line.Net(),
				Balance:       balance,
			}
			if !yield(row) {
				return
			}
		}
	}, nil
}

// ActivityRow is one line of an account activity listing.
type ActivityRow struct {
	TransactionID string
	Date          time.Time
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Net           decimal.Decimal
	Reference     string
}

// AccountActivity lists the account's transaction detail between from and to
// inclusive; zero times leave the corresponding bound open.
func (e *Engine) AccountActivity(accountID string, from, to time.Time) ([]ActivityRow, error) {
	lines, err := e.store.TransactionsForAccount(accountID, from, to)
	if err != nil {
		return nil, err
	}

	rows := make([]ActivityRow, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, ActivityRow{
			TransactionID: line.TransactionID,
			Date:          line.Date,
			Description:   line.Description,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Net:           line.Net(),
			Reference:     line.Reference,
		})
	}
	return rows, nil
}

// GeneralLedger returns the period's posted entries ordered by account ID.
func (e *Engine) GeneralLedger(p model.Period) ([]model.GeneralLedgerEntry, error) {
	byAccount, err := e.store.GLEntriesForPeriod(p)
	if err != nil {
		return nil, err
	}

	entries := make([]model.GeneralLedgerEntry, 0, len(byAccount))
	for _, e := range byAccount {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccountID < entries[j].AccountID
	})
	return entries, nil
}
