// Package model defines the core accounting entities shared across the
// month-end close pipeline: chart of accounts, transaction lines, general
// ledger entries, bank statement lines, reconciliations and audit events.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tolerance is the rounding tolerance applied to all balance checks
// (double-entry balance, trial balance, accounting equation). Amounts whose
// absolute difference is within this value are considered equal.
var Tolerance = decimal.New(1, -2) // 0.01

// WithinTolerance reports whether d is zero within Tolerance.
func WithinTolerance(d decimal.Decimal) bool {
	return d.Abs().Cmp(Tolerance) <= 0
}

// AccountType classifies accounts in the chart of accounts.
// The values match the CHECK constraint on chart_of_accounts.account_type.
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Account represents a row in chart_of_accounts.
// Accounts are created at setup and never deleted; retiring an account means
// clearing its Active flag.
type Account struct {
	ID      string
	Name    string
	Type    AccountType
	Parent  string // parent account ID, empty for top-level accounts
	Active  bool
	Created time.Time
}

// TransactionLine is one side of a double-entry transaction, a single row in
// the transactions table. All lines sharing a TransactionID form one
// transaction, whose debits must equal its credits within Tolerance.
// Accepted lines are immutable; corrections are made with reversal entries.
type TransactionLine struct {
	TransactionID string
	LineNumber    int
	Date          time.Time
	AccountID     string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Description   string
	Reference     string
	PostedBy      string
}

// Net returns debit minus credit for this line.
func (l TransactionLine) Net() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// Period identifies one fiscal month.
type Period struct {
	Year  int
	Month int
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// GeneralLedgerEntry is the aggregated balance of one account for one period.
// It is a derived cache over the transactions table: rebuilding it for the
// same transaction data always yields the same row.
type GeneralLedgerEntry struct {
	AccountID     string
	Period        Period
	TotalDebits   decimal.Decimal
	TotalCredits  decimal.Decimal
	EndingBalance decimal.Decimal // TotalDebits - TotalCredits
	LastUpdated   time.Time
}

// BankStatementLine is one row of an imported bank statement. The bank is the
// authoritative owner of these records; this system never modifies them.
// TransactionID is the bank's cross-reference to a book transaction and may
// be empty.
type BankStatementLine struct {
	StatementID   int64
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	TransactionID string
	Cleared       bool
	Reference     string
}

// Reconciliation is the result of matching book transactions against bank
// statement lines for one account and period. It is derived and recomputable;
// re-running the matcher replaces the stored row.
type Reconciliation struct {
	AccountID         string
	Period            Period
	BookBalance       decimal.Decimal
	BankBalance       decimal.Decimal
	Outstanding       []TransactionLine   // in books, not at bank
	BankOnly          []BankStatementLine // at bank, not in books
	OutstandingAmount decimal.Decimal     // sum of outstanding net amounts
	BankOnlyAmount    decimal.Decimal     // sum of bank-only amounts
	AdjustedBook      decimal.Decimal     // BookBalance + BankOnlyAmount
	AdjustedBank      decimal.Decimal     // BankBalance - OutstandingAmount
	Variance          decimal.Decimal     // OutstandingAmount - BankOnlyAmount
	Reconciled        bool
	CompletedBy       string
	Completed         time.Time
}

// AuditEvent is one row of the append-only audit log.
type AuditEvent struct {
	ID          int64
	Timestamp   time.Time
	Type        string
	Table       string
	RecordID    string
	Description string
	Actor       string
	RunID       string
}

// Audit event types recorded by the pipeline.
const (
	AuditInsert    = "INSERT"
	AuditPost      = "POST"
	AuditReconcile = "RECONCILE"
	AuditClose     = "CLOSE"
	AuditMigrate   = "MIGRATE"
)

// CloseStatus tracks the lifecycle of a fiscal period in period_close_status.
type CloseStatus string

const (
	CloseStatusOpen       CloseStatus = "Open"
	CloseStatusInProgress CloseStatus = "In Progress"
	CloseStatusClosed     CloseStatus = "Closed"
)
