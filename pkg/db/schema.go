// Package db provides SQLite storage for the month-end close ledger.
package db

// Schema defines the SQL statements to create the ledger relations.
//
// Monetary columns are stored as TEXT holding exact decimal strings; all
// arithmetic happens in Go with shopspring/decimal. Dates are TEXT in
// YYYY-MM-DD form.
//
// Note: bank_statements.transaction_id cross-references
// transactions.transaction_id, which is not unique on its own (the PK is
// (transaction_id, line_number)), so SQLite cannot enforce it as a foreign
// key. The integrity scan reports unresolved references instead.
const Schema = `
-- Chart of accounts
-- Accounts are never deleted; is_active = 0 retires an account.
CREATE TABLE IF NOT EXISTS chart_of_accounts (
    account_id TEXT PRIMARY KEY,
    account_name TEXT NOT NULL,
    account_type TEXT NOT NULL CHECK(account_type IN ('Asset', 'Liability', 'Equity', 'Revenue', 'Expense')),
    parent_account TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Transaction lines
-- All lines with the same transaction_id form one double-entry transaction.
-- Rows are immutable once accepted; there is no update path.
CREATE TABLE IF NOT EXISTS transactions (
    transaction_id TEXT NOT NULL,
    line_number INTEGER NOT NULL,
    transaction_date TEXT NOT NULL,
    account_id TEXT NOT NULL,
    debit TEXT NOT NULL DEFAULT '0',
    credit TEXT NOT NULL DEFAULT '0',
    description TEXT,
    reference_number TEXT,
    posted_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    posted_by TEXT DEFAULT 'SYSTEM',
    PRIMARY KEY (transaction_id, line_number),
    FOREIGN KEY (account_id) REFERENCES chart_of_accounts(account_id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_date
    ON transactions(transaction_date);

CREATE INDEX IF NOT EXISTS idx_transactions_account
    ON transactions(account_id, transaction_date);

-- General ledger
-- Derived cache of per-account, per-period totals. Rebuilt by the posting
-- aggregator with replace semantics; never a source of truth.
CREATE TABLE IF NOT EXISTS general_ledger (
    gl_entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id TEXT NOT NULL,
    period_year INTEGER NOT NULL,
    period_month INTEGER NOT NULL,
    total_debits TEXT NOT NULL DEFAULT '0',
    total_credits TEXT NOT NULL DEFAULT '0',
    ending_balance TEXT NOT NULL DEFAULT '0',
    last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES chart_of_accounts(account_id),
    UNIQUE(account_id, period_year, period_month)
);

-- Bank statements
-- External, authoritative records. transaction_id is the bank's optional
-- cross-reference to a book transaction.
CREATE TABLE IF NOT EXISTS bank_statements (
    statement_id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_date TEXT NOT NULL,
    description TEXT,
    amount TEXT NOT NULL,
    transaction_id TEXT,
    cleared_flag INTEGER NOT NULL DEFAULT 0,
    reconciled_flag INTEGER NOT NULL DEFAULT 0,
    statement_reference TEXT
);

CREATE INDEX IF NOT EXISTS idx_bank_statements_date
    ON bank_statements(transaction_date);

CREATE INDEX IF NOT EXISTS idx_bank_statements_txn
    ON bank_statements(transaction_id);

-- Reconciliations
-- Derived report of one matcher run per account and period; re-running
-- replaces the row.
CREATE TABLE IF NOT EXISTS reconciliations (
    reconciliation_id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id TEXT NOT NULL,
    period_year INTEGER NOT NULL,
    period_month INTEGER NOT NULL,
    book_balance TEXT NOT NULL DEFAULT '0',
    bank_balance TEXT NOT NULL DEFAULT '0',
    outstanding_items_count INTEGER NOT NULL DEFAULT 0,
    outstanding_items_amount TEXT NOT NULL DEFAULT '0',
    bank_only_items_count INTEGER NOT NULL DEFAULT 0,
    bank_only_items_amount TEXT NOT NULL DEFAULT '0',
    variance TEXT NOT NULL DEFAULT '0',
    reconciled_flag INTEGER NOT NULL DEFAULT 0,
    completed_by TEXT,
    completed_timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES chart_of_accounts(account_id),
    UNIQUE(account_id, period_year, period_month)
);

-- Audit log
-- Append-only. No update or delete path exists anywhere in the codebase.
CREATE TABLE IF NOT EXISTS audit_log (
    audit_id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    event_type TEXT NOT NULL,
    table_name TEXT,
    record_id TEXT,
    description TEXT,
    user_name TEXT,
    run_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp
    ON audit_log(event_timestamp);

-- Period close tracker
CREATE TABLE IF NOT EXISTS period_close_status (
    close_id INTEGER PRIMARY KEY AUTOINCREMENT,
    fiscal_year INTEGER NOT NULL,
    fiscal_period INTEGER NOT NULL,
    close_date TEXT,
    close_status TEXT CHECK(close_status IN ('Open', 'In Progress', 'Closed')),
    closed_by TEXT,
    close_timestamp TIMESTAMP,
    UNIQUE(fiscal_year, fiscal_period)
);
`

// InitializeSchema creates all tables and indexes if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
