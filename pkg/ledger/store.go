// Package ledger implements the consistency core of the month-end close:
// transaction validation, general ledger posting, bank reconciliation and
// data-quality scanning over the SQLite schema store.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/db"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

const dateLayout = "2006-01-02"

// Store provides read/write access to the ledger relations. All other
// components go through it; nothing else touches the tables directly.
type Store struct {
	conn *db.Connection
}

// NewStore creates a Store over an open connection.
func NewStore(conn *db.Connection) *Store {
	return &Store{conn: conn}
}

// Conn exposes the underlying connection for transactional composition.
func (s *Store) Conn() *db.Connection {
	return s.conn
}

// SeedAccounts inserts accounts into the chart of accounts, ignoring IDs
// that already exist. Existing rows are never modified.
func (s *Store) SeedAccounts(accounts []model.Account) error {
	return s.conn.Transaction(func(tx *sql.Tx) error {
		query := `
			INSERT OR IGNORE INTO chart_of_accounts (account_id, account_name, account_type, parent_account, is_active)
			VALUES (?, ?, ?, ?, ?)
		`
		for _, a := range accounts {
			parent := sql.NullString{String: a.Parent, Valid: a.Parent != ""}
			active := 0
			if a.Active {
				active = 1
			}
			if _, err := tx.Exec(query, a.ID, a.Name, string(a.Type), parent, active); err != nil {
				return fmt.Errorf("failed to seed account %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

// Accounts returns the full chart of accounts ordered by account ID.
func (s *Store) Accounts() ([]model.Account, error) {
	query := `
		SELECT account_id, account_name, account_type, COALESCE(parent_account, ''), is_active, created_date
		FROM chart_of_accounts
		ORDER BY account_id
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var accountType string
		var active int
		if err := rows.Scan(&a.ID, &a.Name, &accountType, &a.Parent, &active, &a.Created); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Type = model.AccountType(accountType)
		a.Active = active != 0
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// AccountsByID returns the chart of accounts keyed by account ID.
func (s *Store) AccountsByID() (map[string]model.Account, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return byID, nil
}

// insertTransactionLines appends accepted transaction lines within tx.
// Callers are responsible for validation; the only writers are the validator
// service and tests.
func (s *Store) insertTransactionLines(tx *sql.Tx, lines []model.TransactionLine) error {
	query := `
		INSERT INTO transactions
		(transaction_id, line_number, transaction_date, account_id, debit, credit, description, reference_number, posted_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, l := range lines {
		if _, err := tx.Exec(query,
			l.TransactionID,
			l.LineNumber,
			l.Date.Format(dateLayout),
			l.AccountID,
			l.Debit.String(),
			l.Credit.String(),
			l.Description,
			l.Reference,
			l.PostedBy,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s line %d: %w", l.TransactionID, l.LineNumber, err)
		}
	}
	return nil
}

func scanTransactionLines(rows *sql.Rows) ([]model.TransactionLine, error) {
	var lines []model.TransactionLine
	for rows.Next() {
		var l model.TransactionLine
		var date, debit, credit string
		if err := rows.Scan(&l.TransactionID, &l.LineNumber, &date, &l.AccountID,
			&debit, &credit, &l.Description, &l.Reference, &l.PostedBy); err != nil {
			return nil, fmt.Errorf("failed to scan transaction line: %w", err)
		}

		var err error
		if l.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid transaction date %q: %w", date, err)
		}
		if l.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("invalid debit amount %q: %w", debit, err)
		}
		if l.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("invalid credit amount %q: %w", credit, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const transactionColumns = `
	transaction_id, line_number, transaction_date, account_id, debit, credit,
	COALESCE(description, ''), COALESCE(reference_number, ''), COALESCE(posted_by, '')
`

// TransactionsForPeriod returns all transaction lines dated within the period,
// ordered by date then transaction ID.
func (s *Store) TransactionsForPeriod(p model.Period) ([]model.TransactionLine, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_date >= ? AND transaction_date < ?
		ORDER BY transaction_date, transaction_id, line_number
	`

	from, to := periodBounds(p)
	rows, err := s.conn.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", p, err)
	}
	defer rows.Close()

	return scanTransactionLines(rows)
}

// TransactionsForAccountPeriod returns the account's transaction lines dated
// within the period.
func (s *Store) TransactionsForAccountPeriod(accountID string, p model.Period) ([]model.TransactionLine, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = ? AND transaction_date >= ? AND transaction_date < ?
		ORDER BY transaction_date, transaction_id, line_number
	`

	from, to := periodBounds(p)
	rows, err := s.conn.Query(query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return scanTransactionLines(rows)
}

// TransactionsForAccount returns every transaction line for the account in
// (date, transaction ID) order, optionally bounded by from/to dates.
func (s *Store) TransactionsForAccount(accountID string, from, to time.Time) ([]model.TransactionLine, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = ?
	`
	args := []interface{}{accountID}

	if !from.IsZero() {
		query += ` AND transaction_date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if !to.IsZero() {
		query += ` AND transaction_date <= ?`
		args = append(args, to.Format(dateLayout))
	}
	query += ` ORDER BY transaction_date, transaction_id, line_number`

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account activity for %s: %w", accountID, err)
	}
	defer rows.Close()

	return scanTransactionLines(rows)
}

// TransactionsThrough returns all transaction lines dated at or before asOf.
func (s *Store) TransactionsThrough(asOf time.Time) ([]model.TransactionLine, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_date <= ?
		ORDER BY transaction_date, transaction_id, line_number
	`

	rows, err := s.conn.Query(query, asOf.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions through %s: %w", asOf.Format(dateLayout), err)
	}
	defer rows.Close()

	return scanTransactionLines(rows)
}

// AllTransactions returns every transaction line in the store.
func (s *Store) AllTransactions() ([]model.TransactionLine, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY transaction_date, transaction_id, line_number
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactionLines(rows)
}

// TransactionIDs returns the set of all transaction IDs in the books.
func (s *Store) TransactionIDs() (map[string]bool, error) {
	rows, err := s.conn.Query(`SELECT DISTINCT transaction_id FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction ID: %w", err)
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// InsertBankStatementLines appends imported bank statement lines within tx.
func (s *Store) InsertBankStatementLines(tx *sql.Tx, lines []model.BankStatementLine) error {
	query := `
		INSERT INTO bank_statements (transaction_date, description, amount, transaction_id, cleared_flag, statement_reference)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, l := range lines {
		txnID := sql.NullString{String: l.TransactionID, Valid: l.TransactionID != ""}
		cleared := 0
		if l.Cleared {
			cleared = 1
		}
		if _, err := tx.Exec(query,
			l.Date.Format(dateLayout),
			l.Description,
			l.Amount.String(),
			txnID,
			cleared,
			l.Reference,
		); err != nil {
			return fmt.Errorf("failed to insert bank statement line: %w", err)
		}
	}
	return nil
}

func scanBankLines(rows *sql.Rows) ([]model.BankStatementLine, error) {
	var lines []model.BankStatementLine
	for rows.Next() {
		var l model.BankStatementLine
		var date, amount string
		var cleared int
		if err := rows.Scan(&l.StatementID, &date, &l.Description, &amount,
			&l.TransactionID, &cleared, &l.Reference); err != nil {
			return nil, fmt.Errorf("failed to scan bank statement line: %w", err)
		}

		var err error
		if l.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid bank statement date %q: %w", date, err)
		}
		if l.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid bank statement amount %q: %w", amount, err)
		}
		l.Cleared = cleared != 0
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const bankColumns = `
	statement_id, transaction_date, COALESCE(description, ''), amount,
	COALESCE(transaction_id, ''), cleared_flag, COALESCE(statement_reference, '')
`

// BankLinesForPeriod returns bank statement lines dated within the period.
func (s *Store) BankLinesForPeriod(p model.Period) ([]model.BankStatementLine, error) {
	query := `
		SELECT ` + bankColumns + `
		FROM bank_statements
		WHERE transaction_date >= ? AND transaction_date < ?
		ORDER BY transaction_date, statement_id
	`

	from, to := periodBounds(p)
	rows, err := s.conn.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank statements for %s: %w", p, err)
	}
	defer rows.Close()

	return scanBankLines(rows)
}

// AllBankLines returns every bank statement line in the store.
func (s *Store) AllBankLines() ([]model.BankStatementLine, error) {
	query := `
		SELECT ` + bankColumns + `
		FROM bank_statements
		ORDER BY transaction_date, statement_id
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank statements: %w", err)
	}
	defer rows.Close()

	return scanBankLines(rows)
}

// UpsertGLEntry replaces the general ledger row for the entry's account and
// period with freshly computed totals.
func (s *Store) UpsertGLEntry(tx *sql.Tx, e model.GeneralLedgerEntry) error {
	query := `
		INSERT INTO general_ledger (account_id, period_year, period_month, total_debits, total_credits, ending_balance, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id, period_year, period_month) DO UPDATE SET
			total_debits = excluded.total_debits,
			total_credits = excluded.total_credits,
			ending_balance = excluded.ending_balance,
			last_updated = CURRENT_TIMESTAMP
	`

	_, err := tx.Exec(query,
		e.AccountID,
		e.Period.Year,
		e.Period.Month,
		e.TotalDebits.String(),
		e.TotalCredits.String(),
		e.EndingBalance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert GL entry for %s %s: %w", e.AccountID, e.Period, err)
	}

	return nil
}

func scanGLEntries(rows *sql.Rows) ([]model.GeneralLedgerEntry, error) {
	var entries []model.GeneralLedgerEntry
	for rows.Next() {
		var e model.GeneralLedgerEntry
		var debits, credits, balance string
		if err := rows.Scan(&e.AccountID, &e.Period.Year, &e.Period.Month,
			&debits, &credits, &balance, &e.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan GL entry: %w", err)
		}

		var err error
		if e.TotalDebits, err = decimal.NewFromString(debits); err != nil {
			return nil, fmt.Errorf("invalid GL debits %q: %w", debits, err)
		}
		if e.TotalCredits, err = decimal.NewFromString(credits); err != nil {
			return nil, fmt.Errorf("invalid GL credits %q: %w", credits, err)
		}
		if e.EndingBalance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("invalid GL balance %q: %w", balance, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const glColumns = `
	account_id, period_year, period_month, total_debits, total_credits, ending_balance, last_updated
`

// GLEntry returns the general ledger entry for one account and period, or
// nil if the period has not been posted for that account.
func (s *Store) GLEntry(accountID string, p model.Period) (*model.GeneralLedgerEntry, error) {
	query := `
		SELECT ` + glColumns + `
		FROM general_ledger
		WHERE account_id = ? AND period_year = ? AND period_month = ?
	`

	rows, err := s.conn.Query(query, accountID, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanGLEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// GLEntriesForPeriod returns the period's general ledger entries keyed by
// account ID.
func (s *Store) GLEntriesForPeriod(p model.Period) (map[string]model.GeneralLedgerEntry, error) {
	query := `
		SELECT ` + glColumns + `
		FROM general_ledger
		WHERE period_year = ? AND period_month = ?
		ORDER BY account_id
	`

	rows, err := s.conn.Query(query, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL entries for %s: %w", p, err)
	}
	defer rows.Close()

	entries, err := scanGLEntries(rows)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[string]model.GeneralLedgerEntry, len(entries))
	for _, e := range entries {
		byAccount[e.AccountID] = e
	}
	return byAccount, nil
}

// AllGLEntries returns every general ledger entry in the store.
func (s *Store) AllGLEntries() ([]model.GeneralLedgerEntry, error) {
	query := `
		SELECT ` + glColumns + `
		FROM general_ledger
		ORDER BY account_id, period_year, period_month
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL entries: %w", err)
	}
	defer rows.Close()

	return scanGLEntries(rows)
}

// UpsertReconciliation replaces the stored reconciliation for the report's
// account and period.
func (s *Store) UpsertReconciliation(tx *sql.Tx, rec *model.Reconciliation) error {
	query := `
		INSERT INTO reconciliations
		(account_id, period_year, period_month, book_balance, bank_balance,
		 outstanding_items_count, outstanding_items_amount,
		 bank_only_items_count, bank_only_items_amount,
		 variance, reconciled_flag, completed_by, completed_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id, period_year, period_month) DO UPDATE SET
			book_balance = excluded.book_balance,
			bank_balance = excluded.bank_balance,
			outstanding_items_count = excluded.outstanding_items_count,
			outstanding_items_amount = excluded.outstanding_items_amount,
			bank_only_items_count = excluded.bank_only_items_count,
			bank_only_items_amount = excluded.bank_only_items_amount,
			variance = excluded.variance,
			reconciled_flag = excluded.reconciled_flag,
			completed_by = excluded.completed_by,
			completed_timestamp = CURRENT_TIMESTAMP
	`

	reconciled := 0
	if rec.Reconciled {
		reconciled = 1
	}

	_, err := tx.Exec(query,
		rec.AccountID,
		rec.Period.Year,
		rec.Period.Month,
		rec.BookBalance.String(),
		rec.BankBalance.String(),
		len(rec.Outstanding),
		rec.OutstandingAmount.String(),
		len(rec.BankOnly),
		rec.BankOnlyAmount.String(),
		rec.Variance.String(),
		reconciled,
		rec.CompletedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert reconciliation for %s %s: %w", rec.AccountID, rec.Period, err)
	}

	return nil
}

// StoredReconciliation is the persisted summary row of one matcher run.
// Item detail is not stored; re-running the matcher recomputes it.
type StoredReconciliation struct {
	AccountID         string
	Period            model.Period
	BookBalance       decimal.Decimal
	BankBalance       decimal.Decimal
	OutstandingCount  int
	OutstandingAmount decimal.Decimal
	BankOnlyCount     int
	BankOnlyAmount    decimal.Decimal
	Variance          decimal.Decimal
	Reconciled        bool
	CompletedBy       string
}

// GetReconciliation returns the stored reconciliation summary for one
// account and period, or nil if the pair has never been reconciled.
func (s *Store) GetReconciliation(accountID string, p model.Period) (*StoredReconciliation, error) {
	query := `
		SELECT account_id, period_year, period_month, book_balance, bank_balance,
		       outstanding_items_count, outstanding_items_amount,
		       bank_only_items_count, bank_only_items_amount,
		       variance, reconciled_flag, COALESCE(completed_by, '')
		FROM reconciliations
		WHERE account_id = ? AND period_year = ? AND period_month = ?
	`

	var rec StoredReconciliation
	var book, bank, outstanding, bankOnly, variance string
	var reconciled int

	err := s.conn.QueryRow(query, accountID, p.Year, p.Month).Scan(
		&rec.AccountID,
		&rec.Period.Year,
		&rec.Period.Month,
		&book,
		&bank,
		&rec.OutstandingCount,
		&outstanding,
		&rec.BankOnlyCount,
		&bankOnly,
		&variance,
		&reconciled,
		&rec.CompletedBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation for %s %s: %w", accountID, p, err)
	}

	if rec.BookBalance, err = decimal.NewFromString(book); err != nil {
		return nil, fmt.Errorf("invalid book balance %q: %w", book, err)
	}
	if rec.BankBalance, err = decimal.NewFromString(bank); err != nil {
		return nil, fmt.Errorf("invalid bank balance %q: %w", bank, err)
	}
	if rec.OutstandingAmount, err = decimal.NewFromString(outstanding); err != nil {
		return nil, fmt.Errorf("invalid outstanding amount %q: %w", outstanding, err)
	}
	if rec.BankOnlyAmount, err = decimal.NewFromString(bankOnly); err != nil {
		return nil, fmt.Errorf("invalid bank-only amount %q: %w", bankOnly, err)
	}
	if rec.Variance, err = decimal.NewFromString(variance); err != nil {
		return nil, fmt.Errorf("invalid variance %q: %w", variance, err)
	}
	rec.Reconciled = reconciled != 0

	return &rec, nil
}

// SetCloseStatus records the close state of a fiscal period.
func (s *Store) SetCloseStatus(p model.Period, status model.CloseStatus, closedBy string) error {
	query := `
		INSERT INTO period_close_status (fiscal_year, fiscal_period, close_date, close_status, closed_by, close_timestamp)
		VALUES (?, ?, DATE('now'), ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(fiscal_year, fiscal_period) DO UPDATE SET
			close_date = DATE('now'),
			close_status = excluded.close_status,
			closed_by = excluded.closed_by,
			close_timestamp = CURRENT_TIMESTAMP
	`

	if _, err := s.conn.Exec(query, p.Year, p.Month, string(status), closedBy); err != nil {
		return fmt.Errorf("failed to set close status for %s: %w", p, err)
	}
	return nil
}

// CloseStatus returns the close state of a fiscal period. Periods with no
// recorded state are Open.
func (s *Store) CloseStatus(p model.Period) (model.CloseStatus, error) {
	query := `
		SELECT close_status FROM period_close_status
		WHERE fiscal_year = ? AND fiscal_period = ?
	`

	var status string
	err := s.conn.QueryRow(query, p.Year, p.Month).Scan(&status)
	if err == sql.ErrNoRows {
		return model.CloseStatusOpen, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query close status for %s: %w", p, err)
	}

	return model.CloseStatus(status), nil
}

// periodBounds returns the [from, to) date strings covering the period.
func periodBounds(p model.Period) (string, string) {
	from := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return from.Format(dateLayout), to.Format(dateLayout)
}
