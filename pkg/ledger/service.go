package ledger

import (
	"database/sql"
	"fmt"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/audit"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// Service coordinates writes to the schema store: transaction acceptance,
// bank statement import, GL posting and reconciliation. Each write commits
// together with its audit event or not at all.
type Service struct {
	store *Store
	audit *audit.Recorder
	actor string
}

// NewService creates a Service. actor is stamped on accepted transaction
// lines and reconciliation reports.
func NewService(store *Store, recorder *audit.Recorder, actor string) *Service {
	return &Service{store: store, audit: recorder, actor: actor}
}

// Store returns the underlying schema store.
func (s *Service) Store() *Store {
	return s.store
}

// BatchResult reports the outcome of one acceptance batch.
type BatchResult struct {
	Accepted      int // transactions committed
	AcceptedLines int
	Rejections    []Rejection
}

// AcceptBatch validates and persists a batch of raw transaction lines.
//
// Each transaction is validated and written independently: a rejected
// transaction is reported in the result and the batch continues. A store
// failure is fatal; the in-flight transaction rolls back (including its
// audit event) and the error returns alongside the counts committed so far.
func (s *Service) AcceptBatch(raws []RawLine) (*BatchResult, error) {
	accounts, err := s.store.AccountsByID()
	if err != nil {
		return nil, err
	}
	chart := make(ChartSet, len(accounts))
	for id := range accounts {
		chart[id] = true
	}

	result := &BatchResult{}
	for _, group := range GroupByTransaction(raws) {
		lines, rejection := ValidateTransaction(group, chart)
		if rejection != nil {
			result.Rejections = append(result.Rejections, *rejection)
			continue
		}

		for i := range lines {
			lines[i].PostedBy = s.actor
		}

		txnID := lines[0].TransactionID
		err := s.store.Conn().Transaction(func(tx *sql.Tx) error {
			if err := s.store.insertTransactionLines(tx, lines); err != nil {
				return err
			}
			return s.audit.Record(tx, model.AuditInsert, "transactions", txnID,
				fmt.Sprintf("Accepted transaction %s (%d lines)", txnID, len(lines)))
		})
		if err != nil {
			return result, fmt.Errorf("persisting transaction %s (after %d committed): %w",
				txnID, result.Accepted, err)
		}

		result.Accepted++
		result.AcceptedLines += len(lines)
	}

	return result, nil
}

// ImportBankStatements persists externally sourced bank statement lines.
// The import is atomic: all lines and the audit event, or nothing.
func (s *Service) ImportBankStatements(lines []model.BankStatementLine) error {
	if len(lines) == 0 {
		return nil
	}

	return s.store.Conn().Transaction(func(tx *sql.Tx) error {
		if err := s.store.InsertBankStatementLines(tx, lines); err != nil {
			return err
		}
		return s.audit.Record(tx, model.AuditInsert, "bank_statements", "",
			fmt.Sprintf("Imported %d bank statement lines", len(lines)))
	})
}
