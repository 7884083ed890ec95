package ledger

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// PostPeriod aggregates the period's transactions into general ledger
// entries, one per account with activity, and returns them keyed by account
// ID. Ending balance is total debits minus total credits.
//
// Posting is a pure derivation over the transactions table: re-running it for
// the same period replaces the previous entries with identical freshly
// computed sums, so it is safe to run any number of times.
func (s *Service) PostPeriod(p model.Period) (map[string]model.GeneralLedgerEntry, error) {
	lines, err := s.store.TransactionsForPeriod(p)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]model.GeneralLedgerEntry)
	for _, line := range lines {
		e, ok := entries[line.AccountID]
		if !ok {
			e = model.GeneralLedgerEntry{
				AccountID:    line.AccountID,
				Period:       p,
				TotalDebits:  decimal.Zero,
				TotalCredits: decimal.Zero,
			}
		}
		e.TotalDebits = e.TotalDebits.Add(line.Debit)
		e.TotalCredits = e.TotalCredits.Add(line.Credit)
		entries[line.AccountID] = e
	}

	for id, e := range entries {
		e.EndingBalance = e.TotalDebits.Sub(e.TotalCredits)
		entries[id] = e
	}

	err = s.store.Conn().Transaction(func(tx *sql.Tx) error {
		for _, e := range entries {
			if err := s.store.UpsertGLEntry(tx, e); err != nil {
				return err
			}
		}
		return s.audit.Record(tx, model.AuditPost, "general_ledger", "",
			fmt.Sprintf("Posted %d accounts to general ledger for %s", len(entries), p))
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
