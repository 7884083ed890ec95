package ledger

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// Reconcile matches the account's book transactions for the period against
// the period's bank statement lines and stores the resulting report,
// replacing any previous reconciliation of the same account and period.
//
// Matching is exact-ID only: an item with no cross-reference is unmatched by
// definition. Both directions are anti-joins over indexed maps:
//
//   - outstanding: book transactions whose ID appears on no bank line;
//   - bank-only: bank lines whose transaction reference is absent or does
//     not resolve to any transaction in the books.
//
// Variance is sum(outstanding net amounts) - sum(bank-only amounts). Neither
// transactions nor bank statements are modified.
func (s *Service) Reconcile(accountID string, p model.Period) (*model.Reconciliation, error) {
	book, err := s.store.TransactionsForAccountPeriod(accountID, p)
	if err != nil {
		return nil, err
	}
	bank, err := s.store.BankLinesForPeriod(p)
	if err != nil {
		return nil, err
	}
	bookIDs, err := s.store.TransactionIDs()
	if err != nil {
		return nil, err
	}

	// Bank lines indexed by the transaction they reference.
	referenced := make(map[string]bool, len(bank))
	bankBalance := decimal.Zero
	for _, line := range bank {
		bankBalance = bankBalance.Add(line.Amount)
		if line.TransactionID != "" {
			referenced[line.TransactionID] = true
		}
	}

	rec := &model.Reconciliation{
		AccountID:         accountID,
		Period:            p,
		BankBalance:       bankBalance,
		BookBalance:       decimal.Zero,
		OutstandingAmount: decimal.Zero,
		BankOnlyAmount:    decimal.Zero,
		CompletedBy:       s.actor,
	}

	for _, line := range book {
		if referenced[line.TransactionID] {
			continue
		}
		rec.Outstanding = append(rec.Outstanding, line)
		rec.OutstandingAmount = rec.OutstandingAmount.Add(line.Net())
	}

	for _, line := range bank {
		if line.TransactionID != "" && bookIDs[line.TransactionID] {
			continue
		}
		rec.BankOnly = append(rec.BankOnly, line)
		rec.BankOnlyAmount = rec.BankOnlyAmount.Add(line.Amount)
	}

	if entry, err := s.store.GLEntry(accountID, p); err != nil {
		return nil, err
	} else if entry != nil {
		rec.BookBalance = entry.EndingBalance
	}

	rec.Variance = rec.OutstandingAmount.Sub(rec.BankOnlyAmount)
	rec.AdjustedBook = rec.BookBalance.Add(rec.BankOnlyAmount)
	rec.AdjustedBank = rec.BankBalance.Sub(rec.OutstandingAmount)
	rec.Reconciled = model.WithinTolerance(rec.Variance)

	err = s.store.Conn().Transaction(func(tx *sql.Tx) error {
		if err := s.store.UpsertReconciliation(tx, rec); err != nil {
			return err
		}
		return s.audit.Record(tx, model.AuditReconcile, "reconciliations", accountID,
			fmt.Sprintf("Reconciled account %s for %s: %d outstanding, %d bank-only, variance %s",
				accountID, p, len(rec.Outstanding), len(rec.BankOnly), rec.Variance.StringFixed(2)))
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}
