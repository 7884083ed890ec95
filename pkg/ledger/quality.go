package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// UnbalancedTransaction flags a transaction whose debits and credits differ
// by more than the tolerance.
type UnbalancedTransaction struct {
	TransactionID string
	TotalDebits   decimal.Decimal
	TotalCredits  decimal.Decimal
	Variance      decimal.Decimal
}

// IntegrityReport is the outcome of a data-quality scan over the stored
// relations. Findings are flagged, never dropped or repaired; an empty
// report means the ledger is internally consistent.
type IntegrityReport struct {
	Unbalanced           []UnbalancedTransaction
	OrphanedTransactions []string // transaction IDs referencing unknown accounts
	UnresolvedBankRefs   []int64  // statement IDs whose transaction reference resolves to nothing
	GLMatchesBooks       bool     // GL totals equal transaction totals
	TransactionCount     int
	BankLineCount        int
}

// Clean reports whether the scan found no issues.
func (r *IntegrityReport) Clean() bool {
	return len(r.Unbalanced) == 0 &&
		len(r.OrphanedTransactions) == 0 &&
		len(r.UnresolvedBankRefs) == 0 &&
		r.GLMatchesBooks
}

// CheckIntegrity scans the store for ledger inconsistencies: unbalanced
// transactions, orphaned account references, bank lines referencing
// transactions that don't exist, and drift between general ledger totals and
// transaction totals. Constraint-violating records already in the store are
// surfaced as report rows, not errors.
func (s *Service) CheckIntegrity() (*IntegrityReport, error) {
	lines, err := s.store.AllTransactions()
	if err != nil {
		return nil, err
	}
	accounts, err := s.store.AccountsByID()
	if err != nil {
		return nil, err
	}
	bankLines, err := s.store.AllBankLines()
	if err != nil {
		return nil, err
	}
	glEntries, err := s.store.AllGLEntries()
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{
		BankLineCount: len(bankLines),
	}

	type totals struct {
		debits  decimal.Decimal
		credits decimal.Decimal
	}
	perTxn := make(map[string]totals)
	var txnOrder []string
	orphaned := make(map[string]bool)
	txnDebits := decimal.Zero
	txnCredits := decimal.Zero

	for _, line := range lines {
		t, ok := perTxn[line.TransactionID]
		if !ok {
			txnOrder = append(txnOrder, line.TransactionID)
			t = totals{debits: decimal.Zero, credits: decimal.Zero}
		}
		t.debits = t.debits.Add(line.Debit)
		t.credits = t.credits.Add(line.Credit)
		perTxn[line.TransactionID] = t

		txnDebits = txnDebits.Add(line.Debit)
		txnCredits = txnCredits.Add(line.Credit)

		if _, known := accounts[line.AccountID]; !known && !orphaned[line.TransactionID] {
			orphaned[line.TransactionID] = true
			report.OrphanedTransactions = append(report.OrphanedTransactions, line.TransactionID)
		}
	}
	report.TransactionCount = len(txnOrder)

	for _, id := range txnOrder {
		t := perTxn[id]
		if diff := t.debits.Sub(t.credits); !model.WithinTolerance(diff) {
			report.Unbalanced = append(report.Unbalanced, UnbalancedTransaction{
				TransactionID: id,
				TotalDebits:   t.debits,
				TotalCredits:  t.credits,
				Variance:      diff.Abs(),
			})
		}
	}

	for _, line := range bankLines {
		if line.TransactionID == "" {
			continue
		}
		if _, ok := perTxn[line.TransactionID]; !ok {
			report.UnresolvedBankRefs = append(report.UnresolvedBankRefs, line.StatementID)
		}
	}

	glDebits := decimal.Zero
	glCredits := decimal.Zero
	for _, e := range glEntries {
		glDebits = glDebits.Add(e.TotalDebits)
		glCredits = glCredits.Add(e.TotalCredits)
	}
	report.GLMatchesBooks = len(glEntries) == 0 ||
		(model.WithinTolerance(txnDebits.Sub(glDebits)) && model.WithinTolerance(txnCredits.Sub(glCredits)))

	return report, nil
}
