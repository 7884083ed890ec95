package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/audit"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/db"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store := NewStore(conn)
	require.NoError(t, store.SeedAccounts(DefaultChart()))

	recorder := audit.NewRecorder(conn, "TEST", "test-run")
	return NewService(store, recorder, "TEST")
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

// acceptDouble accepts one balanced two-line transaction.
func acceptDouble(t *testing.T, s *Service, id, date, debitAcct, creditAcct, amount string) {
	t.Helper()
	result, err := s.AcceptBatch(rawDouble(id, date, "Test transaction", debitAcct, creditAcct, amount))
	require.NoError(t, err)
	require.Empty(t, result.Rejections)
	require.Equal(t, 1, result.Accepted)
}

func bankLine(t *testing.T, date, txnID, amount string) model.BankStatementLine {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return model.BankStatementLine{
		Date:          mustDate(t, date),
		Description:   "Bank line",
		Amount:        amt,
		TransactionID: txnID,
	}
}
