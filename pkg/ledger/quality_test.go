package ledger

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// insertRaw writes transaction rows over a second connection with foreign
// keys disabled, simulating records that predate constraint enforcement.
func insertRaw(t *testing.T, s *Service, rows [][]interface{}) {
	t.Helper()

	raw, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", s.Store().Conn().GetPath()))
	require.NoError(t, err)
	defer raw.Close()

	for _, row := range rows {
		_, err := raw.Exec(`
			INSERT INTO transactions (transaction_id, line_number, transaction_date, account_id, debit, credit, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, row...)
		require.NoError(t, err)
	}
}

func TestCheckIntegrity_CleanLedger(t *testing.T) {
	s := newTestService(t)
	period := model.Period{Year: 2026, Month: 1}

	acceptDouble(t, s, "TXN-A", "2026-01-05", "1000", "4000", "100")
	acceptDouble(t, s, "TXN-B", "2026-01-10", "6200", "1000", "40")
	_, err := s.PostPeriod(period)
	require.NoError(t, err)

	report, err := s.CheckIntegrity()
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 2, report.TransactionCount)
	assert.True(t, report.GLMatchesBooks)
}

func TestCheckIntegrity_FlagsUnbalancedTransaction(t *testing.T) {
	s := newTestService(t)

	insertRaw(t, s, [][]interface{}{
		{"LEGACY-1", 1, "2026-01-05", "1000", "50", "0", "Legacy row"},
		{"LEGACY-1", 2, "2026-01-05", "4000", "0", "49", "Legacy row"},
	})

	report, err := s.CheckIntegrity()
	require.NoError(t, err)
	assert.False(t, report.Clean())
	require.Len(t, report.Unbalanced, 1)
	assert.Equal(t, "LEGACY-1", report.Unbalanced[0].TransactionID)
	assert.Equal(t, "1", report.Unbalanced[0].Variance.String())
}

func TestCheckIntegrity_FlagsOrphanedTransaction(t *testing.T) {
	s := newTestService(t)

	insertRaw(t, s, [][]interface{}{
		{"ORPHAN-1", 1, "2026-01-05", "8888", "25", "0", "Unknown account"},
		{"ORPHAN-1", 2, "2026-01-05", "4000", "0", "25", "Unknown account"},
	})

	report, err := s.CheckIntegrity()
	require.NoError(t, err)
	assert.False(t, report.Clean())
	assert.Equal(t, []string{"ORPHAN-1"}, report.OrphanedTransactions)
	assert.Empty(t, report.Unbalanced)
}

func TestCheckIntegrity_FlagsUnresolvedBankRefs(t *testing.T) {
	s := newTestService(t)

	acceptDouble(t, s, "TXN-A", "2026-01-05", "1000", "4000", "100")
	require.NoError(t, s.ImportBankStatements([]model.BankStatementLine{
		bankLine(t, "2026-01-06", "TXN-A", "100"),
		bankLine(t, "2026-01-08", "GHOST", "30"),
		bankLine(t, "2026-01-09", "", "-5"),
	}))

	report, err := s.CheckIntegrity()
	require.NoError(t, err)
	assert.False(t, report.Clean())
	require.Len(t, report.UnresolvedBankRefs, 1)
	assert.Equal(t, 3, report.BankLineCount)
}

func TestCheckIntegrity_FlagsGLDrift(t *testing.T) {
	s := newTestService(t)
	period := model.Period{Year: 2026, Month: 1}

	acceptDouble(t, s, "TXN-A", "2026-01-05", "1000", "4000", "100")
	_, err := s.PostPeriod(period)
	require.NoError(t, err)

	// A transaction accepted after posting leaves the GL stale.
	acceptDouble(t, s, "TXN-B", "2026-01-10", "6200", "1000", "40")

	report, err := s.CheckIntegrity()
	require.NoError(t, err)
	assert.False(t, report.GLMatchesBooks)
	assert.False(t, report.Clean())

	// Re-posting brings them back in line.
	_, err = s.PostPeriod(period)
	require.NoError(t, err)
	report, err = s.CheckIntegrity()
	require.NoError(t, err)
	assert.True(t, report.GLMatchesBooks)
}

func TestCheckIntegrity_EmptyGLIsNotDrift(t *testing.T) {
	s := newTestService(t)

	acceptDouble(t, s, "TXN-A", "2026-01-05", "1000", "4000", "100")

	report, err := s.CheckIntegrity()
	require.NoError(t, err)
	assert.True(t, report.GLMatchesBooks)
	assert.True(t, report.Clean())
}
