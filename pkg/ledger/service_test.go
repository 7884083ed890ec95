package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

func TestAcceptBatch_PersistsBalancedTransaction(t *testing.T) {
	s := newTestService(t)

	result, err := s.AcceptBatch(rawDouble("TXN-001", "2026-01-05", "Sale", "1000", "4000", "250.00"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)
	assert.Equal(t, 2, result.AcceptedLines)
	assert.Empty(t, result.Rejections)

	lines, err := s.Store().AllTransactions()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "TXN-001", lines[0].TransactionID)
	assert.Equal(t, "TEST", lines[0].PostedBy)
}

func TestAcceptBatch_ContinuesPastRejections(t *testing.T) {
	s := newTestService(t)

	raws := rawDouble("GOOD-1", "2026-01-05", "Sale", "1000", "4000", "100")
	raws = append(raws, []RawLine{
		{TransactionID: "BAD-1", Date: "2026-01-06", Description: "Off by one", Debit: "50", Credit: "0", AccountID: "1000"},
		{TransactionID: "BAD-1", Date: "2026-01-06", Description: "Off by one", Debit: "0", Credit: "49", AccountID: "4000"},
	}...)
	raws = append(raws, rawDouble("GOOD-2", "2026-01-07", "Rent", "6200", "1000", "75")...)

	result, err := s.AcceptBatch(raws)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	require.Len(t, result.Rejections, 1)
	assert.Equal(t, "BAD-1", result.Rejections[0].TransactionID)
	assert.Equal(t, ReasonUnbalanced, result.Rejections[0].Reason)

	ids, err := s.Store().TransactionIDs()
	require.NoError(t, err)
	assert.True(t, ids["GOOD-1"])
	assert.True(t, ids["GOOD-2"])
	assert.False(t, ids["BAD-1"])
}

func TestAcceptBatch_RejectedTransactionLeavesNoAuditEvent(t *testing.T) {
	s := newTestService(t)

	result, err := s.AcceptBatch([]RawLine{
		{TransactionID: "BAD-1", Date: "2026-01-06", Description: "Unknown", Debit: "10", Credit: "0", AccountID: "9999"},
		{TransactionID: "BAD-1", Date: "2026-01-06", Description: "Unknown", Debit: "0", Credit: "10", AccountID: "4000"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Accepted)
	require.Len(t, result.Rejections, 1)

	events, err := s.audit.Query(time.Time{}, 100)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAcceptBatch_StoreFailureRollsBackTransactionAndAudit(t *testing.T) {
	s := newTestService(t)

	raws := rawDouble("DUP-1", "2026-01-05", "Sale", "1000", "4000", "100")
	_, err := s.AcceptBatch(raws)
	require.NoError(t, err)

	// The same (transaction_id, line_number) pair violates the primary key,
	// so the second run fails mid-write and must roll back whole.
	result, err := s.AcceptBatch(raws)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DUP-1")
	assert.Equal(t, 0, result.Accepted)

	lines, err := s.Store().AllTransactions()
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	events, err := s.audit.Query(time.Time{}, 100)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAcceptBatch_AuditEventPerAcceptedTransaction(t *testing.T) {
	s := newTestService(t)

	raws := rawDouble("TXN-A", "2026-01-05", "Sale", "1000", "4000", "100")
	raws = append(raws, rawDouble("TXN-B", "2026-01-06", "Rent", "6200", "1000", "40")...)
	_, err := s.AcceptBatch(raws)
	require.NoError(t, err)

	events, err := s.audit.Query(time.Time{}, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, model.AuditInsert, e.Type)
		assert.Equal(t, "transactions", e.Table)
		assert.Equal(t, "TEST", e.Actor)
		assert.Equal(t, "test-run", e.RunID)
	}
}

func TestImportBankStatements_Atomic(t *testing.T) {
	s := newTestService(t)

	lines := []model.BankStatementLine{
		bankLine(t, "2026-01-10", "TXN-001", "100.00"),
		bankLine(t, "2026-01-12", "", "-35.50"),
	}
	require.NoError(t, s.ImportBankStatements(lines))

	stored, err := s.Store().AllBankLines()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "TXN-001", stored[0].TransactionID)
	assert.Equal(t, "", stored[1].TransactionID)
	assert.Equal(t, "-35.5", stored[1].Amount.String())

	events, err := s.audit.Query(time.Time{}, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "bank_statements", events[0].Table)
}

func TestImportBankStatements_EmptyIsNoOp(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.ImportBankStatements(nil))

	events, err := s.audit.Query(time.Time{}, 100)
	require.NoError(t, err)
	assert.Empty(t, events)
}
