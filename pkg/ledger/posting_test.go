package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

func TestPostPeriod_AggregatesPerAccount(t *testing.T) {
	s := newTestService(t)
	period := model.Period{Year: 2026, Month: 1}

	// Account 1000: 300 in debits, 120 in credits.
	acceptDouble(t, s, "P1", "2026-01-05", "1000", "4000", "300")
	acceptDouble(t, s, "P2", "2026-01-10", "6200", "1000", "120")

	entries, err := s.PostPeriod(period)
	require.NoError(t, err)

	cash, ok := entries["1000"]
	require.True(t, ok)
	assert.Equal(t, "300", cash.TotalDebits.String())
	assert.Equal(t, "120", cash.TotalCredits.String())
	assert.Equal(t, "180", cash.EndingBalance.String())

	revenue, ok := entries["4000"]
	require.True(t, ok)
	assert.Equal(t, "-300", revenue.EndingBalance.String())

	rent, ok := entries["6200"]
	require.True(t, ok)
	assert.Equal(t, "120", rent.EndingBalance.String())
}

func TestPostPeriod_OnlyAccountsWithActivity(t *testing.T) {
	s := newTestService(t)
	period := model.Period{Year: 2026, Month: 1}

	acceptDouble(t, s, "P1", "2026-01-05", "1000", "4000", "50")

	entries, err := s.PostPeriod(period)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NotContains(t, entries, "6200")
}

func TestPostPeriod_ExcludesOtherPeriods(t *testing.T) {
	s := newTestService(t)

	acceptDouble(t, s, "JAN", "2026-01-15", "1000", "4000", "100")
	acceptDouble(t, s, "FEB", "2026-02-01", "1000", "4000", "999")

	entries, err := s.PostPeriod(model.Period{Year: 2026, Month: 1})
	require.NoError(t, err)
	require.Contains(t, entries, "1000")
	assert.Equal(t, "100", entries["1000"].TotalDebits.String())
}

func TestPostPeriod_Idempotent(t *testing.T) {
	s := newTestService(t)
	period := model.Period{Year: 2026, Month: 1}

	acceptDouble(t, s, "P1", "2026-01-05", "1000", "4000", "300")
	acceptDouble(t, s, "P2", "2026-01-10", "6200", "1000", "120")

	first, err := s.PostPeriod(period)
	require.NoError(t, err)
	second, err := s.PostPeriod(period)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for id, e := range first {
		assert.True(t, e.TotalDebits.Equal(second[id].TotalDebits), "debits for %s", id)
		assert.True(t, e.TotalCredits.Equal(second[id].TotalCredits), "credits for %s", id)
		assert.True(t, e.EndingBalance.Equal(second[id].EndingBalance), "balance for %s", id)
	}

	// Re-posting replaces rows; it never accumulates duplicates.
	stored, err := s.Store().AllGLEntries()
	require.NoError(t, err)
	assert.Len(t, stored, len(first))
}

func TestPostPeriod_NewTransactionChangesRepostedTotals(t *testing.T) {
	s := newTestService(t)
	period := model.Period{Year: 2026, Month: 1}

	acceptDouble(t, s, "P1", "2026-01-05", "1000", "4000", "100")
	_, err := s.PostPeriod(period)
	require.NoError(t, err)

	acceptDouble(t, s, "P2", "2026-01-20", "1000", "4000", "25")
	entries, err := s.PostPeriod(period)
	require.NoError(t, err)
	assert.Equal(t, "125", entries["1000"].TotalDebits.String())

	stored, err := s.Store().GLEntry("1000", period)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "125", stored.TotalDebits.String())
}
