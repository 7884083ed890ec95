package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTransactions(t *testing.T) {
	input := `transaction_id,date,description,debit,credit,account_id
TXN-1,2026-01-05,Cash sale,500.00,,1000
TXN-1,2026-01-05,Cash sale,,500.00,4000
TXN-2,2026-01-10,Rent,bad-amount,,6200
`
	raws, err := ReadTransactions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raws, 3)

	assert.Equal(t, "TXN-1", raws[0].TransactionID)
	assert.Equal(t, "2026-01-05", raws[0].Date)
	assert.Equal(t, "500.00", raws[0].Debit)
	assert.Equal(t, "", raws[0].Credit)
	assert.Equal(t, "1000", raws[0].AccountID)

	// Content is not interpreted here; the validator decides later.
	assert.Equal(t, "bad-amount", raws[2].Debit)
}

func TestReadTransactions_HeaderOnly(t *testing.T) {
	raws, err := ReadTransactions(strings.NewReader("transaction_id,date,description,debit,credit,account_id\n"))
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestReadTransactions_WrongFieldCount(t *testing.T) {
	input := `transaction_id,date,description,debit,credit,account_id
TXN-1,2026-01-05,Missing fields
`
	_, err := ReadTransactions(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadBankStatements(t *testing.T) {
	input := `date,description,amount,transaction_id,cleared
2026-01-06,Deposit,500.00,TXN-1,true
2026-01-12,Bank fee,-12.50,,false
2026-01-15,Wire in,30,GHOST,
`
	lines, err := ReadBankStatements(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "2026-01-06", lines[0].Date.Format("2006-01-02"))
	assert.Equal(t, "500", lines[0].Amount.String())
	assert.Equal(t, "TXN-1", lines[0].TransactionID)
	assert.True(t, lines[0].Cleared)

	assert.Equal(t, "", lines[1].TransactionID)
	assert.False(t, lines[1].Cleared)

	// Blank cleared flag defaults to cleared.
	assert.True(t, lines[2].Cleared)
}

func TestReadBankStatements_MalformedRowIsError(t *testing.T) {
	input := `date,description,amount,transaction_id,cleared
2026-01-06,Deposit,not-a-number,TXN-1,true
`
	_, err := ReadBankStatements(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadBankStatements_BadDateIsError(t *testing.T) {
	input := `date,description,amount,transaction_id,cleared
06/01/2026,Deposit,500.00,TXN-1,true
`
	_, err := ReadBankStatements(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadLegacyTransactions(t *testing.T) {
	input := `id,date,account,description,amount,department,status
1,2026-01-05,ACC-1000,Cash receipt,500.00,SALES,POSTED
2,2026-01-08,1000,,-120.50,Sales Dept,POSTED
3,2026-01-15,ACC-1000,Pending deposit,40,SALES,PENDING
`
	txns, err := ReadLegacyTransactions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, int64(1), txns[0].ID)
	assert.Equal(t, "ACC-1000", txns[0].Account)
	assert.Equal(t, "500", txns[0].Amount.String())
	assert.Equal(t, "POSTED", txns[0].Status)

	assert.Equal(t, "", txns[1].Description)
	assert.Equal(t, "-120.5", txns[1].Amount.String())
	assert.Equal(t, "PENDING", txns[2].Status)
}

func TestReadLegacyTransactions_BadIDIsError(t *testing.T) {
	input := `id,date,account,description,amount,department,status
abc,2026-01-05,ACC-1000,Cash receipt,500.00,SALES,POSTED
`
	_, err := ReadLegacyTransactions(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
