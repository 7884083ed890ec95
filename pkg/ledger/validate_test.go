package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChart = NewChartSet("1000", "1100", "2000", "4000", "6000")

func rawDouble(id, date, desc, debitAcct, creditAcct, amount string) []RawLine {
	return []RawLine{
		{TransactionID: id, Date: date, Description: desc, Debit: amount, Credit: "0", AccountID: debitAcct},
		{TransactionID: id, Date: date, Description: desc, Debit: "0", Credit: amount, AccountID: creditAcct},
	}
}

func TestValidateTransaction_Balanced(t *testing.T) {
	lines, rejection := ValidateTransaction(rawDouble("T1", "2026-01-05", "Customer payment", "1000", "4000", "100.00"), testChart)
	require.Nil(t, rejection)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].LineNumber)
	assert.Equal(t, 2, lines[1].LineNumber)
	assert.Equal(t, "100", lines[0].Debit.String())
	assert.Equal(t, "100", lines[1].Credit.String())
}

func TestValidateTransaction_Unbalanced(t *testing.T) {
	raws := []RawLine{
		{TransactionID: "T1", Date: "2026-01-05", Description: "Payment", Debit: "50", Credit: "0", AccountID: "1000"},
		{TransactionID: "T1", Date: "2026-01-05", Description: "Payment", Debit: "0", Credit: "49", AccountID: "4000"},
	}
	_, rejection := ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonUnbalanced, rejection.Reason)
	assert.Equal(t, "T1", rejection.TransactionID)
	assert.Contains(t, rejection.Detail, "1.00")
}

func TestValidateTransaction_ToleranceBoundary(t *testing.T) {
	// A 0.01 difference is within tolerance; 0.02 is not.
	raws := []RawLine{
		{TransactionID: "T1", Date: "2026-01-05", Description: "Rounding", Debit: "10.00", Credit: "0", AccountID: "1000"},
		{TransactionID: "T1", Date: "2026-01-05", Description: "Rounding", Debit: "0", Credit: "9.99", AccountID: "4000"},
	}
	_, rejection := ValidateTransaction(raws, testChart)
	assert.Nil(t, rejection)

	raws[1].Credit = "9.98"
	_, rejection = ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonUnbalanced, rejection.Reason)
}

func TestValidateTransaction_UnknownAccount(t *testing.T) {
	_, rejection := ValidateTransaction(rawDouble("T2", "2026-01-05", "Bad ref", "9999", "4000", "25.00"), testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonUnknownAccount, rejection.Reason)
	assert.Contains(t, rejection.Detail, "9999")
}

func TestValidateTransaction_MissingDate(t *testing.T) {
	raws := rawDouble("T3", "", "No date", "1000", "4000", "10")
	_, rejection := ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonMissingField, rejection.Reason)
}

func TestValidateTransaction_InvalidDate(t *testing.T) {
	raws := rawDouble("T3", "01/05/2026", "Wrong format", "1000", "4000", "10")
	_, rejection := ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonMissingField, rejection.Reason)
}

func TestValidateTransaction_MissingDescription(t *testing.T) {
	raws := rawDouble("T4", "2026-01-05", "", "1000", "4000", "10")
	_, rejection := ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonMissingField, rejection.Reason)
}

func TestValidateTransaction_NonNumericAmount(t *testing.T) {
	raws := []RawLine{
		{TransactionID: "T5", Date: "2026-01-05", Description: "Bad amount", Debit: "abc", Credit: "0", AccountID: "1000"},
		{TransactionID: "T5", Date: "2026-01-05", Description: "Bad amount", Debit: "0", Credit: "10", AccountID: "4000"},
	}
	_, rejection := ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonMissingField, rejection.Reason)
}

func TestValidateTransaction_BothAmountsAbsent(t *testing.T) {
	raws := []RawLine{
		{TransactionID: "T6", Date: "2026-01-05", Description: "Empty", Debit: "", Credit: "", AccountID: "1000"},
	}
	_, rejection := ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonMissingField, rejection.Reason)
}

func TestValidateTransaction_NegativeAmount(t *testing.T) {
	raws := []RawLine{
		{TransactionID: "T7", Date: "2026-01-05", Description: "Negative", Debit: "-10", Credit: "0", AccountID: "1000"},
		{TransactionID: "T7", Date: "2026-01-05", Description: "Negative", Debit: "0", Credit: "-10", AccountID: "4000"},
	}
	_, rejection := ValidateTransaction(raws, testChart)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonMissingField, rejection.Reason)
}

func TestValidateTransaction_MultiLine(t *testing.T) {
	// Split debit across two accounts against one credit.
	raws := []RawLine{
		{TransactionID: "T8", Date: "2026-01-10", Description: "Split", Debit: "60", Credit: "0", AccountID: "6000"},
		{TransactionID: "T8", Date: "2026-01-10", Description: "Split", Debit: "40", Credit: "0", AccountID: "6000"},
		{TransactionID: "T8", Date: "2026-01-10", Description: "Split", Debit: "0", Credit: "100", AccountID: "1000"},
	}
	lines, rejection := ValidateTransaction(raws, testChart)
	require.Nil(t, rejection)
	assert.Len(t, lines, 3)
}

func TestGroupByTransaction_PreservesOrder(t *testing.T) {
	raws := []RawLine{
		{TransactionID: "B"},
		{TransactionID: "A"},
		{TransactionID: "B"},
		{TransactionID: "C"},
	}
	groups := GroupByTransaction(raws)
	require.Len(t, groups, 3)
	assert.Equal(t, "B", groups[0][0].TransactionID)
	assert.Len(t, groups[0], 2)
	assert.Equal(t, "A", groups[1][0].TransactionID)
	assert.Equal(t, "C", groups[2][0].TransactionID)
}
