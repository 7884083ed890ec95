package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

// RawLine is one unvalidated transaction line as read from an input source
// (CSV, migration output). Amounts stay as strings until validation so a
// non-numeric value is reported as a rejection, not a load failure.
type RawLine struct {
	TransactionID string
	Date          string // YYYY-MM-DD
	Description   string
	Debit         string
	Credit        string
	AccountID     string
	Reference     string
}

// RejectionReason classifies why a transaction was not accepted.
type RejectionReason string

const (
	ReasonUnbalanced     RejectionReason = "Unbalanced"
	ReasonUnknownAccount RejectionReason = "UnknownAccount"
	ReasonMissingField   RejectionReason = "MissingField"
)

// Rejection reports one rejected transaction. Rejections are recoverable:
// the batch continues past them.
type Rejection struct {
	TransactionID string
	Reason        RejectionReason
	Detail        string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s [%s]: %s", r.Reason, r.TransactionID, r.Detail)
}

// AccountSet tests whether an account ID exists in the chart of accounts.
type AccountSet interface {
	Exists(id string) bool
}

// ChartSet is a map-backed AccountSet.
type ChartSet map[string]bool

// Exists implements AccountSet.
func (c ChartSet) Exists(id string) bool {
	return c[id]
}

// NewChartSet builds a ChartSet from account IDs.
func NewChartSet(ids ...string) ChartSet {
	set := make(ChartSet, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// GroupByTransaction groups raw lines by transaction ID, preserving the
// order in which IDs first appear.
func GroupByTransaction(raws []RawLine) [][]RawLine {
	groups := make(map[string][]RawLine)
	var order []string
	for _, raw := range raws {
		if _, seen := groups[raw.TransactionID]; !seen {
			order = append(order, raw.TransactionID)
		}
		groups[raw.TransactionID] = append(groups[raw.TransactionID], raw)
	}

	result := make([][]RawLine, 0, len(order))
	for _, id := range order {
		result = append(result, groups[id])
	}
	return result
}

// ValidateTransaction validates the lines of one transaction. On success it
// returns the parsed, numbered lines ready for insertion; on failure it
// returns the rejection describing the first violated rule.
//
// Rules, in the order checked:
//   - MissingField: absent/invalid date, empty description, absent or
//     non-numeric amounts, negative amounts.
//   - UnknownAccount: account reference not in the chart of accounts.
//   - Unbalanced: |sum(debit) - sum(credit)| exceeds the 0.01 tolerance.
func ValidateTransaction(raws []RawLine, accounts AccountSet) ([]model.TransactionLine, *Rejection) {
	if len(raws) == 0 {
		return nil, &Rejection{Reason: ReasonMissingField, Detail: "transaction has no lines"}
	}

	txnID := raws[0].TransactionID
	reject := func(reason RejectionReason, format string, args ...interface{}) ([]model.TransactionLine, *Rejection) {
		return nil, &Rejection{
			TransactionID: txnID,
			Reason:        reason,
			Detail:        fmt.Sprintf(format, args...),
		}
	}

	if txnID == "" {
		return reject(ReasonMissingField, "missing transaction ID")
	}

	lines := make([]model.TransactionLine, 0, len(raws))
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, raw := range raws {
		if strings.TrimSpace(raw.Date) == "" {
			return reject(ReasonMissingField, "line %d: missing date", i+1)
		}
		date, err := time.Parse(dateLayout, raw.Date)
		if err != nil {
			return reject(ReasonMissingField, "line %d: invalid date %q", i+1, raw.Date)
		}

		if strings.TrimSpace(raw.Description) == "" {
			return reject(ReasonMissingField, "line %d: missing description", i+1)
		}

		debit, debitAbsent, err := parseAmount(raw.Debit)
		if err != nil {
			return reject(ReasonMissingField, "line %d: non-numeric debit %q", i+1, raw.Debit)
		}
		credit, creditAbsent, err := parseAmount(raw.Credit)
		if err != nil {
			return reject(ReasonMissingField, "line %d: non-numeric credit %q", i+1, raw.Credit)
		}
		if debitAbsent && creditAbsent {
			return reject(ReasonMissingField, "line %d: both amounts absent", i+1)
		}
		if debit.IsNegative() || credit.IsNegative() {
			return reject(ReasonMissingField, "line %d: negative amount", i+1)
		}

		if !accounts.Exists(raw.AccountID) {
			return reject(ReasonUnknownAccount, "line %d: unknown account %q", i+1, raw.AccountID)
		}

		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)

		lines = append(lines, model.TransactionLine{
			TransactionID: txnID,
			LineNumber:    i + 1,
			Date:          date,
			AccountID:     raw.AccountID,
			Debit:         debit,
			Credit:        credit,
			Description:   raw.Description,
			Reference:     raw.Reference,
		})
	}

	if diff := totalDebit.Sub(totalCredit); !model.WithinTolerance(diff) {
		return reject(ReasonUnbalanced, "debits (%s) != credits (%s), variance %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2), diff.Abs().StringFixed(2))
	}

	return lines, nil
}

// parseAmount parses a raw amount field. An empty field is absent and parses
// as zero; whether that is acceptable depends on the other side of the line.
func parseAmount(s string) (amount decimal.Decimal, absent bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true, nil
	}
	amount, err = decimal.NewFromString(s)
	return amount, false, err
}
