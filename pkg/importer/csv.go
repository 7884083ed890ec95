// Package importer reads raw transaction, bank statement and legacy extract
// CSV files. It only parses structure; content validation belongs to the
// validator, so transaction amounts pass through as strings.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/migration"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

const dateLayout = "2006-01-02"

// Transaction CSV columns: id,date,description,debit,credit,account
const (
	txnNumFields = 6
	txnColID     = 0
	txnColDate   = 1
	txnColDesc   = 2
	txnColDebit  = 3
	txnColCredit = 4
	txnColAcct   = 5
)

// ReadTransactions reads a raw transaction CSV (header row expected) into
// raw lines for the validator. Field values are not interpreted here: a bad
// date or non-numeric amount surfaces later as a typed rejection instead of
// aborting the whole file.
func ReadTransactions(r io.Reader) ([]ledger.RawLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txnNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var raws []ledger.RawLine
	for _, rec := range records[1:] {
		raws = append(raws, ledger.RawLine{
			TransactionID: strings.TrimSpace(rec[txnColID]),
			Date:          strings.TrimSpace(rec[txnColDate]),
			Description:   strings.TrimSpace(rec[txnColDesc]),
			Debit:         strings.TrimSpace(rec[txnColDebit]),
			Credit:        strings.TrimSpace(rec[txnColCredit]),
			AccountID:     strings.TrimSpace(rec[txnColAcct]),
		})
	}
	return raws, nil
}

// Bank statement CSV columns: date,description,amount,transaction_id,cleared
const (
	bankNumFields  = 5
	bankColDate    = 0
	bankColDesc    = 1
	bankColAmount  = 2
	bankColTxnID   = 3
	bankColCleared = 4
)

// ReadBankStatements reads a bank statement CSV (header row expected). Bank
// files are authoritative, so a malformed row is an error, not a skippable
// record.
func ReadBankStatements(r io.Reader) ([]model.BankStatementLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = bankNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank statement CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var lines []model.BankStatementLine
	for i, rec := range records[1:] {
		line, err := parseBankRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func parseBankRow(rec []string) (model.BankStatementLine, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(rec[bankColDate]))
	if err != nil {
		return model.BankStatementLine{}, fmt.Errorf("parsing date %q: %w", rec[bankColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[bankColAmount]))
	if err != nil {
		return model.BankStatementLine{}, fmt.Errorf("parsing amount %q: %w", rec[bankColAmount], err)
	}

	cleared := true
	if raw := strings.TrimSpace(rec[bankColCleared]); raw != "" {
		cleared, err = strconv.ParseBool(raw)
		if err != nil {
			return model.BankStatementLine{}, fmt.Errorf("parsing cleared flag %q: %w", rec[bankColCleared], err)
		}
	}

	return model.BankStatementLine{
		Date:          date,
		Description:   strings.TrimSpace(rec[bankColDesc]),
		Amount:        amount,
		TransactionID: strings.TrimSpace(rec[bankColTxnID]),
		Cleared:       cleared,
	}, nil
}

// Legacy extract CSV columns: id,date,account,description,amount,dept,status
const (
	legacyNumFields = 7
	legacyColID     = 0
	legacyColDate   = 1
	legacyColAcct   = 2
	legacyColDesc   = 3
	legacyColAmount = 4
	legacyColDept   = 5
	legacyColStatus = 6
)

// ReadLegacyTransactions reads a legacy system extract CSV (header row
// expected) for migration.
func ReadLegacyTransactions(r io.Reader) ([]migration.LegacyTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = legacyNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading legacy CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []migration.LegacyTransaction
	for i, rec := range records[1:] {
		id, err := strconv.ParseInt(strings.TrimSpace(rec[legacyColID]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing id %q: %w", i+2, rec[legacyColID], err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[legacyColAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[legacyColAmount], err)
		}

		txns = append(txns, migration.LegacyTransaction{
			ID:          id,
			Date:        strings.TrimSpace(rec[legacyColDate]),
			Account:     strings.TrimSpace(rec[legacyColAcct]),
			Description: strings.TrimSpace(rec[legacyColDesc]),
			Amount:      amount,
			Department:  strings.TrimSpace(rec[legacyColDept]),
			Status:      strings.TrimSpace(rec[legacyColStatus]),
		})
	}
	return txns, nil
}
