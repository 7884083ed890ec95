package migration

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/ledger"
)

// StatusPosted is the only legacy status eligible for migration; PENDING and
// DRAFT rows stay in the legacy system.
const StatusPosted = "POSTED"

// missingDescription is the placeholder written where the legacy record had
// no description, so the gap stays visible after migration.
const missingDescription = "Migration - Description Required"

// LegacyTransaction is one row extracted from the legacy system, with its
// typical quality problems intact: inconsistent account and department
// codes, missing descriptions, signed single-sided amounts.
type LegacyTransaction struct {
	ID          int64
	Date        string // YYYY-MM-DD
	Account     string
	Description string
	Amount      decimal.Decimal // positive = debit, negative = credit
	Department  string
	Status      string
}

// QualityReport is the pre-migration assessment of a legacy extract.
type QualityReport struct {
	Total               int
	MissingDescriptions int
	AccountCodeFormats  []string // distinct legacy account codes, sorted
	StatusCounts        map[string]int
	PendingCount        int
	Score               float64 // (1 - missing/total) * 100, 2dp
}

// AssessQuality surveys a legacy extract for the issues the migration will
// have to handle.
func AssessQuality(legacy []LegacyTransaction) *QualityReport {
	report := &QualityReport{
		Total:        len(legacy),
		StatusCounts: make(map[string]int),
	}

	codes := make(map[string]bool)
	for _, t := range legacy {
		if t.Description == "" {
			report.MissingDescriptions++
		}
		codes[t.Account] = true
		report.StatusCounts[t.Status]++
	}
	report.PendingCount = report.StatusCounts["PENDING"]

	for code := range codes {
		report.AccountCodeFormats = append(report.AccountCodeFormats, code)
	}
	sort.Strings(report.AccountCodeFormats)

	if report.Total > 0 {
		score := (1 - float64(report.MissingDescriptions)/float64(report.Total)) * 100
		report.Score = float64(int(score*100+0.5)) / 100
	}

	return report
}

// TransformReport summarizes one transform run.
type TransformReport struct {
	Total              int
	Migrated           int
	SkippedStatus      int      // non-POSTED rows left behind
	UnmappedAccounts   []string // distinct legacy codes with no mapping, sorted
	FilledDescriptions int
}

// Transform converts POSTED legacy rows into raw transaction lines ready for
// the validator. Each legacy amount becomes a balanced two-line transaction:
// the mapped account on the amount's natural side and the clearing account
// on the other. Account codes and departments are standardized, missing
// descriptions filled with a placeholder, and IDs generated as TXN%06d from
// the legacy row ID. Rows whose account code has no mapping are flagged in
// the report and skipped, not silently dropped.
func (m *Mapping) Transform(legacy []LegacyTransaction) ([]ledger.RawLine, *TransformReport) {
	report := &TransformReport{Total: len(legacy)}
	unmapped := make(map[string]bool)

	var raws []ledger.RawLine
	for _, t := range legacy {
		if t.Status != StatusPosted {
			report.SkippedStatus++
			continue
		}

		accountID, ok := m.AccountID(t.Account)
		if !ok {
			if !unmapped[t.Account] {
				unmapped[t.Account] = true
				report.UnmappedAccounts = append(report.UnmappedAccounts, t.Account)
			}
			continue
		}

		description := t.Description
		if description == "" {
			description = missingDescription
			report.FilledDescriptions++
		}

		txnID := fmt.Sprintf("TXN%06d", t.ID)
		reference := fmt.Sprintf("LEGACY-%d/%s", t.ID, m.Department(t.Department))
		amount := t.Amount.Abs().String()

		mapped := ledger.RawLine{
			TransactionID: txnID,
			Date:          t.Date,
			Description:   description,
			AccountID:     accountID,
			Reference:     reference,
		}
		clearing := ledger.RawLine{
			TransactionID: txnID,
			Date:          t.Date,
			Description:   description,
			AccountID:     m.ClearingAccount,
			Reference:     reference,
		}

		if t.Amount.IsNegative() {
			mapped.Credit = amount
			clearing.Debit = amount
		} else {
			mapped.Debit = amount
			clearing.Credit = amount
		}

		raws = append(raws, mapped, clearing)
		report.Migrated++
	}

	sort.Strings(report.UnmappedAccounts)
	return raws, report
}
