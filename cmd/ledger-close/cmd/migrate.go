package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/ledger-close/pkg/importer"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/ledger"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/migration"
	"github.com/shunichi-ikebuchi/ledger-close/pkg/model"
)

var (
	migrateLegacy  string
	migrateMapping string
	migrateDryRun  bool
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a legacy system extract into the ledger",
	Long: `Migrate transactions from a legacy accounting system extract.

This command:
1. Assesses legacy data quality (missing descriptions, code variants,
   stuck statuses)
2. Normalizes account and department codes via the mapping YAML
3. Emits balanced transactions offset against the clearing account
4. Validates and accepts them through the standard validator

Example:
  ledger-close migrate --legacy legacy.csv --mapping config/legacy-mapping.yaml`,
	Run: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateLegacy, "legacy", "", "Legacy extract CSV (required)")
	migrateCmd.Flags().StringVar(&migrateMapping, "mapping", "", "Code mapping YAML (default from config)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Assess and transform without writing")

	migrateCmd.MarkFlagRequired("legacy")
}

func runMigrate(cmd *cobra.Command, args []string) {
	slog.Info("Starting legacy migration", "legacy", migrateLegacy, "dry_run", migrateDryRun)

	a, err := openApp()
	exitOnError(err, "failed to initialize")
	defer a.Close()

	f, err := os.Open(migrateLegacy)
	exitOnError(err, "failed to open legacy extract")
	legacy, err := importer.ReadLegacyTransactions(f)
	f.Close()
	exitOnError(err, "failed to read legacy extract")

	// Pre-migration assessment.
	quality := migration.AssessQuality(legacy)
	fmt.Printf("\n=== Legacy Data Quality ===\n")
	fmt.Printf("Total transactions:    %d\n", quality.Total)
	fmt.Printf("Missing descriptions:  %d\n", quality.MissingDescriptions)
	fmt.Printf("Account code variants: %d\n", len(quality.AccountCodeFormats))
	for _, code := range quality.AccountCodeFormats {
		fmt.Printf("  - %s\n", code)
	}
	fmt.Printf("Status distribution:\n")
	for status, count := range quality.StatusCounts {
		fmt.Printf("  - %-8s %d\n", status, count)
	}
	fmt.Printf("Quality score:         %.2f%%\n", quality.Score)

	mappingPath := migrateMapping
	if mappingPath == "" {
		mappingPath = a.cfg.MappingFile
	}
	mapping, err := migration.LoadMapping(mappingPath)
	exitOnError(err, "failed to load code mapping")

	raws, transform := mapping.Transform(legacy)
	fmt.Printf("\n=== Transformation ===\n")
	fmt.Printf("Migrated:           %d\n", transform.Migrated)
	fmt.Printf("Skipped (status):   %d\n", transform.SkippedStatus)
	fmt.Printf("Filled descriptions: %d\n", transform.FilledDescriptions)
	if len(transform.UnmappedAccounts) > 0 {
		fmt.Printf("Unmapped account codes (rows skipped):\n")
		for _, code := range transform.UnmappedAccounts {
			fmt.Printf("  - %s\n", code)
		}
	}

	if migrateDryRun {
		fmt.Println("\n[DRY RUN] No records written")
		return
	}

	exitOnError(a.store.SeedAccounts(ledger.DefaultChart()), "failed to seed chart of accounts")

	result, err := a.service.AcceptBatch(raws)
	if result != nil && len(result.Rejections) > 0 {
		fmt.Printf("\n=== Rejected Transactions ===\n")
		for _, r := range result.Rejections {
			fmt.Printf("  %s\n", r.Error())
		}
	}
	exitOnError(err, "failed to persist migrated transactions")

	exitOnError(a.recorder.Record(nil, model.AuditMigrate, "transactions", "",
		fmt.Sprintf("Legacy migration: %d transactions accepted, %d rejected",
			result.Accepted, len(result.Rejections))), "failed to record migration event")

	fmt.Printf("\nMigration complete: %d accepted, %d rejected\n",
		result.Accepted, len(result.Rejections))
	slog.Info("Migration completed",
		"accepted", result.Accepted,
		"rejected", len(result.Rejections),
	)
}
