package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	auditLimit int
	auditSince string
)

// auditCmd represents the audit command.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Display the audit trail, newest first",
	Long: `Display recent audit events, newest first.

Example:
  ledger-close audit --limit 20
  ledger-close audit --since 2026-01-01`,
	Run: runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum events to display")
	auditCmd.Flags().StringVar(&auditSince, "since", "", "Only events at or after this date (YYYY-MM-DD)")
}

func runAudit(cmd *cobra.Command, args []string) {
	a, err := openApp()
	exitOnError(err, "failed to initialize")
	defer a.Close()

	var since time.Time
	if auditSince != "" {
		since, err = time.Parse("2006-01-02", auditSince)
		exitOnError(err, "invalid --since date")
	}

	events, err := a.recorder.Query(since, auditLimit)
	exitOnError(err, "failed to query audit log")

	fmt.Printf("\n=== Audit Trail ===\n")
	fmt.Printf("%-6s %-20s %-10s %-20s %s\n", "ID", "Timestamp", "Type", "Table", "Description")
	for _, e := range events {
		fmt.Printf("%-6d %-20s %-10s %-20s %s\n",
			e.ID,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Type,
			e.Table,
			e.Description,
		)
	}
	fmt.Printf("\n%d events\n", len(events))
}
