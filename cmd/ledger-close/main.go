// Package main is the entry point for the ledger-close CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/ledger-close/cmd/ledger-close/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
