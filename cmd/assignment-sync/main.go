// Package main is the entry point for the assignment-sync CLI.
package main

import (
	"os"

	"github.com/akn101/assignmentsync/cmd/assignment-sync/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
