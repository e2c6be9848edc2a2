// Package main provides the CLI entry point for dbt-lineage.
package main

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/dbt-lineage/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
