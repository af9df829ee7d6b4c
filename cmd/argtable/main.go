// Package main provides the argtable CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/argtable/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
