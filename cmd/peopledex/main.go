// Package main provides the entry point for the peopledex CLI.
package main

import (
	"os"

	"github.com/peopledex/peopledex/cmd/peopledex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
