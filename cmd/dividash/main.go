// Package main - dividash CLI entry point
package main

import (
	"os"

	"github.com/tnammu/dividash/cmd/dividash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
