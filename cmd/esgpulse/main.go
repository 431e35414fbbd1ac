package main

import (
	"os"

	"github.com/wonny/esgpulse/cmd/esgpulse/commands"
)

// main is the entry point for the esgpulse CLI
// ⭐ single CLI entry point: go run ./cmd/esgpulse [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
