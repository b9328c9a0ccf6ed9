package main

import (
	"os"

	"github.com/wonny/newslens/cmd/newslens/commands"
)

// main is the entry point for the NewsLens CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/newslens [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
