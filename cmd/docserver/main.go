// Package main provides the entry point for the docserver CLI.
package main

import (
	"os"

	"github.com/andrea9293/mcp-documentation-server/cmd/docserver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
