// Package main is the entry point for the glassquote CLI.
package main

import (
	"os"

	"glassquote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
