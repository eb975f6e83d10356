// Package main is the entry point for the sitecorpus CLI.
package main

import (
	"os"

	"github.com/sitecorpus/sitecorpus/cmd/sitecorpus/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
