// Package main is the entry point for the meddict CLI.
package main

import (
	"fmt"
	"os"

	"github.com/TanukiMa/my-workflow-test/cmd/meddict/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
