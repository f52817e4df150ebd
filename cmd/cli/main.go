package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/wallje/karina/cmd/cli/scenarios"
)

func init() {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()
	rootCmd.AddGroup(scenarios.Group)
	rootCmd.AddCommand(scenarios.Export)
	rootCmd.AddCommand(scenarios.Import)
}

var rootCmd = &cobra.Command{
	Use:  "karina-cli",
	Long: `Command line utilities for the Karina virtual consultation trainer`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
