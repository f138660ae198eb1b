package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "company-research",
		Short: "Generate and revise company market-research reports",
		Long: `company-research turns crawled website data about a company into a structured
market-research report, and revises that report from free-text instructions.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newGenerateCmd(), newReviseCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
