package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veridex-labs/veridex/internal/cli"
	"github.com/veridex-labs/veridex/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "veridex",
		Short: "Veridex CLI - document ingestion and retrieval",
		Long: `Veridex CLI provides commands to ingest and search offence notice documents.

Environment variables:
  VERIDEX_API_URL    API base URL (default: http://localhost:8080)
  VERIDEX_OWNER_ID   Owner id attached to uploads and searches`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	rootCmd.PersistentFlags().String("owner", "", "Owner id (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.RebuildCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
