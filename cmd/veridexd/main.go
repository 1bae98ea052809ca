package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veridex-labs/veridex/internal/cli"
	"github.com/veridex-labs/veridex/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veridexd",
		Short: "Veridex daemon",
		Long:  "Veridex daemon for running the document retrieval API server and maintaining the vector index",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.CompactCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
