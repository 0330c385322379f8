package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/shopmate/internal/cli"
	"github.com/cloo-solutions/shopmate/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "shopmate",
		Short: "Shopmate CLI - talk to the shopping assistant",
		Long: `Shopmate CLI chats with the shopping assistant, searches shops and
imports products for review analysis.

Environment variables:
  SHOPMATE_API_KEY   API key for write endpoints (optional)
  SHOPMATE_API_URL   API base URL (default: http://localhost:8000)`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.AnalyzeCmd())
	rootCmd.AddCommand(client.ProductsCmd())
	rootCmd.AddCommand(client.EvalCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
