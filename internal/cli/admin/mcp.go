package admin

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/shopmate/internal/config"
	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/mcpserver"
	"github.com/cloo-solutions/shopmate/internal/repository"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

// MCPCmd returns the mcp command, which serves the shopping tools over stdio.
func MCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the shopping tools over MCP (stdio)",
		Long: `Runs a Model Context Protocol server on stdin/stdout exposing
get_product_details and calculate_installment. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(version)
		},
	}
}

func runMCP(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logging.Init(cfg.Debug); err != nil {
		return err
	}
	defer logging.Sync()

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	tools, err := tool.NewShoppingRegistry(
		repository.NewProductRepository(pool),
		repository.NewOfferRepository(pool),
		repository.NewInsightRepository(pool),
	)
	if err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	return mcpserver.Serve(ctx, mcpserver.New(tools, version))
}
