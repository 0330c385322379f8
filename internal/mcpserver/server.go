// Package mcpserver exposes the shopping tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

const serverName = "shopmate"

// Invoker runs a registered tool. *tool.Registry satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, name string, rawArgs any, timeout time.Duration) tool.Result
}

type productDetailsParams struct {
	ProductName string `json:"product_name" jsonschema:"product name or a fragment of it"`
}

type installmentParams struct {
	Price  float64 `json:"price" jsonschema:"amount in PLN, greater than 0"`
	Months int     `json:"months" jsonschema:"number of installments between 3 and 48"`
}

// New builds an MCP server with get_product_details and
// calculate_installment. Calls go through Invoke, so argument validation and
// per-tool timeouts match the chat dispatcher.
func New(tools Invoker, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        tool.ProductDetailsToolName,
		Description: "Returns the catalogue report of the newest product whose name contains product_name: price, store offers and review summary.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in productDetailsParams) (*mcp.CallToolResult, any, error) {
		return invoke(ctx, tools, tool.ProductDetailsToolName, map[string]any{
			"product_name": in.ProductName,
		}), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        tool.InstallmentToolName,
		Description: "Computes an equal monthly installment for a price split over a number of months.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in installmentParams) (*mcp.CallToolResult, any, error) {
		return invoke(ctx, tools, tool.InstallmentToolName, map[string]any{
			"price":  in.Price,
			"months": in.Months,
		}), nil, nil
	})

	return server
}

// Serve runs the server over stdin/stdout until ctx is done or the client disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}

func invoke(ctx context.Context, tools Invoker, name string, args map[string]any) *mcp.CallToolResult {
	res := tools.Invoke(ctx, name, args, 0)
	if !res.OK() {
		logging.L().Warn("mcp tool call failed",
			zap.String("tool", name),
			zap.String("code", res.Code),
			zap.String("message", res.Message),
		)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s: %s", res.Code, res.Message)}},
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Payload}},
	}
}
