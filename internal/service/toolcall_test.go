package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind ToolCallKind
		wantName string
		wantArgs any
	}{
		{
			name:     "plain text",
			text:     "Procedura zwrotu trwa 14 dni.",
			wantKind: ToolCallNone,
		},
		{
			name:     "bare object",
			text:     `{"tool": "calculate_installment", "args": {"price": 3000, "months": 10}}`,
			wantKind: ToolCallFound,
			wantName: "calculate_installment",
			wantArgs: map[string]any{"price": float64(3000), "months": float64(10)},
		},
		{
			name:     "fenced object",
			text:     "```json\n{\"tool\": \"get_product_details\", \"args\": {\"product_name\": \"iPhone\"}}\n```",
			wantKind: ToolCallFound,
			wantName: "get_product_details",
			wantArgs: map[string]any{"product_name": "iPhone"},
		},
		{
			name:     "surrounded by prose",
			text:     `Sprawdzę to: {"tool": "get_product_details", "args": {"product_name": "Pixel"}} chwileczkę.`,
			wantKind: ToolCallFound,
			wantName: "get_product_details",
			wantArgs: map[string]any{"product_name": "Pixel"},
		},
		{
			name:     "arguments alias",
			text:     `{"tool": "calculate_installment", "arguments": {"price": 100, "months": 3}}`,
			wantKind: ToolCallFound,
			wantName: "calculate_installment",
			wantArgs: map[string]any{"price": float64(100), "months": float64(3)},
		},
		{
			name:     "args as string",
			text:     `{"tool": "calculate_installment", "args": "{\"price\": 100, \"months\": 3}"}`,
			wantKind: ToolCallFound,
			wantName: "calculate_installment",
			wantArgs: `{"price": 100, "months": 3}`,
		},
		{
			name:     "missing args",
			text:     `{"tool": "get_product_details"}`,
			wantKind: ToolCallFound,
			wantName: "get_product_details",
		},
		{
			name:     "trailing braces after object",
			text:     `{"tool": "get_product_details", "args": {"product_name": "X"}} a potem {nic}`,
			wantKind: ToolCallFound,
			wantName: "get_product_details",
			wantArgs: map[string]any{"product_name": "X"},
		},
		{
			name:     "unquoted keys",
			text:     `{"tool": "get_product_details", "args": {product_name: iPhone}}`,
			wantKind: ToolCallMalformed,
		},
		{
			name:     "empty tool name",
			text:     `{"tool": "  ", "args": {}}`,
			wantKind: ToolCallMalformed,
		},
		{
			name:     "non-string tool name",
			text:     `{"tool": 7}`,
			wantKind: ToolCallMalformed,
		},
		{
			name:     "marker without object",
			text:     `"tool": get_product_details`,
			wantKind: ToolCallMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseToolCall(tt.text)
			require.Equal(t, tt.wantKind, got.Kind)
			if tt.wantKind == ToolCallMalformed {
				assert.Error(t, got.Err)
				return
			}
			assert.NoError(t, got.Err)
			assert.Equal(t, tt.wantName, got.Call.Name)
			assert.Equal(t, tt.wantArgs, got.Call.Args)
		})
	}
}
