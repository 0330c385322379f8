package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResult is one shopping hit.
type SearchResult struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
	Link     string  `json:"link"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search shops for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			return runSearch(cmd.OutOrStdout(), api, args[0], outputJSON)
		},
	}
}

func runSearch(w io.Writer, api *APIClient, query string, outputJSON bool) error {
	resp, err := api.Post("/search", SearchRequest{Query: query})
	if err != nil {
		return err
	}

	var result SearchResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse search response: %w", err)
	}

	if outputJSON {
		encoded, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(encoded))
		return nil
	}

	if len(result.Results) == 0 {
		fmt.Fprintln(w, "No results found")
		return nil
	}
	for i, r := range result.Results {
		fmt.Fprintf(w, "%2d. %s  %.2f zł\n", i+1, r.Name, r.Price)
		if r.Link != "" {
			fmt.Fprintf(w, "    %s\n", r.Link)
		}
	}
	return nil
}
