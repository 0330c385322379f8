package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type AnalyzeRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Link     string  `json:"link,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
}

type AnalyzeResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Cached  bool   `json:"cached"`
	Queued  bool   `json:"queued"`
}

// AnalyzeCmd creates the analyze command.
func AnalyzeCmd() *cobra.Command {
	var req AnalyzeRequest

	cmd := &cobra.Command{
		Use:   "analyze <name>",
		Short: "Import a product and queue review analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			req.Name = args[0]
			return runAnalyze(cmd.OutOrStdout(), api, req, outputJSON)
		},
	}

	cmd.Flags().Float64Var(&req.Price, "price", 0, "Price seen in the search result")
	cmd.Flags().StringVar(&req.Link, "link", "", "Offer link")
	cmd.Flags().StringVar(&req.ImageURL, "image", "", "Image URL")

	return cmd
}

func runAnalyze(w io.Writer, api *APIClient, req AnalyzeRequest, outputJSON bool) error {
	resp, err := api.Post("/analyze", req)
	if err != nil {
		return err
	}

	var result AnalyzeResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse analyze response: %w", err)
	}

	if outputJSON {
		encoded, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(encoded))
		return nil
	}

	fmt.Fprintf(w, "%s (id: %d)\n", result.Message, result.ID)
	if result.Queued {
		fmt.Fprintln(w, "Review analysis queued")
	}
	return nil
}
