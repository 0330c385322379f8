package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

type ProductItem struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	CreatedAt string  `json:"created_at"`
}

type ListProductsResponse struct {
	Items   []ProductItem `json:"items"`
	Cursor  string        `json:"cursor,omitempty"`
	HasMore bool          `json:"has_more"`
}

type ProductOffer struct {
	Store string  `json:"store"`
	Price float64 `json:"price"`
	Link  string  `json:"link"`
}

type ProductReport struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Price   float64        `json:"price"`
	Image   string         `json:"image"`
	Summary string         `json:"summary"`
	Pros    string         `json:"pros"`
	Cons    string         `json:"cons"`
	Offers  []ProductOffer `json:"offers"`
}

// ProductsCmd creates the products command with list and get subcommands.
func ProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse imported products",
	}
	cmd.AddCommand(productsListCmd())
	cmd.AddCommand(productsGetCmd())
	return cmd
}

func productsListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported products, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			return runProductsList(cmd.OutOrStdout(), api, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of products")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func productsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a product report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			return runProductsGet(cmd.OutOrStdout(), api, id, outputJSON)
		},
	}
}

func runProductsList(w io.Writer, api *APIClient, limit int, cursor string, outputJSON bool) error {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	path := "/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return err
	}

	var result ListProductsResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse products response: %w", err)
	}

	if outputJSON {
		encoded, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(encoded))
		return nil
	}

	for _, p := range result.Items {
		fmt.Fprintf(w, "%5d  %-40s %10.2f zł\n", p.ID, p.Name, p.Price)
	}
	if result.HasMore {
		fmt.Fprintf(w, "\nMore results: --cursor %s\n", result.Cursor)
	}
	return nil
}

func runProductsGet(w io.Writer, api *APIClient, id int64, outputJSON bool) error {
	resp, err := api.Get(fmt.Sprintf("/products/%d", id))
	if err != nil {
		return err
	}

	if outputJSON {
		fmt.Fprintln(w, string(resp.Data))
		return nil
	}

	var report ProductReport
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		return fmt.Errorf("failed to parse product report: %w", err)
	}

	fmt.Fprintf(w, "%s (id: %d)\n", report.Name, report.ID)
	fmt.Fprintf(w, "Cena: %.2f zł\n", report.Price)
	fmt.Fprintf(w, "Podsumowanie: %s\n", report.Summary)
	fmt.Fprintf(w, "Zalety: %s\n", report.Pros)
	fmt.Fprintf(w, "Wady: %s\n", report.Cons)
	for _, o := range report.Offers {
		fmt.Fprintf(w, "  - %s: %.2f zł %s\n", o.Store, o.Price, o.Link)
	}
	return nil
}
