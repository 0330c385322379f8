// Package scraper finds products and collects offers and opinions through
// the SerpAPI search endpoints. Without an API key, or when a call fails,
// it serves deterministic mock data so the rest of the system keeps working.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/telemetry"
)

const (
	DefaultBaseURL = "https://serpapi.com/search.json"

	maxShallowHits      = 12
	deepResultCount     = 10
	minSnippetLength    = 30
	defaultOfferStore   = "Wybrana Oferta"
	defaultReviewSource = "Google Search"
	deepQuerySuffix     = "opinie forum wady zalety"
)

// ProductHit is one result of a product search.
type ProductHit struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
	Link     string  `json:"link"`
}

// OfferHit is a store listing found by a deep scrape.
type OfferHit struct {
	Store string  `json:"store"`
	Price float64 `json:"price"`
	Link  string  `json:"link"`
}

// ReviewHit is an opinion found by a deep scrape.
type ReviewHit struct {
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
	Source  string  `json:"source"`
}

// DeepData is everything collected for one product.
type DeepData struct {
	Name     string      `json:"name"`
	Price    float64     `json:"price"`
	ImageURL string      `json:"image_url"`
	Offers   []OfferHit  `json:"offers"`
	Reviews  []ReviewHit `json:"reviews"`
}

// Client queries SerpAPI.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty key makes every call return mock data.
func NewClient(apiKey string) *Client {
	return NewClientWithHTTP(apiKey, DefaultBaseURL, &http.Client{Timeout: 20 * time.Second})
}

// NewClientWithHTTP creates a Client with a custom endpoint and HTTP client (for testing).
func NewClientWithHTTP(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
}

// HasAPIKey reports whether live search is enabled.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

type shoppingResponse struct {
	ShoppingResults []struct {
		Title       string `json:"title"`
		Price       any    `json:"price"`
		Thumbnail   string `json:"thumbnail"`
		Link        string `json:"link"`
		ProductLink string `json:"product_link"`
	} `json:"shopping_results"`
}

type organicResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Source  string `json:"source"`
	} `json:"organic_results"`
}

// SearchShallow returns up to 12 shopping results for query. It never fails:
// no key, an error, or an empty result list yields MockSearchResults.
func (c *Client) SearchShallow(ctx context.Context, query string) []ProductHit {
	ctx, span := telemetry.StartSpan(ctx, "scraper.SearchShallow", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	if !c.HasAPIKey() {
		return MockSearchResults(query)
	}

	var resp shoppingResponse
	err := c.get(ctx, url.Values{
		"engine": {"google_shopping"},
		"q":      {query},
		"gl":     {"pl"},
		"hl":     {"pl"},
	}, &resp)
	if err != nil {
		logging.L().Warn("shopping search failed, serving mock results",
			zap.String("query", query),
			zap.Error(err),
		)
		return MockSearchResults(query)
	}

	hits := make([]ProductHit, 0, maxShallowHits)
	for _, item := range resp.ShoppingResults {
		if len(hits) == maxShallowHits {
			break
		}
		link := item.Link
		if link == "" {
			link = item.ProductLink
		}
		hits = append(hits, ProductHit{
			Name:     item.Title,
			Price:    priceValue(item.Price),
			ImageURL: item.Thumbnail,
			Link:     link,
		})
	}
	if len(hits) == 0 {
		return MockSearchResults(query)
	}
	return hits
}

// ScrapeDeep collects opinions about a product. The chosen listing becomes
// the only offer. Organic snippets longer than 30 characters become
// unrated reviews. Without a key it returns MockDeepData; a failed call
// returns the offer with no reviews.
func (c *Client) ScrapeDeep(ctx context.Context, name string, price float64, link string) DeepData {
	ctx, span := telemetry.StartSpan(ctx, "scraper.ScrapeDeep", telemetry.SpanAttributes{
		Operation: "scrape",
	})
	defer span.End()

	if !c.HasAPIKey() {
		return MockDeepData(name, price, link)
	}

	data := DeepData{
		Name:    name,
		Price:   price,
		Offers:  []OfferHit{{Store: defaultOfferStore, Price: price, Link: link}},
		Reviews: []ReviewHit{},
	}

	var resp organicResponse
	err := c.get(ctx, url.Values{
		"engine": {"google"},
		"q":      {name + " " + deepQuerySuffix},
		"gl":     {"pl"},
		"hl":     {"pl"},
		"num":    {fmt.Sprint(deepResultCount)},
	}, &resp)
	if err != nil {
		logging.L().Warn("opinion search failed",
			zap.String("product", name),
			zap.Error(err),
		)
		return data
	}

	for _, res := range resp.OrganicResults {
		if len([]rune(res.Snippet)) <= minSnippetLength {
			continue
		}
		source := res.Source
		if source == "" {
			source = defaultReviewSource
		}
		data.Reviews = append(data.Reviews, ReviewHit{
			Content: fmt.Sprintf("[%s] %s", res.Title, res.Snippet),
			Rating:  0,
			Source:  source,
		})
	}
	return data
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + params.Encode()
	} else {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
