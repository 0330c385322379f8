package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

const (
	ProductDetailsToolName = "get_product_details"

	// ReportType tags the structured payload so clients can render a card.
	ReportType = "product_report"

	maxSummaryRunes = 500
	noAnalysis      = "Brak analizy."
	noData          = "Brak danych."
)

// ProductFinder finds the newest product whose name contains term,
// case-insensitively. It returns domain.ErrProductNotFound on no match.
type ProductFinder interface {
	FindLatestByNameSubstring(ctx context.Context, term string) (*domain.Product, error)
}

// OfferLister lists a product's offers in insertion order.
type OfferLister interface {
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Offer, error)
}

// InsightGetter reads a product's review insight.
type InsightGetter interface {
	GetByProductID(ctx context.Context, productID int64) (*domain.Insight, error)
}

// ProductDetailsArgs are the arguments of get_product_details.
type ProductDetailsArgs struct {
	ProductName string
}

// Validate requires a non-blank name.
func (a ProductDetailsArgs) Validate() error {
	if strings.TrimSpace(a.ProductName) == "" {
		return errors.New("product_name is required")
	}
	return nil
}

// ProductReport is the structured payload of get_product_details.
type ProductReport struct {
	Type       string        `json:"type"`
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	Price      float64       `json:"price"`
	Image      string        `json:"image"`
	Summary    string        `json:"summary"`
	Pros       string        `json:"pros"`
	Cons       string        `json:"cons"`
	SystemInfo string        `json:"system_info"`
	Offers     []ReportOffer `json:"offers"`
}

// ReportOffer is one store listing in a ProductReport.
type ReportOffer struct {
	Store string  `json:"store"`
	Price float64 `json:"price"`
	Link  string  `json:"link"`
}

// ProductDetailsTool builds a product report from the catalogue.
type ProductDetailsTool struct {
	products ProductFinder
	offers   OfferLister
	insights InsightGetter
}

// NewProductDetailsTool creates the product lookup tool.
func NewProductDetailsTool(products ProductFinder, offers OfferLister, insights InsightGetter) *ProductDetailsTool {
	return &ProductDetailsTool{products: products, offers: offers, insights: insights}
}

func (*ProductDetailsTool) Name() string { return ProductDetailsToolName }

func (*ProductDetailsTool) Signature() string {
	return "get_product_details(product_name: str)"
}

func (*ProductDetailsTool) Description() string {
	return "Użyj ZAWSZE, gdy użytkownik pyta o cenę, zdjęcie, linki, zalety, wady lub chce poznać szczegóły zaimportowanego produktu."
}

func (*ProductDetailsTool) Timeout() time.Duration { return 5 * time.Second }

func (*ProductDetailsTool) Decode(raw map[string]any) (Args, error) {
	name, err := stringArg(raw, "product_name")
	if err != nil {
		return nil, err
	}
	return ProductDetailsArgs{ProductName: name}, nil
}

func (t *ProductDetailsTool) Execute(ctx context.Context, args Args) (string, error) {
	a, ok := args.(ProductDetailsArgs)
	if !ok {
		return "", fmt.Errorf("unexpected arguments %T", args)
	}

	term := strings.TrimSpace(a.ProductName)
	product, err := t.products.FindLatestByNameSubstring(ctx, term)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return "", fmt.Errorf("nie znaleziono produktu %s: %w", term, err)
		}
		return "", err
	}

	offers, err := t.offers.ListByProduct(ctx, product.ID)
	if err != nil {
		return "", err
	}

	insight, err := t.insights.GetByProductID(ctx, product.ID)
	if err != nil && !errors.Is(err, domain.ErrInsightNotFound) {
		return "", err
	}
	if err != nil {
		insight = nil
	}

	return encodeReport(BuildReport(product, offers, insight))
}

// BuildReport assembles the report for a product. A nil insight means the
// product was never analyzed.
func BuildReport(p *domain.Product, offers []*domain.Offer, insight *domain.Insight) ProductReport {
	summary, pros, cons := noAnalysis, noData, noData
	factPros, factCons := "brak", "brak"
	if insight != nil {
		summary = orDefault(insight.Summary, noAnalysis)
		pros = orDefault(insight.Pros, noData)
		cons = orDefault(insight.Cons, noData)
		factPros = orDefault(insight.Pros, "brak")
		factCons = orDefault(insight.Cons, "brak")
	}

	report := ProductReport{
		Type:    ReportType,
		ID:      p.ID,
		Name:    p.Name,
		Price:   p.Price,
		Image:   p.ImageURL,
		Summary: truncateRunes(summary, maxSummaryRunes),
		Pros:    pros,
		Cons:    cons,
		SystemInfo: fmt.Sprintf("TO SĄ FAKTY Z BAZY DANYCH O %s:\n"+
			"- Cena: %.2f zł\n"+
			"- Główne zalety z opinii: %s\n"+
			"- Główne wady z opinii: %s\n"+
			"Jeśli użytkownik pyta o te rzeczy, CYTUJ TE DANE.\n"+
			"Jeśli pyta o parametry techniczne (ekran, bateria), użyj swojej wiedzy.",
			p.Name, p.Price, factPros, factCons),
		Offers: make([]ReportOffer, 0, len(offers)),
	}
	for _, o := range offers {
		report.Offers = append(report.Offers, ReportOffer{
			Store: o.StoreName,
			Price: o.Price,
			Link:  domain.CleanLink(o.Link),
		})
	}
	return report
}

func encodeReport(r ProductReport) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("failed to encode product report: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
