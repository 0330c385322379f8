package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/pagination"
	"github.com/cloo-solutions/shopmate/internal/scraper"
	"github.com/cloo-solutions/shopmate/internal/telemetry"
	"github.com/cloo-solutions/shopmate/internal/tool"
)

// Analyze outcome messages.
const (
	MsgProductCached   = "Produkt pobrany z cache"
	MsgAnalysisStarted = "Rozpoczęto analizę i zapisano produkt"
)

// ProductRepositoryInterface defines the repository interface for product persistence
type ProductRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	FindLatestByNameSubstring(ctx context.Context, term string) (*domain.Product, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ProductPageResult, error)
}

type ProductPageResult struct {
	Items      []*domain.Product
	NextCursor string
	HasMore    bool
}

// OfferRepositoryInterface defines the repository interface for offer persistence
type OfferRepositoryInterface interface {
	Create(ctx context.Context, o *domain.Offer) error
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Offer, error)
}

// ReviewRepositoryInterface defines the repository interface for review persistence
type ReviewRepositoryInterface interface {
	Create(ctx context.Context, r *domain.Review) error
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
}

// InsightRepositoryInterface defines the repository interface for insight persistence
type InsightRepositoryInterface interface {
	Upsert(ctx context.Context, i *domain.Insight) error
	GetByProductID(ctx context.Context, productID int64) (*domain.Insight, error)
}

// AnalysisJobRepositoryInterface defines the repository interface for analysis job persistence
type AnalysisJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.AnalysisJob) error
}

// ProductScraper finds products and collects their offers and reviews.
type ProductScraper interface {
	SearchShallow(ctx context.Context, query string) []scraper.ProductHit
	ScrapeDeep(ctx context.Context, name string, price float64, link string) scraper.DeepData
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// ProductService handles catalogue search, import and lookup.
type ProductService struct {
	products ProductRepositoryInterface
	offers   OfferRepositoryInterface
	insights InsightRepositoryInterface
	tx       TxRunner
	scraper  ProductScraper
	uuidGen  UUIDGenerator
	now      func() time.Time
}

// NewProductService creates a new ProductService instance
func NewProductService(
	products ProductRepositoryInterface,
	offers OfferRepositoryInterface,
	insights InsightRepositoryInterface,
	tx TxRunner,
	scraper ProductScraper,
) *ProductService {
	return NewProductServiceWithUUIDGen(products, offers, insights, tx, scraper, &DefaultUUIDGenerator{})
}

// NewProductServiceWithUUIDGen creates a new ProductService with custom UUID generator (for testing)
func NewProductServiceWithUUIDGen(
	products ProductRepositoryInterface,
	offers OfferRepositoryInterface,
	insights InsightRepositoryInterface,
	tx TxRunner,
	scraper ProductScraper,
	uuidGen UUIDGenerator,
) *ProductService {
	return &ProductService{
		products: products,
		offers:   offers,
		insights: insights,
		tx:       tx,
		scraper:  scraper,
		uuidGen:  uuidGen,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AnalyzeInput is a search hit the user chose to import.
type AnalyzeInput struct {
	Name     string
	Price    float64
	Link     string
	ImageURL string
}

// AnalyzeOutput reports the imported or existing product.
type AnalyzeOutput struct {
	ProductID int64
	Message   string
	Cached    bool
	Queued    bool
}

type ListProductsInput struct {
	Cursor string
	Limit  int
}

type ListProductsOutput struct {
	Items   []*domain.Product
	Cursor  string
	HasMore bool
}

// Search returns shopping results for query.
func (s *ProductService) Search(ctx context.Context, query string) ([]scraper.ProductHit, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrMissingRequiredField
	}
	return s.scraper.SearchShallow(ctx, query), nil
}

// Analyze imports a product. A product with the same exact name is reused
// and queued for analysis only when it has never been analyzed. Otherwise
// the product is scraped and stored with its offers, reviews, a processing
// insight and an analysis job, all in one transaction.
func (s *ProductService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductService.Analyze", telemetry.SpanAttributes{
		Operation: "analyze",
	})
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if input.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}

	existing, err := s.products.GetByName(ctx, name)
	switch {
	case err == nil:
		return s.reuse(ctx, existing)
	case !errors.Is(err, domain.ErrProductNotFound):
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	data := s.scraper.ScrapeDeep(ctx, name, input.Price, input.Link)
	image := data.ImageURL
	if image == "" {
		image = input.ImageURL
	}
	productName := strings.TrimSpace(data.Name)
	if productName == "" {
		productName = name
	}

	product := domain.NewProduct(productName, data.Price, image, s.now())
	if err := domain.ValidateProduct(product); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, err.Error(), err)
	}

	err = s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Products().Create(ctx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		for _, o := range data.Offers {
			offer := &domain.Offer{
				ProductID: product.ID,
				StoreName: o.Store,
				Price:     o.Price,
				Link:      domain.CleanLink(o.Link),
			}
			if err := repos.Offers().Create(ctx, offer); err != nil {
				return fmt.Errorf("failed to create offer: %w", err)
			}
		}
		for _, r := range data.Reviews {
			review := &domain.Review{
				ProductID: product.ID,
				Content:   r.Content,
				Rating:    r.Rating,
				Source:    r.Source,
			}
			if err := domain.ValidateReview(review); err != nil {
				logging.L().Debug("skipping scraped review", zap.Error(err))
				continue
			}
			if err := repos.Reviews().Create(ctx, review); err != nil {
				return fmt.Errorf("failed to create review: %w", err)
			}
		}
		return s.queueAnalysis(ctx, repos, product.ID)
	})
	if err != nil {
		return nil, err
	}

	return &AnalyzeOutput{ProductID: product.ID, Message: MsgAnalysisStarted, Queued: true}, nil
}

func (s *ProductService) reuse(ctx context.Context, p *domain.Product) (*AnalyzeOutput, error) {
	out := &AnalyzeOutput{ProductID: p.ID, Message: MsgProductCached, Cached: true}

	insight, err := s.insights.GetByProductID(ctx, p.ID)
	if err != nil && !errors.Is(err, domain.ErrInsightNotFound) {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	if err != nil {
		insight = nil
	}
	if !insight.NeedsAnalysis() {
		return out, nil
	}

	if err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		return s.queueAnalysis(ctx, repos, p.ID)
	}); err != nil {
		return nil, err
	}
	out.Queued = true
	return out, nil
}

func (s *ProductService) queueAnalysis(ctx context.Context, repos TxRepositories, productID int64) error {
	now := s.now()
	insight := &domain.Insight{
		ProductID: productID,
		Status:    domain.AnalysisStatusProcessing,
		UpdatedAt: now,
	}
	if err := repos.Insights().Upsert(ctx, insight); err != nil {
		return fmt.Errorf("failed to upsert insight: %w", err)
	}

	job := domain.NewAnalysisJob(s.uuidGen.NewString(), productID, now)
	if err := domain.ValidateAnalysisJob(job); err != nil {
		return err
	}
	if err := repos.AnalysisJobs().Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create analysis job: %w", err)
	}
	return nil
}

// List returns imported products, newest first.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ListProductsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	page, err := s.products.ListWithCursor(ctx, cursor, pagination.NormalizeLimit(input.Limit))
	if err != nil {
		return nil, err
	}
	return &ListProductsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// Get builds the product report for id, the same payload the chat tool returns.
func (s *ProductService) Get(ctx context.Context, id int64) (*tool.ProductReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProductService.Get", telemetry.SpanAttributes{
		ProductID: id,
		Operation: "get",
	})
	defer span.End()

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	insight, err := s.insights.GetByProductID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrInsightNotFound) {
		return nil, err
	}
	if err != nil {
		insight = nil
	}

	report := tool.BuildReport(product, offers, insight)
	return &report, nil
}
