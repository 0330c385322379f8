package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/pagination"
	"github.com/cloo-solutions/shopmate/internal/scraper"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindLatestByNameSubstring(ctx context.Context, term string) (*domain.Product, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ProductPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductPageResult), args.Error(1)
}

type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Offer, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Offer), args.Error(1)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

type MockInsightRepository struct {
	mock.Mock
}

func (m *MockInsightRepository) Upsert(ctx context.Context, i *domain.Insight) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockInsightRepository) GetByProductID(ctx context.Context, productID int64) (*domain.Insight, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Insight), args.Error(1)
}

type MockAnalysisJobRepository struct {
	mock.Mock
}

func (m *MockAnalysisJobRepository) Create(ctx context.Context, job *domain.AnalysisJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type MockProductScraper struct {
	mock.Mock
}

func (m *MockProductScraper) SearchShallow(ctx context.Context, query string) []scraper.ProductHit {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]scraper.ProductHit)
}

func (m *MockProductScraper) ScrapeDeep(ctx context.Context, name string, price float64, link string) scraper.DeepData {
	args := m.Called(ctx, name, price, link)
	return args.Get(0).(scraper.DeepData)
}

type MockUUIDGenerator struct {
	mock.Mock
}

func (m *MockUUIDGenerator) NewString() string {
	args := m.Called()
	return args.String(0)
}
