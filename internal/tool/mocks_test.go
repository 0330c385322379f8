package tool

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

type MockProductFinder struct {
	mock.Mock
}

func (m *MockProductFinder) FindLatestByNameSubstring(ctx context.Context, term string) (*domain.Product, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type MockOfferLister struct {
	mock.Mock
}

func (m *MockOfferLister) ListByProduct(ctx context.Context, productID int64) ([]*domain.Offer, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Offer), args.Error(1)
}

type MockInsightGetter struct {
	mock.Mock
}

func (m *MockInsightGetter) GetByProductID(ctx context.Context, productID int64) (*domain.Insight, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Insight), args.Error(1)
}
