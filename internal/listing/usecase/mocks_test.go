package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	if l.ID == "" {
		l.ID = "generated"
	}
	return args.Error(0)
}

func (m *MockListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByFilter(ctx context.Context, f domain.Filter) ([]*domain.Listing, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Count(ctx context.Context) (domain.Counts, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Counts), args.Error(1)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) PublishListingCreated(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockPublisher) PublishListingModerated(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyListingModerated(ctx context.Context, email string, l *domain.Listing) error {
	return m.Called(ctx, email, l).Error(0)
}

type MockSellers struct{ mock.Mock }

func (m *MockSellers) SellerEmail(ctx context.Context, sellerID string) (string, error) {
	args := m.Called(ctx, sellerID)
	return args.String(0), args.Error(1)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, contentType, data)
	return args.String(0), args.Error(1)
}
