package businessflow

import (
	"context"
	"time"

	"github.com/goldfolio/goldfolio-api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPortfolioLotRepository is a mock implementation of PortfolioLotRepository for testing
type MockPortfolioLotRepository struct {
	mock.Mock
}

func (m *MockPortfolioLotRepository) ByID(ctx context.Context, id uint) (*models.PortfolioLot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PortfolioLot), args.Error(1)
}

func (m *MockPortfolioLotRepository) ByFilter(ctx context.Context, filter models.PortfolioLotFilter, orderBy string, limit, offset int) ([]*models.PortfolioLot, error) {
	args := m.Called(ctx, filter, orderBy, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PortfolioLot), args.Error(1)
}

func (m *MockPortfolioLotRepository) Save(ctx context.Context, lot *models.PortfolioLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockPortfolioLotRepository) SaveBatch(ctx context.Context, lots []*models.PortfolioLot) error {
	args := m.Called(ctx, lots)
	return args.Error(0)
}

func (m *MockPortfolioLotRepository) Count(ctx context.Context, filter models.PortfolioLotFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPortfolioLotRepository) Exists(ctx context.Context, filter models.PortfolioLotFilter) (bool, error) {
	args := m.Called(ctx, filter)
	return args.Bool(0), args.Error(1)
}

func (m *MockPortfolioLotRepository) ByUUID(ctx context.Context, id uuid.UUID) (*models.PortfolioLot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PortfolioLot), args.Error(1)
}

func (m *MockPortfolioLotRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.PortfolioLot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PortfolioLot), args.Error(1)
}

func (m *MockPortfolioLotRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPortfolioLotRepository) Update(ctx context.Context, lot *models.PortfolioLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockPortfolioLotRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPriceSnapshotRepository is a mock implementation of PriceSnapshotRepository for testing
type MockPriceSnapshotRepository struct {
	mock.Mock
}

func (m *MockPriceSnapshotRepository) ByID(ctx context.Context, id uint) (*models.PriceSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceSnapshot), args.Error(1)
}

func (m *MockPriceSnapshotRepository) ByFilter(ctx context.Context, filter models.PriceSnapshotFilter, orderBy string, limit, offset int) ([]*models.PriceSnapshot, error) {
	args := m.Called(ctx, filter, orderBy, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PriceSnapshot), args.Error(1)
}

func (m *MockPriceSnapshotRepository) Save(ctx context.Context, snapshot *models.PriceSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockPriceSnapshotRepository) SaveBatch(ctx context.Context, snapshots []*models.PriceSnapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

func (m *MockPriceSnapshotRepository) Count(ctx context.Context, filter models.PriceSnapshotFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPriceSnapshotRepository) Exists(ctx context.Context, filter models.PriceSnapshotFilter) (bool, error) {
	args := m.Called(ctx, filter)
	return args.Bool(0), args.Error(1)
}

func (m *MockPriceSnapshotRepository) LatestByPriceDate(ctx context.Context, date time.Time) (*models.PriceSnapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceSnapshot), args.Error(1)
}

func (m *MockPriceSnapshotRepository) ListDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// MockPriceSource is a mock implementation of PriceSource for testing
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) FetchTable(ctx context.Context, date time.Time) ([][]string, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

func (m *MockPriceSource) SourceURL(date time.Time) string {
	return "https://prices.test/" + date.Format("2006-01-02")
}

// MockEntitlementSource is a mock implementation of EntitlementSource for testing
type MockEntitlementSource struct {
	mock.Mock
}

func (m *MockEntitlementSource) IsSubscriptionActive(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
