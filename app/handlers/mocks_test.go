package handlers

import (
	"context"
	"time"

	"github.com/goldfolio/goldfolio-api/app/dto"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/goldfolio/goldfolio-api/models"
	"github.com/stretchr/testify/mock"
)

// MockPortfolioFlow is a mock implementation of PortfolioFlow for testing
type MockPortfolioFlow struct {
	mock.Mock
}

func (m *MockPortfolioFlow) ListLots(ctx context.Context, req *dto.ListLotsRequest, metadata *businessflow.ClientMetadata) (*dto.ListLotsResponse, error) {
	args := m.Called(ctx, req, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLotsResponse), args.Error(1)
}

func (m *MockPortfolioFlow) CreateLot(ctx context.Context, req *dto.CreateLotRequest, metadata *businessflow.ClientMetadata) (*dto.CreateLotResponse, error) {
	args := m.Called(ctx, req, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CreateLotResponse), args.Error(1)
}

func (m *MockPortfolioFlow) UpdateLot(ctx context.Context, req *dto.UpdateLotRequest, metadata *businessflow.ClientMetadata) (*dto.UpdateLotResponse, error) {
	args := m.Called(ctx, req, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpdateLotResponse), args.Error(1)
}

func (m *MockPortfolioFlow) DeleteLot(ctx context.Context, req *dto.DeleteLotRequest, metadata *businessflow.ClientMetadata) (*dto.DeleteLotResponse, error) {
	args := m.Called(ctx, req, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DeleteLotResponse), args.Error(1)
}

// MockPriceFlow is a mock implementation of PriceFlow for testing
type MockPriceFlow struct {
	mock.Mock
}

func (m *MockPriceFlow) SnapshotFor(ctx context.Context, date time.Time) (*models.PriceSnapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceSnapshot), args.Error(1)
}

func (m *MockPriceFlow) Latest(ctx context.Context) (*models.PriceSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceSnapshot), args.Error(1)
}

func (m *MockPriceFlow) Today() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *MockPriceFlow) GetSnapshot(ctx context.Context, req *dto.GetPriceSnapshotRequest) (*dto.GetPriceSnapshotResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetPriceSnapshotResponse), args.Error(1)
}

func (m *MockPriceFlow) TodayPricing(ctx context.Context) (*dto.TodayPricingResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TodayPricingResponse), args.Error(1)
}

func (m *MockPriceFlow) Invalidate(ctx context.Context, date time.Time) {
	m.Called(ctx, date)
}

// MockPriceIngestionFlow is a mock implementation of PriceIngestionFlow for testing
type MockPriceIngestionFlow struct {
	mock.Mock
}

func (m *MockPriceIngestionFlow) IngestDaily(ctx context.Context, date time.Time) (*businessflow.IngestionResult, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*businessflow.IngestionResult), args.Error(1)
}

func (m *MockPriceIngestionFlow) IngestToday(ctx context.Context) (*businessflow.IngestionResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*businessflow.IngestionResult), args.Error(1)
}

func (m *MockPriceIngestionFlow) Backfill(ctx context.Context, from, to time.Time, skipExisting bool) (*businessflow.BackfillReport, error) {
	args := m.Called(ctx, from, to, skipExisting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*businessflow.BackfillReport), args.Error(1)
}

func (m *MockPriceIngestionFlow) Ingest(ctx context.Context, req *dto.IngestPricesRequest) (*dto.IngestPricesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IngestPricesResponse), args.Error(1)
}

func (m *MockPriceIngestionFlow) BackfillRange(ctx context.Context, req *dto.BackfillPricesRequest) (*dto.BackfillPricesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BackfillPricesResponse), args.Error(1)
}

// MockSubscriptionFlow is a mock implementation of SubscriptionFlow for testing
type MockSubscriptionFlow struct {
	mock.Mock
}

func (m *MockSubscriptionFlow) Status(ctx context.Context, owner businessflow.Owner) (*dto.SubscriptionStatusResponse, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubscriptionStatusResponse), args.Error(1)
}

func (m *MockSubscriptionFlow) Price(ctx context.Context) (*dto.SubscriptionPriceResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubscriptionPriceResponse), args.Error(1)
}
