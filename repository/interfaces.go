// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/goldfolio/goldfolio-api/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// PortfolioLotRepository defines operations for gold portfolio lots
type PortfolioLotRepository interface {
	Repository[models.PortfolioLot, models.PortfolioLotFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.PortfolioLot, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.PortfolioLot, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Update(ctx context.Context, lot *models.PortfolioLot) error
	Delete(ctx context.Context, id uint) error
}

// PriceSnapshotRepository defines operations for daily price snapshots
type PriceSnapshotRepository interface {
	Repository[models.PriceSnapshot, models.PriceSnapshotFilter]
	LatestByPriceDate(ctx context.Context, date time.Time) (*models.PriceSnapshot, error)
	ListDates(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// ErrNoRowsAffected is returned by updates and deletes that matched no row
var ErrNoRowsAffected = errors.New("no rows affected")
