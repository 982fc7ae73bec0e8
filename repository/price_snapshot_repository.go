package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/goldfolio/goldfolio-api/models"
	"gorm.io/gorm"
)

// PriceSnapshotRepositoryImpl implements PriceSnapshotRepository
type PriceSnapshotRepositoryImpl struct {
	*BaseRepository[models.PriceSnapshot, models.PriceSnapshotFilter]
}

// NewPriceSnapshotRepository creates a new price snapshot repository
func NewPriceSnapshotRepository(db *gorm.DB) PriceSnapshotRepository {
	return &PriceSnapshotRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceSnapshot, models.PriceSnapshotFilter](db),
	}
}

// LatestByPriceDate returns the most recently created snapshot for the date, or nil when none exists
func (r *PriceSnapshotRepositoryImpl) LatestByPriceDate(ctx context.Context, date time.Time) (*models.PriceSnapshot, error) {
	filter := models.PriceSnapshotFilter{PriceDate: &date}
	rows, err := r.ByFilter(ctx, filter, "created_at DESC, id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListDates returns the distinct dates with at least one snapshot in [from, to]
func (r *PriceSnapshotRepositoryImpl) ListDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceSnapshot{}), models.PriceSnapshotFilter{DateFrom: &from, DateTo: &to})

	var dates []time.Time
	if err := query.Distinct("price_date").Order("price_date ASC").Pluck("price_date", &dates).Error; err != nil {
		return nil, fmt.Errorf("failed to list price dates: %w", err)
	}
	return dates, nil
}

func (r *PriceSnapshotRepositoryImpl) applyFilter(db *gorm.DB, f models.PriceSnapshotFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.PriceDate != nil {
		db = db.Where("price_date = ?", f.PriceDate.Format("2006-01-02"))
	}
	if f.DateFrom != nil {
		db = db.Where("price_date >= ?", f.DateFrom.Format("2006-01-02"))
	}
	if f.DateTo != nil {
		db = db.Where("price_date <= ?", f.DateTo.Format("2006-01-02"))
	}
	return db
}

func (r *PriceSnapshotRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceSnapshotFilter, orderBy string, limit, offset int) ([]*models.PriceSnapshot, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceSnapshot{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.PriceSnapshot
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list price snapshots: %w", err)
	}
	return rows, nil
}

func (r *PriceSnapshotRepositoryImpl) Count(ctx context.Context, filter models.PriceSnapshotFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceSnapshot{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count price snapshots: %w", err)
	}
	return count, nil
}

func (r *PriceSnapshotRepositoryImpl) Exists(ctx context.Context, filter models.PriceSnapshotFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
