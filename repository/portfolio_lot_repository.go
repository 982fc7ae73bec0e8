package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goldfolio/goldfolio-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PortfolioLotRepositoryImpl implements PortfolioLotRepository
type PortfolioLotRepositoryImpl struct {
	*BaseRepository[models.PortfolioLot, models.PortfolioLotFilter]
}

// NewPortfolioLotRepository creates a new portfolio lot repository
func NewPortfolioLotRepository(db *gorm.DB) PortfolioLotRepository {
	return &PortfolioLotRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PortfolioLot, models.PortfolioLotFilter](db),
	}
}

// ByUUID retrieves a lot by its public identifier
func (r *PortfolioLotRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.PortfolioLot, error) {
	db := r.getDB(ctx)

	var lot models.PortfolioLot
	err := db.Where("uuid = ?", id).Last(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find portfolio lot by UUID %s: %w", id, err)
	}

	return &lot, nil
}

// ListByOwner returns every lot of the owner, newest first
func (r *PortfolioLotRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]*models.PortfolioLot, error) {
	filter := models.PortfolioLotFilter{OwnerID: &ownerID}
	return r.ByFilter(ctx, filter, "created_at DESC, id DESC", 0, 0)
}

// CountByOwner returns the number of lots recorded by the owner
func (r *PortfolioLotRepositoryImpl) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return r.Count(ctx, models.PortfolioLotFilter{OwnerID: &ownerID})
}

// Update overwrites the editable columns of an existing lot
func (r *PortfolioLotRepositoryImpl) Update(ctx context.Context, lot *models.PortfolioLot) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&models.PortfolioLot{}).
		Where("id = ?", lot.ID).
		Updates(map[string]any{
			"gold_weight":       lot.GoldWeight,
			"gold_buying_date":  lot.GoldBuyingDate,
			"gold_buying_price": lot.GoldBuyingPrice,
			"updated_at":        lot.UpdatedAt,
		})
	switch {
	case result.Error != nil:
		err = fmt.Errorf("failed to update portfolio lot %d: %w", lot.ID, result.Error)
	case result.RowsAffected == 0:
		err = fmt.Errorf("portfolio lot %d: %w", lot.ID, ErrNoRowsAffected)
	}

	return finish(db, shouldCommit, err)
}

// Delete removes a lot by its internal ID
func (r *PortfolioLotRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&models.PortfolioLot{})
	switch {
	case result.Error != nil:
		err = fmt.Errorf("failed to delete portfolio lot %d: %w", id, result.Error)
	case result.RowsAffected == 0:
		err = fmt.Errorf("portfolio lot %d: %w", id, ErrNoRowsAffected)
	}

	return finish(db, shouldCommit, err)
}

func (r *PortfolioLotRepositoryImpl) applyFilter(db *gorm.DB, f models.PortfolioLotFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.OwnerID != nil {
		db = db.Where("user_id = ?", *f.OwnerID)
	}
	return db
}

func (r *PortfolioLotRepositoryImpl) ByFilter(ctx context.Context, filter models.PortfolioLotFilter, orderBy string, limit, offset int) ([]*models.PortfolioLot, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PortfolioLot{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.PortfolioLot
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list portfolio lots: %w", err)
	}
	return rows, nil
}

func (r *PortfolioLotRepositoryImpl) Count(ctx context.Context, filter models.PortfolioLotFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PortfolioLot{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count portfolio lots: %w", err)
	}
	return count, nil
}

func (r *PortfolioLotRepositoryImpl) Exists(ctx context.Context, filter models.PortfolioLotFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
