package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PortfolioLot is a single recorded purchase of physical gold.
// GoldBuyingPrice is the total amount paid for the lot, not a per-gram price.
type PortfolioLot struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_gold_portfolio_uuid" json:"uuid"`
	OwnerID         string    `gorm:"column:user_id;size:255;not null;index:idx_gold_portfolio_user_id" json:"user_id"`
	GoldWeight      float64   `gorm:"not null" json:"gold_weight"`
	GoldBuyingDate  time.Time `gorm:"type:date;not null;index:idx_gold_portfolio_buying_date" json:"gold_buying_date"`
	GoldBuyingPrice float64   `gorm:"not null" json:"gold_buying_price"`
	CreatedAt       time.Time `gorm:"not null;index:idx_gold_portfolio_created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for the model
func (PortfolioLot) TableName() string {
	return "gold_portfolio"
}

// BeforeCreate is called before creating a new record
func (l *PortfolioLot) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	return nil
}

// PortfolioLotFilter represents filter criteria for portfolio lot queries
type PortfolioLotFilter struct {
	ID      *uint
	UUID    *uuid.UUID
	OwnerID *string
}
