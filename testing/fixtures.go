package testing

import (
	"fmt"
	"time"

	"github.com/goldfolio/goldfolio-api/models"
	"github.com/goldfolio/goldfolio-api/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// NewLot builds an unsaved lot bought on date (YYYY-MM-DD)
func NewLot(ownerID string, weight float64, date string, price float64) *models.PortfolioLot {
	buyingDate, err := utils.ParseDate(date)
	if err != nil {
		panic(err)
	}
	now := utils.UTCNow().Truncate(time.Microsecond)
	return &models.PortfolioLot{
		UUID:            uuid.New(),
		OwnerID:         ownerID,
		GoldWeight:      weight,
		GoldBuyingDate:  buyingDate,
		GoldBuyingPrice: price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CreateTestLot stores a lot for ownerID
func (tf *TestFixtures) CreateTestLot(ownerID string, weight float64, date string, price float64) (*models.PortfolioLot, error) {
	lot := NewLot(ownerID, weight, date, price)
	if err := tf.DB.DB.Create(lot).Error; err != nil {
		return nil, fmt.Errorf("failed to create test lot: %w", err)
	}
	return lot, nil
}

// SamplePricePoints returns a two-denomination table
func SamplePricePoints() models.PricePoints {
	return models.PricePoints{
		{Gram: "0.5", TotalPrice: "600.000", PerGramPrice: "1.200.000", UnitPricePerGram: decimal.RequireFromString("1200000")},
		{Gram: "1", TotalPrice: "1.100.000", PerGramPrice: "1.100.000", UnitPricePerGram: decimal.RequireFromString("1100000")},
	}
}

// NewSnapshot builds an unsaved snapshot for date (YYYY-MM-DD)
func NewSnapshot(date, sellingPrice string, createdAt time.Time) *models.PriceSnapshot {
	priceDate, err := utils.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return &models.PriceSnapshot{
		PriceDate:        priceDate,
		GoldBuyingPrice:  SamplePricePoints(),
		GoldSellingPrice: sellingPrice,
		SourceURL:        "https://harga-emas.org/history-harga/" + date,
		CreatedAt:        createdAt.UTC().Truncate(time.Microsecond),
	}
}

// CreateTestSnapshot stores a snapshot for date
func (tf *TestFixtures) CreateTestSnapshot(date, sellingPrice string, createdAt time.Time) (*models.PriceSnapshot, error) {
	snapshot := NewSnapshot(date, sellingPrice, createdAt)
	if err := tf.DB.DB.Create(snapshot).Error; err != nil {
		return nil, fmt.Errorf("failed to create test snapshot: %w", err)
	}
	return snapshot, nil
}
