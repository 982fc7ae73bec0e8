package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one denomination row of a published price table
type PricePoint struct {
	Gram         string `json:"gram"`
	TotalPrice   string `json:"total_price"`
	PerGramPrice string `json:"per_gram_price"`

	// Derived from TotalPrice and Gram, rounded to 2 places
	UnitPricePerGram decimal.Decimal `json:"unit_price_per_gram"`
}

// PricePoints is the ordered denomination table, stored as jsonb
type PricePoints []PricePoint

// Value implements the driver.Valuer interface for PricePoints
func (p PricePoints) Value() (driver.Value, error) {
	if p == nil {
		return json.Marshal([]PricePoint{})
	}
	return json.Marshal([]PricePoint(p))
}

// Scan implements the sql.Scanner interface for PricePoints
func (p *PricePoints) Scan(value any) error {
	if value == nil {
		*p = PricePoints{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PricePoints", value)
	}

	return json.Unmarshal(bytes, p)
}

// Equal reports whether both tables list the same denominations and quotes in the same order
func (p PricePoints) Equal(other PricePoints) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		a, b := p[i], other[i]
		if a.Gram != b.Gram || a.TotalPrice != b.TotalPrice || a.PerGramPrice != b.PerGramPrice {
			return false
		}
		if !a.UnitPricePerGram.Equal(b.UnitPricePerGram) {
			return false
		}
	}
	return true
}

// PriceSnapshot holds the reference prices published for one calendar day.
// Several rows may exist for the same date; the most recently created one is authoritative.
type PriceSnapshot struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	PriceDate        time.Time   `gorm:"type:date;not null;index:idx_gold_price_price_date" json:"price_date"`
	GoldBuyingPrice  PricePoints `gorm:"type:jsonb;not null" json:"gold_buying_price"`
	GoldSellingPrice string      `gorm:"size:64;not null" json:"gold_selling_price"`
	SourceURL        string      `gorm:"type:text" json:"source_url,omitempty"`
	CreatedAt        time.Time   `gorm:"not null;index:idx_gold_price_created_at" json:"created_at"`
}

// TableName returns the table name for the model
func (PriceSnapshot) TableName() string {
	return "gold_price"
}

// SameQuote reports whether two snapshots carry identical prices
func (s *PriceSnapshot) SameQuote(other *PriceSnapshot) bool {
	if s == nil || other == nil {
		return false
	}
	return s.GoldSellingPrice == other.GoldSellingPrice && s.GoldBuyingPrice.Equal(other.GoldBuyingPrice)
}

// PriceSnapshotFilter represents filter criteria for price snapshot queries
type PriceSnapshotFilter struct {
	ID        *uint
	PriceDate *time.Time
	DateFrom  *time.Time
	DateTo    *time.Time
}
