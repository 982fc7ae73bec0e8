// Package businessflow contains the business logic for the application.
package businessflow

import (
	"strings"
	"time"

	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/models"
	"github.com/goldfolio/goldfolio-api/utils"
)

// Owner is the authenticated caller as asserted by the identity token
type Owner struct {
	ID    string
	Email string
}

// Valid reports whether the owner carries an identity
func (o Owner) Valid() bool {
	return strings.TrimSpace(o.ID) != ""
}

// ClientMetadata holds client-related information for request logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToLotDTO converts a lot model to its API shape
func ToLotDTO(lot *models.PortfolioLot) dto.LotDTO {
	return dto.LotDTO{
		ID:              lot.UUID.String(),
		GoldWeight:      lot.GoldWeight,
		GoldBuyingDate:  utils.FormatDate(lot.GoldBuyingDate),
		GoldBuyingPrice: lot.GoldBuyingPrice,
		CreatedAt:       lot.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       lot.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ToLedgerRowDTO renders a ledger row with its formatted columns
func ToLedgerRowDTO(row LedgerRow) dto.LedgerRowDTO {
	out := dto.LedgerRowDTO{
		LotDTO:               ToLotDTO(row.Lot),
		FormattedBuyingPrice: FormatAmount(row.Lot.GoldBuyingPrice),
	}
	if row.SellingValue != nil {
		out.TodaySellingPrice = utils.ToPtr(*row.SellingValue)
		out.FormattedTodaySellingPrice = utils.ToPtr(FormatAmount(*row.SellingValue))
	}
	if row.Gain != nil {
		out.Gain = utils.ToPtr(*row.Gain)
		out.FormattedGain = utils.ToPtr(FormatGain(*row.Gain))
	}
	return out
}

// ToLedgerTotalsDTO renders the footer of a ledger view
func ToLedgerTotalsDTO(totals LedgerTotals) dto.LedgerTotalsDTO {
	out := dto.LedgerTotalsDTO{
		TotalWeight:          totals.TotalWeight,
		FormattedTotalWeight: FormatWeight(totals.TotalWeight),
	}
	if totals.TotalGain != nil {
		out.TotalGain = utils.ToPtr(*totals.TotalGain)
		out.FormattedTotalGain = utils.ToPtr(FormatGain(*totals.TotalGain))
	}
	return out
}

// ToPriceSnapshotDTO converts a snapshot model to its API shape
func ToPriceSnapshotDTO(s *models.PriceSnapshot) dto.PriceSnapshotDTO {
	points := make([]dto.PricePointDTO, 0, len(s.GoldBuyingPrice))
	for _, p := range s.GoldBuyingPrice {
		points = append(points, dto.PricePointDTO{
			Gram:             p.Gram,
			TotalPrice:       p.TotalPrice,
			PerGramPrice:     p.PerGramPrice,
			UnitPricePerGram: p.UnitPricePerGram.StringFixed(unitPriceScale),
		})
	}
	return dto.PriceSnapshotDTO{
		PriceDate:        utils.FormatDate(s.PriceDate),
		GoldSellingPrice: s.GoldSellingPrice,
		GoldBuyingPrice:  points,
		CreatedAt:        s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
