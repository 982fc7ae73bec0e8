package dto

// CreateLotRequest records a new gold purchase
type CreateLotRequest struct {
	OwnerID         string  `json:"-"`
	OwnerEmail      string  `json:"-"`
	GoldWeight      float64 `json:"gold_weight" validate:"required,gt=0"`
	GoldBuyingDate  string  `json:"gold_buying_date" validate:"required,datetime=2006-01-02"`
	GoldBuyingPrice float64 `json:"gold_buying_price" validate:"required,gt=0"`
}

// UpdateLotRequest replaces the editable fields of a lot
// LotID is taken from the path
type UpdateLotRequest struct {
	OwnerID         string  `json:"-"`
	LotID           string  `json:"-"`
	GoldWeight      float64 `json:"gold_weight" validate:"required,gt=0"`
	GoldBuyingDate  string  `json:"gold_buying_date" validate:"required,datetime=2006-01-02"`
	GoldBuyingPrice float64 `json:"gold_buying_price" validate:"required,gt=0"`
}

type DeleteLotRequest struct {
	OwnerID string `json:"-"`
	LotID   string `json:"-"`
}

// ListLotsRequest selects the ledger sort state.
// When Toggle is set it is applied as a column click on top of SortKey/Direction.
type ListLotsRequest struct {
	OwnerID   string `json:"-"`
	SortKey   string `query:"sort_key" validate:"omitempty,oneof=created_at updated_at gold_weight gold_buying_date gold_buying_price today_selling_price gains"`
	Direction string `query:"direction" validate:"omitempty,oneof=ascending descending asc desc"`
	Toggle    string `query:"toggle" validate:"omitempty,oneof=created_at updated_at gold_weight gold_buying_date gold_buying_price today_selling_price gains"`
}

// LotDTO is a lot as stored
type LotDTO struct {
	ID              string  `json:"id"`
	GoldWeight      float64 `json:"gold_weight"`
	GoldBuyingDate  string  `json:"gold_buying_date"`
	GoldBuyingPrice float64 `json:"gold_buying_price"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// LedgerRowDTO is a lot plus its display columns. Derived columns are omitted without a selling price.
type LedgerRowDTO struct {
	LotDTO
	FormattedBuyingPrice       string   `json:"formatted_gold_buying_price"`
	TodaySellingPrice          *float64 `json:"today_selling_price,omitempty"`
	FormattedTodaySellingPrice *string  `json:"formatted_today_selling_price,omitempty"`
	Gain                       *float64 `json:"gains,omitempty"`
	FormattedGain              *string  `json:"formatted_gains,omitempty"`
}

type LedgerTotalsDTO struct {
	TotalWeight          float64  `json:"total_weight"`
	FormattedTotalWeight string   `json:"formatted_total_weight"`
	TotalGain            *float64 `json:"total_gains,omitempty"`
	FormattedTotalGain   *string  `json:"formatted_total_gains,omitempty"`
}

type SortStateDTO struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

// ListLotsResponse is the owner's ledger
type ListLotsResponse struct {
	Message          string          `json:"message"`
	PriceAvailable   bool            `json:"price_available"`
	PriceDate        *string         `json:"price_date,omitempty"`
	SellingPrice     *string         `json:"gold_selling_price,omitempty"`
	Sort             *SortStateDTO   `json:"sort,omitempty"`
	Rows             []LedgerRowDTO  `json:"rows"`
	Totals           LedgerTotalsDTO `json:"totals"`
	MinBuyingDate    string          `json:"min_buying_date"`
	LotLimitEnforced bool            `json:"lot_limit_enforced"`
}

type CreateLotResponse struct {
	Message string `json:"message"`
	Lot     LotDTO `json:"lot"`
}

type UpdateLotResponse struct {
	Message string `json:"message"`
	Lot     LotDTO `json:"lot"`
}

type DeleteLotResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
