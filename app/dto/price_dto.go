package dto

// PricePointDTO is one denomination of a daily price table
type PricePointDTO struct {
	Gram             string `json:"gram"`
	TotalPrice       string `json:"total_price"`
	PerGramPrice     string `json:"per_gram_price"`
	UnitPricePerGram string `json:"unit_price_per_gram"`
}

// PriceSnapshotDTO is the authoritative snapshot of one date
type PriceSnapshotDTO struct {
	PriceDate        string          `json:"price_date"`
	GoldSellingPrice string          `json:"gold_selling_price"`
	GoldBuyingPrice  []PricePointDTO `json:"gold_buying_price"`
	CreatedAt        string          `json:"created_at"`
}

type GetPriceSnapshotRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type GetPriceSnapshotResponse struct {
	Message  string           `json:"message"`
	Snapshot PriceSnapshotDTO `json:"snapshot"`
}

// TodayPriceRowDTO is a row of the "today's prices" table
type TodayPriceRowDTO struct {
	Gram                  string `json:"gram"`
	BuyingPricePerGram    string `json:"buying_price_per_gram"`
	TotalBuyingPrice      string `json:"total_buying_price"`
	TotalBuyingPriceValue string `json:"total_buying_price_value"`
}

// TodayPricingResponse carries today's snapshot, or Available=false when ingestion has not run yet
type TodayPricingResponse struct {
	Message          string             `json:"message"`
	Available        bool               `json:"available"`
	PriceDate        string             `json:"price_date"`
	GoldSellingPrice *string            `json:"gold_selling_price,omitempty"`
	Rows             []TodayPriceRowDTO `json:"rows"`
}

// IngestPricesRequest triggers ingestion for one date; empty Date means today
type IngestPricesRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type IngestPricesResponse struct {
	Message      string `json:"message"`
	PriceDate    string `json:"price_date"`
	Points       int    `json:"points"`
	SellingPrice string `json:"gold_selling_price"`
	Inserted     bool   `json:"inserted"`
}

type BackfillPricesRequest struct {
	From         string `json:"from" validate:"required,datetime=2006-01-02"`
	To           string `json:"to" validate:"required,datetime=2006-01-02"`
	SkipExisting bool   `json:"skip_existing"`
}

type BackfillFailureDTO struct {
	PriceDate string `json:"price_date"`
	Error     string `json:"error"`
}

type BackfillPricesResponse struct {
	Message  string                 `json:"message"`
	Ingested []IngestPricesResponse `json:"ingested"`
	Failures []BackfillFailureDTO   `json:"failures"`
	Skipped  []string               `json:"skipped"`
}
