package dto

type SubscriptionStatusResponse struct {
	Message      string `json:"message"`
	IsActive     bool   `json:"is_active"`
	Entitlement  string `json:"entitlement"`
	FreeLotLimit int    `json:"free_lot_limit"`
}

// SubscriptionPriceResponse carries the yearly price; IDR fields are empty when conversion failed
type SubscriptionPriceResponse struct {
	Message      string  `json:"message"`
	PriceUSD     string  `json:"price_usd"`
	PriceIDR     *int64  `json:"price_idr,omitempty"`
	DisplayPrice string  `json:"display_price"`
	CachedUntil  *string `json:"cached_until,omitempty"`
}
