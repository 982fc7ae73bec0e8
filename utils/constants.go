package utils

// Request context keys
type contextKey string

const (
	RequestIDKey  contextKey = "request_id"
	UserAgentKey  contextKey = "user_agent"
	IPAddressKey  contextKey = "ip_address"
	EndpointKey   contextKey = "endpoint"
	TimeoutKey    contextKey = "timeout"
	CancelFuncKey contextKey = "cancel_func"
)

// Calendar and pricing constants
const (
	// DateLayout is the ISO calendar date format used for buying dates and price dates
	DateLayout = "2006-01-02"

	// DefaultMinBuyingDate is the earliest date the price source has data for
	DefaultMinBuyingDate = "2013-11-08"

	// RupiahCurrency is the only currency the ledger is kept in
	RupiahCurrency = "IDR"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
