package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrExchangeRateUnavailable = errors.New("exchange rate unavailable")

// ExchangeRateClient converts USD amounts using exchangerate-api.com
// Docs: https://www.exchangerate-api.com/docs/standard-requests
type ExchangeRateClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewExchangeRateClient(baseURL, apiKey string, timeout time.Duration) *ExchangeRateClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExchangeRateClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

func (c *ExchangeRateClient) Name() string { return "exchangerate-api" }

type exchangeRateResp struct {
	Result          string                     `json:"result"`
	ErrorType       string                     `json:"error-type,omitempty"`
	BaseCode        string                     `json:"base_code"`
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// Rate returns how many units of target one unit of base buys
func (c *ExchangeRateClient) Rate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", c.BaseURL, url.PathEscape(c.APIKey), url.PathEscape(strings.ToUpper(base)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrExchangeRateUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: status %d", ErrExchangeRateUnavailable, resp.StatusCode)
	}

	var out exchangeRateResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode: %v", ErrExchangeRateUnavailable, err)
	}
	if out.Result != "success" {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrExchangeRateUnavailable, out.ErrorType)
	}
	rate, ok := out.ConversionRates[strings.ToUpper(target)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no %s rate", ErrExchangeRateUnavailable, target)
	}
	return rate, nil
}

// ConvertUSD converts a USD amount into the target currency, rounded to whole units
func (c *ExchangeRateClient) ConvertUSD(ctx context.Context, amount decimal.Decimal, target string) (decimal.Decimal, error) {
	rate, err := c.Rate(ctx, "USD", target)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(0), nil
}
