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
)

var ErrGumroadRequestFailed = errors.New("gumroad request failed")

// GumroadClient looks up subscription sales and product data
// Docs: https://app.gumroad.com/api
type GumroadClient struct {
	BaseURL     string
	AccessToken string
	ProductID   string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

func NewGumroadClient(baseURL, accessToken, productID string, timeout time.Duration) *GumroadClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GumroadClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AccessToken: accessToken,
		ProductID:   productID,
		HTTPClient:  &http.Client{Timeout: timeout},
		Timeout:     timeout,
	}
}

func (c *GumroadClient) Name() string { return "gumroad" }

type gumroadSale struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	ProductID          string `json:"product_id"`
	ProductPermalink   string `json:"product_permalink"`
	Paid               bool   `json:"paid"`
	IsRecurringBilling bool   `json:"is_recurring_billing"`
	Cancelled          bool   `json:"cancelled"`
	Dead               bool   `json:"dead"`
	Ended              bool   `json:"ended"`
	Refunded           bool   `json:"refunded"`
}

type gumroadSalesResp struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Sales   []gumroadSale `json:"sales"`
}

type gumroadProduct struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Currency       string `json:"currency"`
	FormattedPrice string `json:"formatted_price"`
}

type gumroadProductResp struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Product *gumroadProduct `json:"product"`
}

// active reports a paid, recurring, live sale of the product
func (s gumroadSale) active(product string) bool {
	return s.ProductPermalink == product &&
		s.Paid &&
		s.IsRecurringBilling &&
		!s.Cancelled &&
		!s.Dead
}

// IsSubscriptionActive reports whether any sale to email is a live subscription of the configured product
func (c *GumroadClient) IsSubscriptionActive(ctx context.Context, email string) (bool, error) {
	q := url.Values{}
	q.Set("access_token", c.AccessToken)
	q.Set("email", email)

	var out gumroadSalesResp
	if err := c.getJSON(ctx, "/sales?"+q.Encode(), false, &out); err != nil {
		return false, err
	}
	if !out.Success {
		return false, nil
	}
	for _, sale := range out.Sales {
		if sale.active(c.ProductID) {
			return true, nil
		}
	}
	return false, nil
}

// ProductPrice returns the product's formatted price as shown on Gumroad (e.g. "$20")
func (c *GumroadClient) ProductPrice(ctx context.Context) (string, error) {
	var out gumroadProductResp
	if err := c.getJSON(ctx, "/products/"+url.PathEscape(c.ProductID), true, &out); err != nil {
		return "", err
	}
	if !out.Success || out.Product == nil || out.Product.FormattedPrice == "" {
		return "", fmt.Errorf("%w: product %s has no price", ErrGumroadRequestFailed, c.ProductID)
	}
	return out.Product.FormattedPrice, nil
}

func (c *GumroadClient) getJSON(ctx context.Context, path string, bearer bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGumroadRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrGumroadRequestFailed, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrGumroadRequestFailed, err)
	}
	return nil
}
