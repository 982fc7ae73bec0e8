package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGumroadIsSubscriptionActive(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{
			name:     "ActiveSubscription",
			body:     `{"success":true,"sales":[{"email":"a@example.com","product_permalink":"goldfolio","paid":true,"is_recurring_billing":true}]}`,
			expected: true,
		},
		{
			name:     "Cancelled",
			body:     `{"success":true,"sales":[{"product_permalink":"goldfolio","paid":true,"is_recurring_billing":true,"cancelled":true}]}`,
			expected: false,
		},
		{
			name:     "Dead",
			body:     `{"success":true,"sales":[{"product_permalink":"goldfolio","paid":true,"is_recurring_billing":true,"dead":true}]}`,
			expected: false,
		},
		{
			name:     "OneOffPurchase",
			body:     `{"success":true,"sales":[{"product_permalink":"goldfolio","paid":true}]}`,
			expected: false,
		},
		{
			name:     "OtherProduct",
			body:     `{"success":true,"sales":[{"product_permalink":"ebook","paid":true,"is_recurring_billing":true}]}`,
			expected: false,
		},
		{
			name:     "Unsuccessful",
			body:     `{"success":false,"message":"not found"}`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/sales", r.URL.Path)
				assert.Equal(t, "a@example.com", r.URL.Query().Get("email"))
				assert.Equal(t, "token", r.URL.Query().Get("access_token"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewGumroadClient(srv.URL+"/", "token", "goldfolio", time.Second)
			active, err := client.IsSubscriptionActive(context.Background(), "a@example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, active)
		})
	}
}

func TestGumroadIsSubscriptionActiveHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewGumroadClient(srv.URL, "bad", "goldfolio", time.Second)
	_, err := client.IsSubscriptionActive(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, ErrGumroadRequestFailed)
}

func TestGumroadProductPrice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/products/goldfolio", r.URL.Path)
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"success":true,"product":{"id":"goldfolio","price":2000,"currency":"usd","formatted_price":"$20"}}`))
		}))
		defer srv.Close()

		price, err := NewGumroadClient(srv.URL, "token", "goldfolio", time.Second).ProductPrice(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "$20", price)
	})

	t.Run("MissingPrice", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"product":{"id":"goldfolio"}}`))
		}))
		defer srv.Close()

		_, err := NewGumroadClient(srv.URL, "token", "goldfolio", time.Second).ProductPrice(context.Background())
		assert.ErrorIs(t, err, ErrGumroadRequestFailed)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := NewGumroadClient(srv.URL, "token", "goldfolio", time.Second).ProductPrice(context.Background())
		assert.ErrorIs(t, err, ErrGumroadRequestFailed)
	})
}
