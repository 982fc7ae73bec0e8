package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/dto"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// withOwner stands in for the auth middleware
func withOwner(ownerID, email string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if ownerID != "" {
			c.Locals("owner_id", ownerID)
			c.Locals("owner_email", email)
		}
		return c.Next()
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any) (int, testResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out testResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func newPortfolioTestApp(flow businessflow.PortfolioFlow, ownerID string) *fiber.App {
	h := NewPortfolioHandler(flow, zerolog.Nop())
	app := fiber.New()
	app.Use(withOwner(ownerID, "owner@example.com"))
	app.Get("/portfolio", h.ListLots)
	app.Post("/portfolio", h.CreateLot)
	app.Put("/portfolio/:id", h.UpdateLot)
	app.Delete("/portfolio/:id", h.DeleteLot)
	return app
}

func TestPortfolioHandlerListLots(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("ListLots", mock.Anything, mock.MatchedBy(func(req *dto.ListLotsRequest) bool {
			return req.OwnerID == "owner-1" && req.SortKey == "gains" && req.Direction == "asc"
		}), mock.Anything).Return(&dto.ListLotsResponse{
			Message:        "Portfolio retrieved successfully",
			PriceAvailable: true,
			Rows:           []dto.LedgerRowDTO{},
		}, nil)

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodGet, "/portfolio?sort_key=gains&direction=asc", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, resp.Success)

		var data dto.ListLotsResponse
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.True(t, data.PriceAvailable)
		flow.AssertExpectations(t)
	})

	t.Run("InvalidSortKey", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodGet, "/portfolio?sort_key=colour", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		flow.AssertNotCalled(t, "ListLots", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DerivedSortWithoutPrice", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("ListLots", mock.Anything, mock.Anything, mock.Anything).Return(nil, businessflow.ErrSortKeyUnavailable)

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodGet, "/portfolio?toggle=gains", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("NoOwner", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		status, resp := doRequest(t, newPortfolioTestApp(flow, ""), http.MethodGet, "/portfolio", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "MISSING_OWNER_ID", resp.Error.Code)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("ListLots", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, businessflow.NewBusinessError("LIST_LOTS_FAILED", "Failed to list portfolio lots", errors.New("db down")))

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodGet, "/portfolio", nil)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "LIST_LOTS_FAILED", resp.Error.Code)
		assert.Equal(t, "Failed to retrieve portfolio", resp.Message)
	})
}

func TestPortfolioHandlerCreateLot(t *testing.T) {
	body := map[string]any{
		"gold_weight":       10,
		"gold_buying_date":  "2024-01-15",
		"gold_buying_price": 9000000,
	}

	t.Run("Created", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("CreateLot", mock.Anything, mock.MatchedBy(func(req *dto.CreateLotRequest) bool {
			return req.OwnerID == "owner-1" && req.OwnerEmail == "owner@example.com" && req.GoldWeight == 10
		}), mock.Anything).Return(&dto.CreateLotResponse{
			Message: "Portfolio lot created successfully",
			Lot:     dto.LotDTO{ID: "lot-1"},
		}, nil)

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodPost, "/portfolio", body)
		assert.Equal(t, http.StatusCreated, status)
		assert.True(t, resp.Success)
		flow.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodPost, "/portfolio", map[string]any{"gold_weight": 1})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

		var details []string
		require.NoError(t, json.Unmarshal(resp.Error.Details, &details))
		assert.Contains(t, details, "GoldBuyingDate is required")
	})

	t.Run("LotLimitReached", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("CreateLot", mock.Anything, mock.Anything, mock.Anything).Return(nil, businessflow.ErrLotLimitReached)

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodPost, "/portfolio", body)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "LOT_LIMIT_REACHED", resp.Error.Code)
	})

	t.Run("FutureDate", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("CreateLot", mock.Anything, mock.Anything, mock.Anything).Return(nil, businessflow.ErrBuyingDateInFuture)

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodPost, "/portfolio", body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Message, "future")
	})
}

func TestPortfolioHandlerUpdateLot(t *testing.T) {
	body := map[string]any{
		"gold_weight":       2.5,
		"gold_buying_date":  "2024-02-01",
		"gold_buying_price": 3000000,
	}

	t.Run("Success", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("UpdateLot", mock.Anything, mock.MatchedBy(func(req *dto.UpdateLotRequest) bool {
			return req.OwnerID == "owner-1" && req.LotID == "lot-1"
		}), mock.Anything).Return(&dto.UpdateLotResponse{Message: "Portfolio lot updated successfully"}, nil)

		status, _ := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodPut, "/portfolio/lot-1", body)
		assert.Equal(t, http.StatusOK, status)
		flow.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("UpdateLot", mock.Anything, mock.Anything, mock.Anything).Return(nil, businessflow.ErrLotNotFound)

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodPut, "/portfolio/lot-1", body)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "LOT_NOT_FOUND", resp.Error.Code)
	})
}

func TestPortfolioHandlerDeleteLot(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("DeleteLot", mock.Anything, &dto.DeleteLotRequest{OwnerID: "owner-1", LotID: "lot-1"}, mock.Anything).
			Return(&dto.DeleteLotResponse{Message: "Portfolio lot deleted successfully", ID: "lot-1"}, nil)

		status, resp := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodDelete, "/portfolio/lot-1", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Portfolio lot deleted successfully", resp.Message)
	})

	t.Run("InvalidID", func(t *testing.T) {
		flow := new(MockPortfolioFlow)
		flow.On("DeleteLot", mock.Anything, mock.Anything, mock.Anything).Return(nil, businessflow.ErrInvalidLotID)

		status, _ := doRequest(t, newPortfolioTestApp(flow, "owner-1"), http.MethodDelete, "/portfolio/nope", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
