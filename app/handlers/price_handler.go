package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/dto"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/rs/zerolog"
)

// PriceHandlerInterface defines the contract for reading daily reference prices
type PriceHandlerInterface interface {
	GetSnapshot(c fiber.Ctx) error
	TodayPricing(c fiber.Ctx) error
}

type PriceHandler struct {
	flow      businessflow.PriceFlow
	validator *validator.Validate
	log       zerolog.Logger
}

func NewPriceHandler(flow businessflow.PriceFlow, log zerolog.Logger) PriceHandlerInterface {
	return &PriceHandler{
		flow:      flow,
		validator: validator.New(),
		log:       log.With().Str("handler", "price").Logger(),
	}
}

func (h *PriceHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *PriceHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// GetSnapshot returns the authoritative price snapshot of a date
// @Summary Get Price Snapshot
// @Tags Prices
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.GetPriceSnapshotResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/prices/{date} [get]
func (h *PriceHandler) GetSnapshot(c fiber.Ctx) error {
	req := dto.GetPriceSnapshotRequest{Date: c.Params("date")}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx := newRequestContext(c, "/api/v1/prices/:date", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.GetSnapshot(ctx, &req)
	if err != nil {
		if businessflow.IsSnapshotNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No prices recorded for this date", "PRICE_NOT_AVAILABLE", fiber.Map{"date": req.Date})
		}
		status, code := errorStatus(err)
		if status >= fiber.StatusInternalServerError {
			h.log.Error().Err(err).Str("date", req.Date).Msg("price snapshot lookup failed")
			return h.ErrorResponse(c, status, "Failed to retrieve price snapshot", code, nil)
		}
		return h.ErrorResponse(c, status, err.Error(), code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// TodayPricing returns today's denomination table
// @Summary Today's Prices
// @Tags Prices
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.TodayPricingResponse}
// @Router /api/v1/prices/today [get]
func (h *PriceHandler) TodayPricing(c fiber.Ctx) error {
	ctx := newRequestContext(c, "/api/v1/prices/today", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.TodayPricing(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("today pricing lookup failed")
		status, code := errorStatus(err)
		return h.ErrorResponse(c, status, "Failed to retrieve today's prices", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
