package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/app/middleware"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/rs/zerolog"
)

type SubscriptionHandlerInterface interface {
	Status(c fiber.Ctx) error
	Price(c fiber.Ctx) error
}

type SubscriptionHandler struct {
	flow businessflow.SubscriptionFlow
	log  zerolog.Logger
}

func NewSubscriptionHandler(flow businessflow.SubscriptionFlow, log zerolog.Logger) SubscriptionHandlerInterface {
	return &SubscriptionHandler{
		flow: flow,
		log:  log.With().Str("handler", "subscription").Logger(),
	}
}

func (h *SubscriptionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *SubscriptionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Status reports whether the caller holds an active subscription
// @Summary Subscription Status
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SubscriptionStatusResponse}
// @Failure 401 {object} dto.APIResponse
// @Failure 502 {object} dto.APIResponse
// @Router /api/v1/subscription/status [get]
func (h *SubscriptionHandler) Status(c fiber.Ctx) error {
	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner not found in context", "MISSING_OWNER_ID", nil)
	}
	owner := businessflow.Owner{ID: ownerID, Email: middleware.GetOwnerEmailFromContext(c)}

	ctx := newRequestContext(c, "/api/v1/subscription/status", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.Status(ctx, owner)
	if err != nil {
		status, code := errorStatus(err)
		h.log.Error().Err(err).Str("owner_id", ownerID).Msg("subscription status lookup failed")
		return h.ErrorResponse(c, status, "Failed to retrieve subscription status", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Price returns the yearly subscription price
// @Summary Subscription Price
// @Tags Subscription
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SubscriptionPriceResponse}
// @Failure 502 {object} dto.APIResponse
// @Router /api/v1/subscription/price [get]
func (h *SubscriptionHandler) Price(c fiber.Ctx) error {
	ctx := newRequestContext(c, "/api/v1/subscription/price", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.Price(ctx)
	if err != nil {
		status, code := errorStatus(err)
		h.log.Error().Err(err).Msg("subscription price lookup failed")
		return h.ErrorResponse(c, status, "Failed to retrieve subscription price", code, nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
