package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/app/middleware"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/rs/zerolog"
)

// PortfolioHandlerInterface defines the contract for the owner's gold ledger
type PortfolioHandlerInterface interface {
	ListLots(c fiber.Ctx) error
	CreateLot(c fiber.Ctx) error
	UpdateLot(c fiber.Ctx) error
	DeleteLot(c fiber.Ctx) error
}

// PortfolioHandler handles portfolio HTTP requests
type PortfolioHandler struct {
	flow      businessflow.PortfolioFlow
	validator *validator.Validate
	log       zerolog.Logger
}

func NewPortfolioHandler(flow businessflow.PortfolioFlow, log zerolog.Logger) PortfolioHandlerInterface {
	return &PortfolioHandler{
		flow:      flow,
		validator: validator.New(),
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

func (h *PortfolioHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *PortfolioHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListLots returns the owner's lots with derived columns and totals
// @Summary List Portfolio
// @Tags Portfolio
// @Produce json
// @Security BearerAuth
// @Param sort_key query string false "Sort key"
// @Param direction query string false "ascending or descending"
// @Param toggle query string false "Column clicked; toggles or switches the sort"
// @Success 200 {object} dto.APIResponse{data=dto.ListLotsResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Router /api/v1/portfolio [get]
func (h *PortfolioHandler) ListLots(c fiber.Ctx) error {
	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner not found in context", "MISSING_OWNER_ID", nil)
	}

	var req dto.ListLotsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	req.OwnerID = ownerID

	ctx := newRequestContext(c, "/api/v1/portfolio", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.ListLots(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to retrieve portfolio")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// CreateLot records a new gold purchase
// @Summary Create Portfolio Lot
// @Tags Portfolio
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateLotRequest true "Lot"
// @Success 201 {object} dto.APIResponse{data=dto.CreateLotResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse
// @Router /api/v1/portfolio [post]
func (h *PortfolioHandler) CreateLot(c fiber.Ctx) error {
	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner not found in context", "MISSING_OWNER_ID", nil)
	}

	var req dto.CreateLotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	req.OwnerID = ownerID
	req.OwnerEmail = middleware.GetOwnerEmailFromContext(c)

	ctx := newRequestContext(c, "/api/v1/portfolio", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.CreateLot(ctx, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsLotLimitReached(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Free plan lot limit reached", "LOT_LIMIT_REACHED", nil)
		}
		return h.flowError(c, err, "Failed to create portfolio lot")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// UpdateLot replaces a lot's weight, buying date and buying price
// @Summary Update Portfolio Lot
// @Tags Portfolio
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lot ID"
// @Param request body dto.UpdateLotRequest true "Lot"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateLotResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/portfolio/{id} [put]
func (h *PortfolioHandler) UpdateLot(c fiber.Ctx) error {
	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner not found in context", "MISSING_OWNER_ID", nil)
	}

	var req dto.UpdateLotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	req.OwnerID = ownerID
	req.LotID = c.Params("id")

	ctx := newRequestContext(c, "/api/v1/portfolio/:id", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.UpdateLot(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to update portfolio lot")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeleteLot removes a lot
// @Summary Delete Portfolio Lot
// @Tags Portfolio
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lot ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteLotResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/portfolio/{id} [delete]
func (h *PortfolioHandler) DeleteLot(c fiber.Ctx) error {
	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner not found in context", "MISSING_OWNER_ID", nil)
	}

	req := dto.DeleteLotRequest{OwnerID: ownerID, LotID: c.Params("id")}

	ctx := newRequestContext(c, "/api/v1/portfolio/:id", defaultRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.DeleteLot(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to delete portfolio lot")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *PortfolioHandler) flowError(c fiber.Ctx, err error, fallback string) error {
	status, code := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Msg(fallback)
		return h.ErrorResponse(c, status, fallback, code, nil)
	}
	return h.ErrorResponse(c, status, err.Error(), code, nil)
}
