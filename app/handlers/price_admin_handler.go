package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/dto"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/rs/zerolog"
)

// Backfills scrape one page per date
const backfillRequestTimeout = 30 * time.Minute

// PriceAdminHandlerInterface defines the scheduler-triggered ingestion endpoints
type PriceAdminHandlerInterface interface {
	Ingest(c fiber.Ctx) error
	Backfill(c fiber.Ctx) error
}

type PriceAdminHandler struct {
	flow      businessflow.PriceIngestionFlow
	validator *validator.Validate
	log       zerolog.Logger
}

func NewPriceAdminHandler(flow businessflow.PriceIngestionFlow, log zerolog.Logger) PriceAdminHandlerInterface {
	return &PriceAdminHandler{
		flow:      flow,
		validator: validator.New(),
		log:       log.With().Str("handler", "price_admin").Logger(),
	}
}

func (h *PriceAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *PriceAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Ingest scrapes and stores the prices of one date (today when no date is given)
// @Summary Ingest Daily Prices
// @Tags Admin Prices
// @Accept json
// @Produce json
// @Param X-Cron-Secret header string true "Cron secret"
// @Param request body dto.IngestPricesRequest false "Date"
// @Success 200 {object} dto.APIResponse{data=dto.IngestPricesResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Failure 502 {object} dto.APIResponse
// @Router /api/v1/admin/prices/ingest [post]
func (h *PriceAdminHandler) Ingest(c fiber.Ctx) error {
	var req dto.IngestPricesRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx := newRequestContext(c, "/api/v1/admin/prices/ingest", 2*time.Minute)
	defer releaseRequestContext(ctx)

	result, err := h.flow.Ingest(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Price ingestion failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Backfill ingests every date of an inclusive range and reports per-date failures
// @Summary Backfill Prices
// @Tags Admin Prices
// @Accept json
// @Produce json
// @Param X-Cron-Secret header string true "Cron secret"
// @Param request body dto.BackfillPricesRequest true "Range"
// @Success 200 {object} dto.APIResponse{data=dto.BackfillPricesResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse
// @Router /api/v1/admin/prices/backfill [post]
func (h *PriceAdminHandler) Backfill(c fiber.Ctx) error {
	var req dto.BackfillPricesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	ctx := newRequestContext(c, "/api/v1/admin/prices/backfill", backfillRequestTimeout)
	defer releaseRequestContext(ctx)

	result, err := h.flow.BackfillRange(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Price backfill failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *PriceAdminHandler) flowError(c fiber.Ctx, err error, fallback string) error {
	status, code := errorStatus(err)
	h.log.Error().Err(err).Str("path", c.Path()).Msg(fallback)
	if status == fiber.StatusBadRequest || status == fiber.StatusBadGateway {
		return h.ErrorResponse(c, status, err.Error(), code, nil)
	}
	return h.ErrorResponse(c, status, fallback, code, nil)
}
