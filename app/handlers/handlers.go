// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	businessflow "github.com/goldfolio/goldfolio-api/business_flow"
	"github.com/goldfolio/goldfolio-api/utils"
)

const defaultRequestTimeout = 30 * time.Second

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "datetime":
		return err.Field() + " must be a date in YYYY-MM-DD format"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func validationMessages(err error) []string {
	var messages []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			messages = append(messages, getValidationErrorMessage(e))
		}
		return messages
	}
	return []string{err.Error()}
}

// errorStatus maps a flow error kind to an HTTP status and error code
func errorStatus(err error) (int, string) {
	switch {
	case businessflow.IsUnauthorized(err):
		return fiber.StatusUnauthorized, "AUTHENTICATION_REQUIRED"
	case businessflow.IsLotNotFound(err):
		return fiber.StatusNotFound, "LOT_NOT_FOUND"
	case businessflow.IsSnapshotNotFound(err):
		return fiber.StatusNotFound, "PRICE_NOT_AVAILABLE"
	case businessflow.IsNotFound(err):
		return fiber.StatusNotFound, "NOT_FOUND"
	case businessflow.IsValidationFailed(err):
		return fiber.StatusBadRequest, "VALIDATION_ERROR"
	case businessflow.IsUpstreamUnavailable(err):
		return fiber.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	}
	if be, ok := businessflow.IsBusinessError(err); ok {
		return fiber.StatusInternalServerError, be.Code
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR"
}

func newRequestContext(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

// releaseRequestContext cancels a context built by newRequestContext
func releaseRequestContext(ctx context.Context) {
	if cancel, ok := ctx.Value(utils.CancelFuncKey).(context.CancelFunc); ok {
		cancel()
	}
}

func requestID(c fiber.Ctx) string {
	if id := c.Get("X-Request-ID"); id != "" {
		return id
	}
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))
	return metadata
}
