// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/goldfolio/goldfolio-api/app/dto"
	"github.com/goldfolio/goldfolio-api/app/services"
)

const (
	ownerIDLocal     = "owner_id"
	ownerEmailLocal  = "owner_email"
	tokenClaimsLocal = "token_claims"

	// CronSecretHeader carries the shared secret of scheduler-triggered admin calls
	CronSecretHeader = "X-Cron-Secret"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
	cookieName   string
}

// NewAuthMiddleware creates a new authentication middleware.
// Tokens are read from the Authorization header, then from cookieName when set.
func NewAuthMiddleware(tokenService services.TokenService, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		cookieName:   cookieName,
	}
}

// Authenticate is the middleware function that validates JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, code, msg := m.extractToken(c)
		if token == "" {
			return unauthorized(c, code, msg)
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			var errorCode string
			var message string

			if errors.Is(err, services.ErrTokenExpired) {
				errorCode = "TOKEN_EXPIRED"
				message = "Access token has expired"
			} else if errors.Is(err, services.ErrTokenInvalid) {
				errorCode = "TOKEN_INVALID"
				message = "Invalid access token"
			} else {
				errorCode = "TOKEN_VALIDATION_FAILED"
				message = "Token validation failed"
			}
			return unauthorized(c, errorCode, message)
		}

		// Store owner information in context for downstream handlers
		c.Locals(ownerIDLocal, claims.OwnerID)
		c.Locals(ownerEmailLocal, claims.Email)
		c.Locals(tokenClaimsLocal, claims)

		return c.Next()
	}
}

// extractToken returns the bearer token, or an error code and message when none is usable
func (m *AuthMiddleware) extractToken(c fiber.Ctx) (string, string, string) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'"
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return "", "MISSING_ACCESS_TOKEN", "Access token is required"
		}
		return token, "", ""
	}

	if m.cookieName != "" {
		if token := c.Cookies(m.cookieName); token != "" {
			return token, "", ""
		}
	}
	return "", "MISSING_AUTHORIZATION_HEADER", "Authorization header is required"
}

// RequireCronSecret guards scheduler-triggered endpoints with a shared secret header.
// An empty secret disables the endpoints entirely.
func RequireCronSecret(secret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if secret == "" {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Admin endpoints are disabled",
				Error:   dto.ErrorDetail{Code: "ADMIN_DISABLED"},
			})
		}
		provided := c.Get(CronSecretHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return unauthorized(c, "INVALID_CRON_SECRET", "Invalid or missing cron secret")
		}
		return c.Next()
	}
}

// GetOwnerIDFromContext extracts the owner id from the request context
func GetOwnerIDFromContext(c fiber.Ctx) (string, bool) {
	ownerID, ok := c.Locals(ownerIDLocal).(string)
	return ownerID, ok && ownerID != ""
}

// GetOwnerEmailFromContext extracts the owner email from the request context
func GetOwnerEmailFromContext(c fiber.Ctx) string {
	email, _ := c.Locals(ownerEmailLocal).(string)
	return email
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(tokenClaimsLocal).(*services.TokenClaims)
	return claims, ok
}

func unauthorized(c fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}
