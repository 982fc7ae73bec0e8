package testing

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestToken describes an access token as the identity provider would issue it
type TestToken struct {
	OwnerID  string
	Email    string
	Issuer   string
	Audience string
	IssuedAt time.Time // defaults to now
	TTL      time.Duration
}

// SignTestToken signs tok with HS256. A zero TTL means one hour; a negative TTL yields an expired token.
func SignTestToken(secret string, tok TestToken) (string, error) {
	issuedAt := tok.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	ttl := tok.TTL
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := jwt.MapClaims{
		"sub": tok.OwnerID,
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	if tok.Email != "" {
		claims["email"] = tok.Email
	}
	if tok.Issuer != "" {
		claims["iss"] = tok.Issuer
	}
	if tok.Audience != "" {
		claims["aud"] = tok.Audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
