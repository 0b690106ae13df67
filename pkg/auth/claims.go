package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a customer JWT.
type AccessTokenPayload struct {
	CustomerID string
	TenantSlug string
	Email      string
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to storefront customers.
type AccessTokenClaims struct {
	CustomerID string `json:"customer_id"`
	TenantSlug string `json:"tenant"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
