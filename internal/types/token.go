package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a bearer token. The registered ID claim carries
// the stored token key so a revoked key invalidates every copy of the token.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"user_id"`
}
