package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims represents the typed JWT issued to clients. The username
// doubles as the registered subject claim.
type AccessTokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
