package security

import (
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type WorkerIdentity struct {
	Id         string
	Name       string
	Permission string
	Email      string
}

type Identity struct {
	ID         string `json:"nameid"`
	UniqueName string `json:"unique_name"`
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

// CreateIdentityToken mints the HS256 token the API middleware validates.
// base64Secret is the shared signing secret, base64 encoded.
func CreateIdentityToken(identity *WorkerIdentity, base64Secret string, expiresInSeconds int64) (string, error) {
	secretBytes, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}
	claims := IdentityClaims{
		Identity: Identity{
			ID:         identity.Id,
			UniqueName: identity.Name,
			Email:      identity.Email,
			Permission: identity.Permission,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "shift-scan",
			Audience:  []string{"shift-scan-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiresInSeconds) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretBytes)
}
