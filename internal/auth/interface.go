package auth

import "steptree/internal/domain/models"

// JWTVerifier checks bearer tokens presented to the tree API.
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid token. Any failure
	// (bad signature, expired, missing subject) is domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close stops background key refresh.
	Close() error
}
