package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeTreeRefresh allows forcing a source re-fetch via POST /api/tree/refresh
const ScopeTreeRefresh = "steptree:refresh"

// Claims is the JWT claim set accepted by the service. Scope is the
// OAuth2 space-separated scope string.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
	Scope string `json:"scope"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// HasScope reports whether scope is granted. The "admin" role holds every scope.
func (c *Claims) HasScope(scope string) bool {
	if c.Role == "admin" {
		return true
	}
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}
