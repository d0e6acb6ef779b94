package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token containing the user's
	// identity, granted abilities and the name of the device the token was
	// issued to. Returns the token string or an error if generation fails.
	GenerateToken(ctx context.Context, userID uuid.UUID, abilities []string, deviceName string) (string, error)

	// ValidateToken validates the provided access token string and extracts
	// the claims. Returns the claims containing user information if the
	// token is valid, or an error if validation fails (expired, invalid
	// signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Abilities are the actions the token may perform, e.g.
	// "appointment:create". A token without an ability is rejected by the
	// authorization check even when the route is otherwise reachable.
	Abilities []string `json:"abl,omitempty"`

	// DeviceName labels the client the token was issued to.
	DeviceName string `json:"dev,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Can reports whether the token carries the given ability.
func (c *Claims) Can(ability string) bool {
	for _, a := range c.Abilities {
		if a == ability {
			return true
		}
	}
	return false
}
