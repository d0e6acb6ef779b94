package store

import (
	"context"
	"time"
)

// TokenStore tracks revoked access tokens by their JWT ID so logout
// can invalidate a token before it expires.
type TokenStore interface {
	// Revoke records a token ID as revoked until its expiry, after
	// which the row may be purged. Revoking twice is a no-op.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether a token ID has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
