package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/platform/logger"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// PostgresTokenStore implements the store.TokenStore interface
// using a PostgreSQL database as the storage backend. Revoked token IDs
// are kept until their natural expiry so logout outlives the token.
type PostgresTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTokenStore creates a new PostgreSQL implementation of the
// TokenStore interface. If logger is nil, a default logger will be used.
func NewPostgresTokenStore(db store.DBTX, logger *slog.Logger) *PostgresTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_store")),
	}
}

// Ensure PostgresTokenStore implements store.TokenStore interface
var _ store.TokenStore = (*PostgresTokenStore)(nil)

// Revoke implements store.TokenStore.Revoke
// Revoking the same token twice is a no-op.
func (s *PostgresTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO revoked_tokens (jti, expires_at, revoked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (jti) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, jti, expiresAt); err != nil {
		log.Error("failed to revoke token", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("token revoked", slog.String("jti", jti))
	return nil
}

// IsRevoked implements store.TokenStore.IsRevoked
// Expired rows are ignored; they are dead tokens either way.
func (s *PostgresTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)", jti,
	).Scan(&revoked)
	if err != nil {
		return false, MapError(err)
	}
	return revoked, nil
}
