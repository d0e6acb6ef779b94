package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// UserPage is one page of users with its pagination metadata.
type UserPage struct {
	Items []*domain.User
	Meta  jsonapi.PageMeta
}

// UserStore defines the interface for user persistence.
type UserStore interface {
	// List executes a QuerySpec over users.
	List(ctx context.Context, spec *jsonapi.QuerySpec) (*UserPage, error)

	// GetByID retrieves a user by ID, including granted permissions.
	// Returns ErrUserNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email, including granted
	// permissions. Returns ErrUserNotFound if it does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Create saves a new user along with any permissions already
	// granted on the struct. Returns ErrEmailExists if the email is
	// taken.
	Create(ctx context.Context, user *domain.User) error

	// GrantPermission records a permission for a user. Granting an
	// already held permission is a no-op.
	GrantPermission(ctx context.Context, userID uuid.UUID, permission string) error

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
