package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// CommentPage is one page of comments with its pagination metadata.
type CommentPage struct {
	Items []*domain.Comment
	Meta  jsonapi.PageMeta
}

// CommentRelated holds the eagerly loaded relations of a set of
// comments.
type CommentRelated struct {
	// Appointments by appointment ID.
	Appointments map[int64]*domain.Appointment

	// Authors by user ID.
	Authors map[uuid.UUID]*domain.User
}

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// List executes a QuerySpec over comments.
	List(ctx context.Context, spec *jsonapi.QuerySpec) (*CommentPage, error)

	// LoadRelated eagerly loads the requested relations of the given
	// comments in batched queries.
	LoadRelated(ctx context.Context, comments []*domain.Comment, includes []string) (*CommentRelated, error)

	// GetByID retrieves a comment by its ID.
	// Returns ErrCommentNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)

	// ListByAppointment returns every comment on an appointment, oldest
	// first.
	ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.Comment, error)

	// Create saves a new comment and assigns its ID.
	// Returns ErrInvalidEntity if the appointment or author is missing.
	Create(ctx context.Context, comment *domain.Comment) error

	// Update saves changes to an existing comment.
	// Returns ErrCommentNotFound if it does not exist.
	Update(ctx context.Context, comment *domain.Comment) error

	// Delete removes a comment by its ID.
	// Returns ErrCommentNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// AssociateWithAppointment re-points every listed comment at the
	// given appointment. Unknown comment IDs fail the whole operation
	// with ErrCommentNotFound.
	AssociateWithAppointment(ctx context.Context, appointmentID int64, commentIDs []int64) error

	// WithTx returns a CommentStore bound to the given transaction.
	WithTx(tx *sql.Tx) CommentStore
}
