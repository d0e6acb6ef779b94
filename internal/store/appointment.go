package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// AppointmentPage is one page of appointments with its pagination
// metadata.
type AppointmentPage struct {
	Items []*domain.Appointment
	Meta  jsonapi.PageMeta
}

// AppointmentRelated holds the eagerly loaded relations of a set of
// appointments, keyed for attachment by the document builder.
type AppointmentRelated struct {
	// Categories by category ID.
	Categories map[int64]*domain.Category

	// Authors by user ID.
	Authors map[uuid.UUID]*domain.User

	// Comments grouped by appointment ID.
	Comments map[int64][]*domain.Comment
}

// AppointmentStore defines the interface for appointment persistence,
// including the spec-driven query execution used by the list endpoint.
type AppointmentStore interface {
	// List executes a QuerySpec: filters, ordering, sparse projection
	// and pagination. The spec is assumed validated by the query parser.
	List(ctx context.Context, spec *jsonapi.QuerySpec) (*AppointmentPage, error)

	// LoadRelated eagerly loads the requested relations of the given
	// appointments in batched queries.
	LoadRelated(ctx context.Context, appts []*domain.Appointment, includes []string) (*AppointmentRelated, error)

	// GetByID retrieves an appointment by its ID.
	// Returns ErrAppointmentNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)

	// StartTimesOn returns the start times already booked on a date,
	// excluding the appointment with excludeID when non-zero. Used by
	// the scheduling validator's overlap rule.
	StartTimesOn(ctx context.Context, date domain.Date, excludeID int64) ([]domain.TimeOfDay, error)

	// Create saves a new appointment and assigns its ID.
	// Returns ErrSlotTaken if the exact slot is already booked and
	// ErrInvalidEntity if a referenced category or author is missing.
	Create(ctx context.Context, appt *domain.Appointment) error

	// Update saves changes to an existing appointment.
	// Returns ErrAppointmentNotFound if it does not exist.
	Update(ctx context.Context, appt *domain.Appointment) error

	// Delete removes an appointment by its ID.
	// Returns ErrAppointmentNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns an AppointmentStore bound to the given transaction.
	WithTx(tx *sql.Tx) AppointmentStore
}
