package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Appointment validation errors.
var (
	ErrAppointmentDateEmpty     = errors.New("appointment date cannot be empty")
	ErrAppointmentEmailEmpty    = errors.New("appointment email cannot be empty")
	ErrAppointmentCategoryEmpty = errors.New("appointment category cannot be empty")
)

// Appointment represents a booked office slot. The author is nullable:
// anonymous bookings exist until a user claims them.
type Appointment struct {
	ID         int64         `json:"id"`
	Date       Date          `json:"date"`
	StartTime  TimeOfDay     `json:"start_time"`
	Email      string        `json:"email"`
	CategoryID int64         `json:"category_id"`
	AuthorID   uuid.NullUUID `json:"author_id"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// NewAppointment creates an Appointment with the given slot, contact email
// and category, stamping UTC timestamps. The ID is assigned by the store.
// Returns an error if validation fails.
func NewAppointment(date Date, start TimeOfDay, email string, categoryID int64) (*Appointment, error) {
	appt := &Appointment{
		Date:       date,
		StartTime:  start,
		Email:      email,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := appt.Validate(); err != nil {
		return nil, err
	}

	return appt, nil
}

// Validate checks if the Appointment has valid data.
// Scheduling rules (weekends, office hours, overlaps) are checked
// separately by the schedule package; this covers structure only.
func (a *Appointment) Validate() error {
	if a.Date.IsZero() {
		return ErrAppointmentDateEmpty
	}

	if a.Email == "" {
		return ErrAppointmentEmailEmpty
	}

	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}

	if a.CategoryID == 0 {
		return ErrAppointmentCategoryEmpty
	}

	return nil
}

// OwnedBy reports whether the appointment belongs to the given user.
// Unassigned appointments belong to nobody.
func (a *Appointment) OwnedBy(userID uuid.UUID) bool {
	return a.AuthorID.Valid && a.AuthorID.UUID == userID
}
