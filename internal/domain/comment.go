package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment validation errors.
var (
	ErrCommentBodyEmpty        = errors.New("comment body cannot be empty")
	ErrCommentAppointmentEmpty = errors.New("comment appointment cannot be empty")
	ErrCommentAuthorEmpty      = errors.New("comment author cannot be empty")
)

// Comment is a remark left by a user on an appointment.
type Comment struct {
	ID            int64     `json:"id"`
	Body          string    `json:"body"`
	AppointmentID int64     `json:"appointment_id"`
	AuthorID      uuid.UUID `json:"author_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewComment creates a Comment referencing an existing appointment and
// author. Returns an error if validation fails.
func NewComment(body string, appointmentID int64, authorID uuid.UUID) (*Comment, error) {
	comment := &Comment{
		Body:          body,
		AppointmentID: appointmentID,
		AuthorID:      authorID,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.Body == "" {
		return ErrCommentBodyEmpty
	}

	if c.AppointmentID == 0 {
		return ErrCommentAppointmentEmpty
	}

	if c.AuthorID == uuid.Nil {
		return ErrCommentAuthorEmpty
	}

	return nil
}

// OwnedBy reports whether the comment was written by the given user.
func (c *Comment) OwnedBy(userID uuid.UUID) bool {
	return c.AuthorID == userID
}
