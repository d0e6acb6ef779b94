package domain

import "time"

// Category is an appointment classification. Read-only through the API;
// rows are seeded by migrations or back office tooling.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
