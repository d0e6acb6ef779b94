package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User validation errors.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// The closed set of abilities a credential can carry. Authorization
// policies check these by equality, never by pattern match.
const (
	AbilityAppointmentCreate = "appointment:create"
	AbilityAppointmentUpdate = "appointment:update"
	AbilityAppointmentDelete = "appointment:delete"
)

// AllAbilities lists every grantable ability. Registration grants the
// full set.
var AllAbilities = []string{
	AbilityAppointmentCreate,
	AbilityAppointmentUpdate,
	AbilityAppointmentDelete,
}

// User represents a registered author of appointments and comments.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set during registration/updates
	HashedPassword string    `json:"-"` // Never serialized
	Permissions    []string  `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given name, email and password.
// It generates the user ID and stamps UTC timestamps. The caller is
// responsible for hashing the password before the user is stored.
func NewUser(name, email, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Password:  password,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		// bcrypt truncates past 72 bytes, so longer passwords are rejected
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// GrantPermission adds an ability to the user's permission set. Granting
// an ability the user already has is a no-op, so the set never holds
// duplicates.
func (u *User) GrantPermission(name string) {
	if u.HasPermission(name) {
		return
	}
	u.Permissions = append(u.Permissions, name)
}

// HasPermission reports whether the user holds the named ability.
func (u *User) HasPermission(name string) bool {
	for _, p := range u.Permissions {
		if p == name {
			return true
		}
	}
	return false
}
