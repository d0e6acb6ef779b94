package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("Moises", "moises@example.com", "strongpassword")

	require.NoError(t, err)
	assert.NotEqual(t, "", user.ID.String())
	assert.Equal(t, "Moises", user.Name)
	assert.Empty(t, user.Permissions, "abilities are granted explicitly, not by construction")
}

func TestNewUserValidation(t *testing.T) {
	cases := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"empty name", "", "a@b.com", "strongpassword", ErrEmptyName},
		{"empty email", "x", "", "strongpassword", ErrEmptyEmail},
		{"malformed email", "x", "nope", "strongpassword", ErrInvalidEmail},
		{"empty password", "x", "a@b.com", "", ErrEmptyPassword},
		{"short password", "x", "a@b.com", "short", ErrPasswordTooShort},
		{"long password", "x", "a@b.com", strings.Repeat("p", 73), ErrPasswordTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.userName, tc.email, tc.password)

			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateAcceptsHashedPasswordOnly(t *testing.T) {
	user, err := NewUser("x", "a@b.com", "strongpassword")
	require.NoError(t, err)

	user.Password = ""
	user.HashedPassword = "$2a$10$fakehash"

	assert.NoError(t, user.Validate())
}

func TestGrantPermissionIsIdempotent(t *testing.T) {
	user := &User{}

	user.GrantPermission(AbilityAppointmentCreate)
	user.GrantPermission(AbilityAppointmentCreate)
	user.GrantPermission(AbilityAppointmentDelete)

	assert.Equal(t, []string{AbilityAppointmentCreate, AbilityAppointmentDelete}, user.Permissions)
	assert.True(t, user.HasPermission(AbilityAppointmentCreate))
	assert.False(t, user.HasPermission(AbilityAppointmentUpdate))
}

func TestAllAbilitiesCoversTheClosedSet(t *testing.T) {
	assert.Equal(t, []string{
		AbilityAppointmentCreate,
		AbilityAppointmentUpdate,
		AbilityAppointmentDelete,
	}, AllAbilities)
}
