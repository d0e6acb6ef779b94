package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: "appointments_date_start_time_key"}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", pgError("23505"), store.ErrDuplicate},
		{"foreign key violation", pgError("23503"), store.ErrInvalidEntity},
		{"check violation", pgError("23514"), store.ErrInvalidEntity},
		{"not null violation", pgError("23502"), store.ErrInvalidEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.in)

			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapErrorPassesUnknownThrough(t *testing.T) {
	original := errors.New("connection refused")

	assert.Equal(t, original, MapError(original))
}

func TestMapErrorPreservesWrappedPgError(t *testing.T) {
	wrapped := fmt.Errorf("insert appointment: %w", pgError("23505"))

	got := MapError(wrapped)

	assert.ErrorIs(t, got, store.ErrDuplicate)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgError("23505")))
	assert.False(t, IsUniqueViolation(pgError("23503")))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
}

func TestMapUniqueViolation(t *testing.T) {
	got := MapUniqueViolation(pgError("23505"), store.ErrSlotTaken)
	assert.ErrorIs(t, got, store.ErrSlotTaken)

	got = MapUniqueViolation(pgError("23505"), nil)
	assert.ErrorIs(t, got, store.ErrDuplicate)

	original := errors.New("unrelated")
	assert.Equal(t, original, MapUniqueViolation(original, store.ErrSlotTaken))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, "appointment"))

	err := CheckRowsAffected(fakeResult{rows: 0}, "appointment")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "appointment not found")

	assert.Error(t, CheckRowsAffected(nil, "appointment"))
	assert.Error(t, CheckRowsAffected(fakeResult{err: errors.New("bad driver")}, "appointment"))
}
