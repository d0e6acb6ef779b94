package postgres

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

func TestWhereBuilderLike(t *testing.T) {
	b := &whereBuilder{}
	b.like("email", "gmail")

	assert.Equal(t, " WHERE email::text ILIKE '%' || $1 || '%'", b.where())
	assert.Equal(t, []any{"gmail"}, b.args)
}

func TestWhereBuilderDatePart(t *testing.T) {
	b := &whereBuilder{}
	b.datePart("YEAR", "date", "2025")
	b.datePart("MONTH", "date", " 11 ")

	assert.Equal(t, " WHERE EXTRACT(YEAR FROM date) = $1 AND EXTRACT(MONTH FROM date) = $2", b.where())
	assert.Equal(t, []any{2025, 11}, b.args)
}

func TestWhereBuilderDatePartNonNumeric(t *testing.T) {
	b := &whereBuilder{}
	b.datePart("YEAR", "date", "twenty25")

	assert.Equal(t, " WHERE FALSE", b.where())
	assert.Empty(t, b.args)
}

func TestWhereBuilderIn(t *testing.T) {
	b := &whereBuilder{}
	b.in("category_id::text", []string{"1", " 2 ", "3"})

	assert.Equal(t, " WHERE category_id::text IN ($1, $2, $3)", b.where())
	assert.Equal(t, []any{"1", "2", "3"}, b.args)
}

func TestWhereBuilderInEmptyList(t *testing.T) {
	b := &whereBuilder{}
	b.in("category_id::text", nil)

	assert.Equal(t, " WHERE FALSE", b.where())
}

func TestWhereBuilderEmpty(t *testing.T) {
	b := &whereBuilder{}

	assert.Equal(t, "", b.where())
}

func TestOrderBy(t *testing.T) {
	columns := map[string]string{"date": "date", "start_time": "start_time"}
	sorts := []jsonapi.SortField{
		{Field: "date", Desc: true},
		{Field: "start_time"},
	}

	clause := orderBy(sorts, columns, "id")

	assert.Equal(t, " ORDER BY date DESC, start_time ASC, id ASC", clause)
}

func TestOrderByAlwaysHasTiebreak(t *testing.T) {
	clause := orderBy(nil, map[string]string{}, "id")

	assert.Equal(t, " ORDER BY id ASC", clause)
}

func TestLimitOffset(t *testing.T) {
	clause := limitOffset(jsonapi.Page{Size: 15, Number: 3})

	assert.Equal(t, " LIMIT 15 OFFSET 30", clause)
}

func TestAppointmentFilters(t *testing.T) {
	spec := &jsonapi.QuerySpec{
		Type: jsonapi.Appointments,
		Filters: map[string]string{
			"year":       "2025",
			"categories": "1,2",
			"email":      "gmail",
		},
	}

	b := appointmentFilters(spec)

	// Filter keys render in sorted order so the SQL is stable.
	assert.Equal(t,
		" WHERE category_id::text IN ($1, $2)"+
			" AND email::text ILIKE '%' || $3 || '%'"+
			" AND EXTRACT(YEAR FROM date) = $4",
		b.where())
	assert.Equal(t, []any{"1", "2", "gmail", 2025}, b.args)
}

func TestAppointmentSelectColumns(t *testing.T) {
	s := NewPostgresAppointmentStore(&fakeDBTX{}, slog.Default())

	full := s.selectColumns(nil)
	assert.Equal(t,
		[]string{"id", "date", "start_time", "email", "category_id", "user_id", "created_at", "updated_at"},
		full)

	spec := &jsonapi.QuerySpec{Fields: map[string][]string{
		"appointments": {"date"},
	}}
	sparse := s.selectColumns(spec)
	assert.Equal(t,
		[]string{"id", "date", "category_id", "user_id", "created_at", "updated_at"},
		sparse, "identifier and relationship keys survive the fieldset")
}

func TestCommentSelectColumns(t *testing.T) {
	spec := &jsonapi.QuerySpec{Fields: map[string][]string{
		"comments": {},
	}}

	sparse := commentSelectColumns(spec)

	assert.NotContains(t, sparse, "body")
	assert.Contains(t, sparse, "id")
	assert.Contains(t, sparse, "appointment_id")
}

func TestInt64InArgs(t *testing.T) {
	placeholders, args := int64InArgs([]int64{7, 8})

	assert.Equal(t, "$1, $2", placeholders)
	require.Len(t, args, 2)
	assert.Equal(t, int64(7), args[0])
}
