package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// whereBuilder accumulates conjunctive WHERE predicates with numbered
// placeholders. Filter keys must be appended in deterministic order so
// generated SQL is stable for a given QuerySpec.
type whereBuilder struct {
	clauses []string
	args    []any
}

// like appends a case-insensitive substring match on the given column.
// The column is cast to text so DATE and TIME columns can be matched
// against partial values like "2028-07".
func (b *whereBuilder) like(column, value string) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s::text ILIKE '%%' || $%d || '%%'", column, len(b.args)))
}

// datePart appends an exact match on a date part (YEAR or MONTH) of the
// given column. A non-numeric filter value can never match, so it
// produces a FALSE predicate instead of invalid SQL.
func (b *whereBuilder) datePart(part, column, value string) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		b.clauses = append(b.clauses, "FALSE")
		return
	}
	b.args = append(b.args, n)
	b.clauses = append(b.clauses, fmt.Sprintf("EXTRACT(%s FROM %s) = $%d", part, column, len(b.args)))
}

// in appends an IN-list membership predicate. The column should carry
// a ::text cast when its values come from untrusted query strings so a
// malformed id cannot fail the whole query at the driver level.
func (b *whereBuilder) in(column string, values []string) {
	if len(values) == 0 {
		b.clauses = append(b.clauses, "FALSE")
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		b.args = append(b.args, strings.TrimSpace(v))
		placeholders[i] = fmt.Sprintf("$%d", len(b.args))
	}
	b.clauses = append(b.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

// where renders the accumulated predicates as a WHERE clause, or an
// empty string when no filters are active.
func (b *whereBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// orderBy renders an ORDER BY clause from the spec's sort fields using
// the given field-to-column mapping. The tiebreak column is always
// appended ascending so pagination is stable across requests.
func orderBy(sorts []jsonapi.SortField, columns map[string]string, tiebreak string) string {
	parts := make([]string, 0, len(sorts)+1)
	for _, s := range sorts {
		column, ok := columns[s.Field]
		if !ok {
			continue
		}
		direction := "ASC"
		if s.Desc {
			direction = "DESC"
		}
		parts = append(parts, column+" "+direction)
	}
	parts = append(parts, tiebreak+" ASC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

// limitOffset renders the pagination clause for a page. Size and offset
// are server-computed integers, never raw client input.
func limitOffset(page jsonapi.Page) string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", page.Size, page.Offset())
}

// int64InArgs builds a placeholder list and argument slice for an
// IN-list of int64 keys, used by batched eager loads.
func int64InArgs(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

// uuidInArgs builds a placeholder list and argument slice for an
// IN-list of UUID keys.
func uuidInArgs(ids []uuid.UUID) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}
