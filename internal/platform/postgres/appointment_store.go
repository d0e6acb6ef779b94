package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/platform/logger"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// appointmentSortColumns maps allowed sort fields to their columns.
var appointmentSortColumns = map[string]string{
	"date":       "date",
	"start_time": "start_time",
}

// appointmentAttributeColumns maps resource attributes to their
// columns, in projection order.
var appointmentAttributeColumns = []struct {
	attribute string
	column    string
}{
	{"date", "date"},
	{"start_time", "start_time"},
	{"email", "email"},
}

// PostgresAppointmentStore implements the store.AppointmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAppointmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAppointmentStore creates a new PostgreSQL implementation of the
// AppointmentStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresAppointmentStore(db store.DBTX, logger *slog.Logger) *PostgresAppointmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAppointmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "appointment_store")),
	}
}

// Ensure PostgresAppointmentStore implements store.AppointmentStore interface
var _ store.AppointmentStore = (*PostgresAppointmentStore)(nil)

// selectColumns resolves the projection for a query. The identifier and
// relationship keys are always selected; attribute columns are trimmed
// to the sparse field set when one is active.
func (s *PostgresAppointmentStore) selectColumns(spec *jsonapi.QuerySpec) []string {
	columns := []string{"id"}

	var fields []string
	restricted := false
	if spec != nil {
		fields, restricted = spec.FieldsFor(jsonapi.Appointments.Name)
	}

	for _, ac := range appointmentAttributeColumns {
		if restricted && !containsString(fields, ac.attribute) {
			continue
		}
		columns = append(columns, ac.column)
	}

	return append(columns, "category_id", "user_id", "created_at", "updated_at")
}

// scanAppointment scans one row into a domain.Appointment following the
// column order produced by selectColumns.
func scanAppointment(row interface{ Scan(dest ...any) error }, columns []string) (*domain.Appointment, error) {
	var appt domain.Appointment
	dest := make([]any, len(columns))
	for i, column := range columns {
		switch column {
		case "id":
			dest[i] = &appt.ID
		case "date":
			dest[i] = &appt.Date
		case "start_time":
			dest[i] = &appt.StartTime
		case "email":
			dest[i] = &appt.Email
		case "category_id":
			dest[i] = &appt.CategoryID
		case "user_id":
			dest[i] = &appt.AuthorID
		case "created_at":
			dest[i] = &appt.CreatedAt
		case "updated_at":
			dest[i] = &appt.UpdatedAt
		default:
			return nil, fmt.Errorf("unknown appointment column %q", column)
		}
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &appt, nil
}

// appointmentFilters translates the spec's filter map into WHERE
// predicates. Filter keys were validated against the registry by the
// query parser, so an unknown key here is a programming error.
func appointmentFilters(spec *jsonapi.QuerySpec) *whereBuilder {
	b := &whereBuilder{}
	for _, key := range spec.FilterKeys() {
		value := spec.Filters[key]
		switch key {
		case "date":
			b.like("date", value)
		case "start_time":
			b.like("start_time", value)
		case "email":
			b.like("email", value)
		case "year":
			b.datePart("YEAR", "date", value)
		case "month":
			b.datePart("MONTH", "date", value)
		case "categories":
			b.in("category_id::text", strings.Split(value, ","))
		case "authors":
			b.in("user_id::text", strings.Split(value, ","))
		}
	}
	return b
}

// List implements store.AppointmentStore.List
// It executes the QuerySpec's filters, ordering, projection and
// pagination against the appointments table and returns one page plus
// its pagination metadata.
func (s *PostgresAppointmentStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.AppointmentPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filters := appointmentFilters(spec)
	where := filters.where()

	var total int
	countQuery := "SELECT COUNT(*) FROM appointments" + where
	if err := s.db.QueryRowContext(ctx, countQuery, filters.args...).Scan(&total); err != nil {
		log.Error("failed to count appointments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	columns := s.selectColumns(spec)
	query := "SELECT " + strings.Join(columns, ", ") + " FROM appointments" + where +
		orderBy(spec.Sorts, appointmentSortColumns, "id") +
		limitOffset(spec.Page)

	rows, err := s.db.QueryContext(ctx, query, filters.args...)
	if err != nil {
		log.Error("failed to list appointments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows, columns)
		if err != nil {
			log.Error("failed to scan appointment row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		items = append(items, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed appointments",
		slog.Int("count", len(items)),
		slog.Int("total", total),
		slog.Int("page", spec.Page.Number))

	return &store.AppointmentPage{
		Items: items,
		Meta:  jsonapi.NewPageMeta(total, spec.Page),
	}, nil
}

// LoadRelated implements store.AppointmentStore.LoadRelated
// It batch-loads the requested relations of the given appointments, one
// query per relation regardless of page size.
func (s *PostgresAppointmentStore) LoadRelated(ctx context.Context, appts []*domain.Appointment, includes []string) (*store.AppointmentRelated, error) {
	related := &store.AppointmentRelated{
		Categories: make(map[int64]*domain.Category),
		Authors:    make(map[uuid.UUID]*domain.User),
		Comments:   make(map[int64][]*domain.Comment),
	}
	if len(appts) == 0 {
		return related, nil
	}

	for _, include := range includes {
		var err error
		switch include {
		case "category":
			err = s.loadCategories(ctx, appts, related)
		case "author":
			err = s.loadAuthors(ctx, appts, related)
		case "comments":
			err = s.loadComments(ctx, appts, related)
		}
		if err != nil {
			return nil, err
		}
	}
	return related, nil
}

func (s *PostgresAppointmentStore) loadCategories(ctx context.Context, appts []*domain.Appointment, related *store.AppointmentRelated) error {
	seen := make(map[int64]bool)
	var ids []int64
	for _, appt := range appts {
		if !seen[appt.CategoryID] {
			seen[appt.CategoryID] = true
			ids = append(ids, appt.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders, args := int64InArgs(ids)
	query := "SELECT id, name, created_at, updated_at FROM categories WHERE id IN (" + placeholders + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return MapError(err)
		}
		related.Categories[cat.ID] = &cat
	}
	return MapError(rows.Err())
}

func (s *PostgresAppointmentStore) loadAuthors(ctx context.Context, appts []*domain.Appointment, related *store.AppointmentRelated) error {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, appt := range appts {
		if appt.AuthorID.Valid && !seen[appt.AuthorID.UUID] {
			seen[appt.AuthorID.UUID] = true
			ids = append(ids, appt.AuthorID.UUID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders, args := uuidInArgs(ids)
	query := "SELECT id, name, email, created_at, updated_at FROM users WHERE id IN (" + placeholders + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return MapError(err)
		}
		related.Authors[user.ID] = &user
	}
	return MapError(rows.Err())
}

func (s *PostgresAppointmentStore) loadComments(ctx context.Context, appts []*domain.Appointment, related *store.AppointmentRelated) error {
	ids := make([]int64, len(appts))
	for i, appt := range appts {
		ids[i] = appt.ID
	}

	placeholders, args := int64InArgs(ids)
	query := "SELECT id, body, appointment_id, user_id, created_at, updated_at" +
		" FROM comments WHERE appointment_id IN (" + placeholders + ") ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(&comment.ID, &comment.Body, &comment.AppointmentID,
			&comment.AuthorID, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
			return MapError(err)
		}
		related.Comments[comment.AppointmentID] = append(related.Comments[comment.AppointmentID], &comment)
	}
	return MapError(rows.Err())
}

// GetByID implements store.AppointmentStore.GetByID
// It retrieves an appointment by its ID.
// Returns store.ErrAppointmentNotFound if the appointment does not exist.
func (s *PostgresAppointmentStore) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, date, start_time, email, category_id, user_id, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`

	appt, err := scanAppointment(s.db.QueryRowContext(ctx, query, id),
		[]string{"id", "date", "start_time", "email", "category_id", "user_id", "created_at", "updated_at"})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("appointment not found", slog.Int64("appointment_id", id))
			return nil, store.ErrAppointmentNotFound
		}
		log.Error("failed to get appointment",
			slog.String("error", err.Error()),
			slog.Int64("appointment_id", id))
		return nil, MapError(err)
	}

	return appt, nil
}

// StartTimesOn implements store.AppointmentStore.StartTimesOn
// It returns the start times already booked on a date, used by the
// scheduling validator's overlap check. excludeID skips one appointment
// so updates don't collide with themselves; pass 0 for creates.
func (s *PostgresAppointmentStore) StartTimesOn(ctx context.Context, date domain.Date, excludeID int64) ([]domain.TimeOfDay, error) {
	query := "SELECT start_time FROM appointments WHERE date = $1"
	args := []any{date}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var times []domain.TimeOfDay
	for rows.Next() {
		var t domain.TimeOfDay
		if err := rows.Scan(&t); err != nil {
			return nil, MapError(err)
		}
		times = append(times, t)
	}
	return times, MapError(rows.Err())
}

// Create implements store.AppointmentStore.Create
// It saves a new appointment and assigns its ID.
// Returns store.ErrSlotTaken if the date and start time are already booked,
// and store.ErrInvalidEntity if the category or author doesn't exist.
func (s *PostgresAppointmentStore) Create(ctx context.Context, appt *domain.Appointment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := appt.Validate(); err != nil {
		log.Warn("appointment validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO appointments (date, start_time, email, category_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		appt.Date,
		appt.StartTime,
		appt.Email,
		appt.CategoryID,
		appt.AuthorID,
		appt.CreatedAt,
		appt.UpdatedAt,
	).Scan(&appt.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("appointment slot already booked",
				slog.String("date", appt.Date.String()),
				slog.String("start_time", appt.StartTime.String()))
			return fmt.Errorf("%w: %v", store.ErrSlotTaken, err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during appointment creation",
				slog.String("error", err.Error()),
				slog.Int64("category_id", appt.CategoryID))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		log.Error("failed to create appointment", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("appointment created successfully",
		slog.Int64("appointment_id", appt.ID),
		slog.String("date", appt.Date.String()),
		slog.String("start_time", appt.StartTime.String()))
	return nil
}

// Update implements store.AppointmentStore.Update
// It saves changes to an existing appointment.
// Returns store.ErrAppointmentNotFound if the appointment doesn't exist and
// store.ErrSlotTaken if the new slot is already booked.
func (s *PostgresAppointmentStore) Update(ctx context.Context, appt *domain.Appointment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := appt.Validate(); err != nil {
		log.Warn("appointment validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("appointment_id", appt.ID))
		return err
	}

	query := `
		UPDATE appointments
		SET date = $1, start_time = $2, email = $3, category_id = $4, user_id = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		appt.Date,
		appt.StartTime,
		appt.Email,
		appt.CategoryID,
		appt.AuthorID,
		appt.UpdatedAt,
		appt.ID,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrSlotTaken, err)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		log.Error("failed to update appointment",
			slog.String("error", err.Error()),
			slog.Int64("appointment_id", appt.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "appointment"); err != nil {
		return store.ErrAppointmentNotFound
	}

	log.Info("appointment updated successfully", slog.Int64("appointment_id", appt.ID))
	return nil
}

// Delete implements store.AppointmentStore.Delete
// It removes an appointment by its ID; its comments go with it via the
// ON DELETE CASCADE on comments.appointment_id.
// Returns store.ErrAppointmentNotFound if the appointment doesn't exist.
func (s *PostgresAppointmentStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete appointment",
			slog.String("error", err.Error()),
			slog.Int64("appointment_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "appointment"); err != nil {
		return store.ErrAppointmentNotFound
	}

	log.Info("appointment deleted successfully", slog.Int64("appointment_id", id))
	return nil
}

// WithTx implements store.AppointmentStore.WithTx
// It returns a store bound to the given transaction so multi-statement
// operations share one atomic unit of work.
func (s *PostgresAppointmentStore) WithTx(tx *sql.Tx) store.AppointmentStore {
	return &PostgresAppointmentStore{
		db:     tx,
		logger: s.logger,
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
