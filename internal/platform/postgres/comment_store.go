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

// PostgresCommentStore implements the store.CommentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a new PostgreSQL implementation of the
// CommentStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

// Ensure PostgresCommentStore implements store.CommentStore interface
var _ store.CommentStore = (*PostgresCommentStore)(nil)

// commentFilters translates the spec's filter map into WHERE predicates.
func commentFilters(spec *jsonapi.QuerySpec) *whereBuilder {
	b := &whereBuilder{}
	for _, key := range spec.FilterKeys() {
		value := spec.Filters[key]
		switch key {
		case "body":
			b.like("body", value)
		case "authors":
			b.in("user_id::text", strings.Split(value, ","))
		case "appointments":
			b.in("appointment_id::text", strings.Split(value, ","))
		}
	}
	return b
}

// commentSelectColumns resolves the projection for a query. Body is the
// only attribute, droppable under a sparse fieldset; identifier and
// relationship keys always project.
func commentSelectColumns(spec *jsonapi.QuerySpec) []string {
	columns := []string{"id"}
	fields, restricted := spec.FieldsFor(jsonapi.Comments.Name)
	if !restricted || containsString(fields, "body") {
		columns = append(columns, "body")
	}
	return append(columns, "appointment_id", "user_id", "created_at", "updated_at")
}

func scanComment(row interface{ Scan(dest ...any) error }, columns []string) (*domain.Comment, error) {
	var comment domain.Comment
	dest := make([]any, len(columns))
	for i, column := range columns {
		switch column {
		case "id":
			dest[i] = &comment.ID
		case "body":
			dest[i] = &comment.Body
		case "appointment_id":
			dest[i] = &comment.AppointmentID
		case "user_id":
			dest[i] = &comment.AuthorID
		case "created_at":
			dest[i] = &comment.CreatedAt
		case "updated_at":
			dest[i] = &comment.UpdatedAt
		default:
			return nil, fmt.Errorf("unknown comment column %q", column)
		}
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &comment, nil
}

// List implements store.CommentStore.List
func (s *PostgresCommentStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.CommentPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filters := commentFilters(spec)
	where := filters.where()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments"+where, filters.args...).Scan(&total); err != nil {
		log.Error("failed to count comments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	columns := commentSelectColumns(spec)
	query := "SELECT " + strings.Join(columns, ", ") + " FROM comments" + where +
		" ORDER BY id ASC" + limitOffset(spec.Page)

	rows, err := s.db.QueryContext(ctx, query, filters.args...)
	if err != nil {
		log.Error("failed to list comments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows, columns)
		if err != nil {
			return nil, MapError(err)
		}
		items = append(items, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.CommentPage{
		Items: items,
		Meta:  jsonapi.NewPageMeta(total, spec.Page),
	}, nil
}

// LoadRelated implements store.CommentStore.LoadRelated
// It batch-loads appointments and authors for the given comments, one
// query per relation.
func (s *PostgresCommentStore) LoadRelated(ctx context.Context, comments []*domain.Comment, includes []string) (*store.CommentRelated, error) {
	related := &store.CommentRelated{
		Appointments: make(map[int64]*domain.Appointment),
		Authors:      make(map[uuid.UUID]*domain.User),
	}
	if len(comments) == 0 {
		return related, nil
	}

	for _, include := range includes {
		var err error
		switch include {
		case "appointment":
			err = s.loadAppointments(ctx, comments, related)
		case "author":
			err = s.loadAuthors(ctx, comments, related)
		}
		if err != nil {
			return nil, err
		}
	}
	return related, nil
}

func (s *PostgresCommentStore) loadAppointments(ctx context.Context, comments []*domain.Comment, related *store.CommentRelated) error {
	seen := make(map[int64]bool)
	var ids []int64
	for _, comment := range comments {
		if !seen[comment.AppointmentID] {
			seen[comment.AppointmentID] = true
			ids = append(ids, comment.AppointmentID)
		}
	}

	placeholders, args := int64InArgs(ids)
	query := "SELECT id, date, start_time, email, category_id, user_id, created_at, updated_at" +
		" FROM appointments WHERE id IN (" + placeholders + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	columns := []string{"id", "date", "start_time", "email", "category_id", "user_id", "created_at", "updated_at"}
	for rows.Next() {
		appt, err := scanAppointment(rows, columns)
		if err != nil {
			return MapError(err)
		}
		related.Appointments[appt.ID] = appt
	}
	return MapError(rows.Err())
}

func (s *PostgresCommentStore) loadAuthors(ctx context.Context, comments []*domain.Comment, related *store.CommentRelated) error {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, comment := range comments {
		if !seen[comment.AuthorID] {
			seen[comment.AuthorID] = true
			ids = append(ids, comment.AuthorID)
		}
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

// GetByID implements store.CommentStore.GetByID
// Returns store.ErrCommentNotFound if the comment does not exist.
func (s *PostgresCommentStore) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, body, appointment_id, user_id, created_at, updated_at
		FROM comments
		WHERE id = $1
	`

	var comment domain.Comment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.Body,
		&comment.AppointmentID,
		&comment.AuthorID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("comment not found", slog.Int64("comment_id", id))
			return nil, store.ErrCommentNotFound
		}
		log.Error("failed to get comment",
			slog.String("error", err.Error()),
			slog.Int64("comment_id", id))
		return nil, MapError(err)
	}

	return &comment, nil
}

// ListByAppointment implements store.CommentStore.ListByAppointment
func (s *PostgresCommentStore) ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.Comment, error) {
	query := `
		SELECT id, body, appointment_id, user_id, created_at, updated_at
		FROM comments
		WHERE appointment_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, appointmentID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	comments := []*domain.Comment{}
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(&comment.ID, &comment.Body, &comment.AppointmentID,
			&comment.AuthorID, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		comments = append(comments, &comment)
	}
	return comments, MapError(rows.Err())
}

// Create implements store.CommentStore.Create
// Returns store.ErrInvalidEntity if the appointment or author doesn't exist.
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO comments (body, appointment_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		comment.Body,
		comment.AppointmentID,
		comment.AuthorID,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during comment creation",
				slog.String("error", err.Error()),
				slog.Int64("appointment_id", comment.AppointmentID))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		log.Error("failed to create comment", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("comment created successfully",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("appointment_id", comment.AppointmentID))
	return nil
}

// Update implements store.CommentStore.Update
// Returns store.ErrCommentNotFound if the comment doesn't exist.
func (s *PostgresCommentStore) Update(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE comments
		SET body = $1, appointment_id = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, comment.Body, comment.AppointmentID, comment.UpdatedAt, comment.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		log.Error("failed to update comment",
			slog.String("error", err.Error()),
			slog.Int64("comment_id", comment.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "comment"); err != nil {
		return store.ErrCommentNotFound
	}

	log.Info("comment updated successfully", slog.Int64("comment_id", comment.ID))
	return nil
}

// Delete implements store.CommentStore.Delete
// Returns store.ErrCommentNotFound if the comment doesn't exist.
func (s *PostgresCommentStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete comment",
			slog.String("error", err.Error()),
			slog.Int64("comment_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "comment"); err != nil {
		return store.ErrCommentNotFound
	}

	log.Info("comment deleted successfully", slog.Int64("comment_id", id))
	return nil
}

// AssociateWithAppointment implements store.CommentStore.AssociateWithAppointment
// It re-points every listed comment at the given appointment in one
// statement. If any comment ID is unknown the row count won't match and
// the whole operation fails, so callers should run it in a transaction.
func (s *PostgresCommentStore) AssociateWithAppointment(ctx context.Context, appointmentID int64, commentIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(commentIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(commentIDs))
	args := []any{appointmentID}
	for i, id := range commentIDs {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := "UPDATE comments SET appointment_id = $1, updated_at = NOW() WHERE id IN (" +
		strings.Join(placeholders, ", ") + ")"

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to associate comments with appointment",
			slog.String("error", err.Error()),
			slog.Int64("appointment_id", appointmentID))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected != int64(len(commentIDs)) {
		return store.ErrCommentNotFound
	}

	log.Info("comments associated with appointment",
		slog.Int64("appointment_id", appointmentID),
		slog.Int("count", len(commentIDs)))
	return nil
}

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{
		db:     tx,
		logger: s.logger,
	}
}
