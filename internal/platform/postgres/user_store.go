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

// userSortColumns maps allowed author sort fields to their columns.
var userSortColumns = map[string]string{
	"name": "name",
}

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// userSelectColumns resolves the projection for the authors collection.
// The password hash is never projected on list reads.
func userSelectColumns(spec *jsonapi.QuerySpec) []string {
	columns := []string{"id"}
	fields, restricted := spec.FieldsFor(jsonapi.Authors.Name)
	for _, attr := range []string{"name", "email"} {
		if restricted && !containsString(fields, attr) {
			continue
		}
		columns = append(columns, attr)
	}
	return append(columns, "created_at", "updated_at")
}

// List implements store.UserStore.List
// It serves the authors collection: name filter, name sort, pagination.
func (s *PostgresUserStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.UserPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := &whereBuilder{}
	for _, key := range spec.FilterKeys() {
		if key == "name" {
			b.like("name", spec.Filters[key])
		}
	}
	where := b.where()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, b.args...).Scan(&total); err != nil {
		log.Error("failed to count users", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	columns := userSelectColumns(spec)
	query := "SELECT " + strings.Join(columns, ", ") + " FROM users" + where +
		orderBy(spec.Sorts, userSortColumns, "id") +
		limitOffset(spec.Page)

	rows, err := s.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.User{}
	for rows.Next() {
		var user domain.User
		dest := make([]any, len(columns))
		for i, column := range columns {
			switch column {
			case "id":
				dest[i] = &user.ID
			case "name":
				dest[i] = &user.Name
			case "email":
				dest[i] = &user.Email
			case "created_at":
				dest[i] = &user.CreatedAt
			case "updated_at":
				dest[i] = &user.UpdatedAt
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, MapError(err)
		}
		items = append(items, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.UserPage{
		Items: items,
		Meta:  jsonapi.NewPageMeta(total, spec.Page),
	}, nil
}

// GetByID implements store.UserStore.GetByID
// It retrieves a user by ID including the granted permissions.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetByEmail implements store.UserStore.GetByEmail
// It retrieves a user by email including the granted permissions.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "email = $1", email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, predicate string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, email, hashed_password, created_at, updated_at
		FROM users
		WHERE ` + predicate

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	permissions, err := s.loadPermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Permissions = permissions

	return &user, nil
}

func (s *PostgresUserStore) loadPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT permission FROM user_permissions WHERE user_id = $1 ORDER BY permission", userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var permissions []string
	for rows.Next() {
		var permission string
		if err := rows.Scan(&permission); err != nil {
			return nil, MapError(err)
		}
		permissions = append(permissions, permission)
	}
	return permissions, MapError(rows.Err())
}

// Create implements store.UserStore.Create
// It saves a new user along with any permissions already granted on the
// struct. Returns store.ErrEmailExists if the email address is taken.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO users (id, name, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("email already registered", slog.String("user_id", user.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	for _, permission := range user.Permissions {
		if err := s.GrantPermission(ctx, user.ID, permission); err != nil {
			return err
		}
	}

	log.Info("user created successfully", slog.String("user_id", user.ID.String()))
	return nil
}

// GrantPermission implements store.UserStore.GrantPermission
// Granting an already held permission is a no-op.
func (s *PostgresUserStore) GrantPermission(ctx context.Context, userID uuid.UUID, permission string) error {
	query := `
		INSERT INTO user_permissions (user_id, permission)
		VALUES ($1, $2)
		ON CONFLICT (user_id, permission) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, userID, permission); err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		}
		return MapError(err)
	}
	return nil
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}
