package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/platform/logger"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// PostgresCategoryStore implements the store.CategoryStore interface
// using a PostgreSQL database as the storage backend. Categories are
// seeded by migration and read-only at runtime.
type PostgresCategoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of the
// CategoryStore interface. If logger is nil, a default logger will be used.
func NewPostgresCategoryStore(db store.DBTX, logger *slog.Logger) *PostgresCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCategoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "category_store")),
	}
}

// Ensure PostgresCategoryStore implements store.CategoryStore interface
var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// List implements store.CategoryStore.List
// Categories take no filters or sorts, so only pagination applies.
func (s *PostgresCategoryStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.CategoryPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&total); err != nil {
		log.Error("failed to count categories", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	query := "SELECT id, name, created_at, updated_at FROM categories ORDER BY id ASC" +
		limitOffset(spec.Page)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.Category{}
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		items = append(items, &cat)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.CategoryPage{
		Items: items,
		Meta:  jsonapi.NewPageMeta(total, spec.Page),
	}, nil
}

// GetByID implements store.CategoryStore.GetByID
// Returns store.ErrCategoryNotFound if the category does not exist.
func (s *PostgresCategoryStore) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cat domain.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM categories WHERE id = $1", id,
	).Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("category not found", slog.Int64("category_id", id))
			return nil, store.ErrCategoryNotFound
		}
		log.Error("failed to get category",
			slog.String("error", err.Error()),
			slog.Int64("category_id", id))
		return nil, MapError(err)
	}

	return &cat, nil
}
