package store

import (
	"context"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// CategoryPage is one page of categories with its pagination metadata.
type CategoryPage struct {
	Items []*domain.Category
	Meta  jsonapi.PageMeta
}

// CategoryStore defines the read-only interface for category
// persistence; the API surface never writes categories.
type CategoryStore interface {
	// List executes a QuerySpec over categories.
	List(ctx context.Context, spec *jsonapi.QuerySpec) (*CategoryPage, error)

	// GetByID retrieves a category by its ID.
	// Returns ErrCategoryNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}
