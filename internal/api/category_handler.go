package api

import (
	"log/slog"
	"net/http"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// CategoryHandler serves the categories resource, a read-only
// collection seeded by migration.
type CategoryHandler struct {
	categories store.CategoryStore
	logger     *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler. If logger is nil, a
// default logger will be used.
func NewCategoryHandler(categories store.CategoryStore, logger *slog.Logger) *CategoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryHandler{
		categories: categories,
		logger:     logger.With(slog.String("component", "category_handler")),
	}
}

// List handles GET /api/v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := parseQuerySpec(r, jsonapi.Categories)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	page, err := h.categories.List(r.Context(), spec)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	resources := make([]jsonapi.ResourceObject, len(page.Items))
	for i, cat := range page.Items {
		resources[i] = categoryResource(cat, spec)
	}

	links := jsonapi.PaginationLinks(apiBasePath+"/categories", spec, page.Meta)
	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewCollectionDocument(resources, links, page.Meta))
}

// Get handles GET /api/v1/categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	spec, err := parseQuerySpec(r, jsonapi.Categories)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	cat, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(categoryResource(cat, spec)))
}
