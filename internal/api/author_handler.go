package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// AuthorHandler serves the authors resource and the authenticated-user
// endpoint.
type AuthorHandler struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewAuthorHandler creates a new AuthorHandler. If logger is nil, a
// default logger will be used.
func NewAuthorHandler(users store.UserStore, logger *slog.Logger) *AuthorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorHandler{
		users:  users,
		logger: logger.With(slog.String("component", "author_handler")),
	}
}

// List handles GET /api/v1/authors
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := parseQuerySpec(r, jsonapi.Authors)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	page, err := h.users.List(r.Context(), spec)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	resources := make([]jsonapi.ResourceObject, len(page.Items))
	for i, user := range page.Items {
		resources[i] = authorResource(user, spec)
	}

	links := jsonapi.PaginationLinks(apiBasePath+"/authors", spec, page.Meta)
	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewCollectionDocument(resources, links, page.Meta))
}

// Get handles GET /api/v1/authors/{id}
func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chiURLParam(r, "id"))
	if err != nil {
		RespondError(w, r, jsonapi.NewRecordNotFound())
		return
	}

	spec, err := parseQuerySpec(r, jsonapi.Authors)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(authorResource(user, spec)))
}

// CurrentUser handles GET /api/v1/user
// It returns the authenticated user as an authors resource.
func (h *AuthorHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		RespondError(w, r, jsonapi.NewUnauthenticated())
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(authorResource(user, nil)))
}
