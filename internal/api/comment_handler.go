package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/platform/logger"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// CommentHandler serves the comments resource.
type CommentHandler struct {
	comments     store.CommentStore
	appointments store.AppointmentStore
	users        store.UserStore
	logger       *slog.Logger
}

// NewCommentHandler creates a new CommentHandler with the given
// dependencies. If logger is nil, a default logger will be used.
func NewCommentHandler(
	comments store.CommentStore,
	appointments store.AppointmentStore,
	users store.UserStore,
	logger *slog.Logger,
) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		comments:     comments,
		appointments: appointments,
		users:        users,
		logger:       logger.With(slog.String("component", "comment_handler")),
	}
}

// List handles GET /api/v1/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := parseQuerySpec(r, jsonapi.Comments)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	page, err := h.comments.List(r.Context(), spec)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	related, err := h.comments.LoadRelated(r.Context(), page.Items, spec.Includes)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	resources := make([]jsonapi.ResourceObject, len(page.Items))
	for i, comment := range page.Items {
		resources[i] = commentResource(comment, spec)
	}

	links := jsonapi.PaginationLinks(apiBasePath+"/comments", spec, page.Meta)
	doc := jsonapi.NewCollectionDocument(resources, links, page.Meta)
	for _, comment := range page.Items {
		doc.AppendIncluded(commentIncluded(comment, related, spec)...)
	}

	shared.RespondWithDocument(w, r, http.StatusOK, doc)
}

// Get handles GET /api/v1/comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	spec, err := parseQuerySpec(r, jsonapi.Comments)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	comment, err := h.comments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	related, err := h.comments.LoadRelated(r.Context(), []*domain.Comment{comment}, spec.Includes)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	doc := jsonapi.NewResourceDocument(commentResource(comment, spec))
	doc.AppendIncluded(commentIncluded(comment, related, spec)...)

	shared.RespondWithDocument(w, r, http.StatusOK, doc)
}

// Create handles POST /api/v1/comments
// Any authenticated user may comment; the author is always the caller.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	claims, ok := claimsFromRequest(r)
	if !ok {
		RespondError(w, r, jsonapi.NewUnauthenticated())
		return
	}

	var req CommentResourceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		RespondError(w, r, jsonapi.NewBadRequest("The request body is not valid JSON."))
		return
	}

	var fieldErrs jsonapi.ValidationErrors
	if req.Data.Attributes.Body == nil || *req.Data.Attributes.Body == "" {
		fieldErrs = append(fieldErrs, jsonapi.FieldError{
			Field: "body", Detail: "The body field is required.",
		})
	}

	appointmentID, apptErr := parseAppointmentRelationship(req.Data.Relationships.Appointment)
	if apptErr != nil {
		fieldErrs = append(fieldErrs, *apptErr)
	}

	if len(fieldErrs) > 0 {
		RespondError(w, r, fieldErrs)
		return
	}

	comment, err := domain.NewComment(*req.Data.Attributes.Body, appointmentID, claims.UserID)
	if err != nil {
		RespondError(w, r, jsonapi.ValidationErrors{{Field: "body", Detail: err.Error()}})
		return
	}

	// Resolve the appointment first so an unknown id 404s.
	if _, err := h.appointments.GetByID(r.Context(), appointmentID); err != nil {
		RespondError(w, r, err)
		return
	}

	if err := h.comments.Create(r.Context(), comment); err != nil {
		RespondError(w, r, err)
		return
	}

	log.Info("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("appointment_id", comment.AppointmentID))

	res := commentResource(comment, nil)
	w.Header().Set("Location", res.Links["self"])
	shared.RespondWithDocument(w, r, http.StatusCreated, jsonapi.NewResourceDocument(res))
}

// Update handles PATCH /api/v1/comments/{id}
// Only the comment's author may edit it.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		RespondError(w, r, jsonapi.NewUnauthenticated())
		return
	}

	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	comment, err := h.comments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	if !comment.OwnedBy(claims.UserID) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return
	}

	var req CommentResourceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		RespondError(w, r, jsonapi.NewBadRequest("The request body is not valid JSON."))
		return
	}

	if req.Data.Attributes.Body != nil {
		if *req.Data.Attributes.Body == "" {
			RespondError(w, r, jsonapi.ValidationErrors{{
				Field: "body", Detail: "The body field is required.",
			}})
			return
		}
		comment.Body = *req.Data.Attributes.Body
	}

	if rel := req.Data.Relationships.Appointment; rel != nil {
		appointmentID, apptErr := parseAppointmentRelationship(rel)
		if apptErr != nil {
			RespondError(w, r, jsonapi.ValidationErrors{*apptErr})
			return
		}
		if _, err := h.appointments.GetByID(r.Context(), appointmentID); err != nil {
			RespondError(w, r, err)
			return
		}
		comment.AppointmentID = appointmentID
	}

	comment.UpdatedAt = time.Now().UTC()
	if err := h.comments.Update(r.Context(), comment); err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(commentResource(comment, nil)))
}

// Delete handles DELETE /api/v1/comments/{id}
// Only the comment's author may remove it.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		RespondError(w, r, jsonapi.NewUnauthenticated())
		return
	}

	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	comment, err := h.comments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	if !comment.OwnedBy(claims.UserID) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return
	}

	if err := h.comments.Delete(r.Context(), id); err != nil {
		RespondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAppointmentRelationship handles GET /api/v1/comments/{id}/relationships/appointment
func (h *CommentHandler) GetAppointmentRelationship(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.fetchComment(w, r)
	if !ok {
		return
	}

	linkage := jsonapi.ResourceIdentifier{
		Type: jsonapi.Appointments.Name,
		ID:   formatID(comment.AppointmentID),
	}
	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(linkage))
}

// GetAppointment handles GET /api/v1/comments/{id}/appointment
func (h *CommentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.fetchComment(w, r)
	if !ok {
		return
	}

	appt, err := h.appointments.GetByID(r.Context(), comment.AppointmentID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(appointmentResource(appt, nil, nil)))
}

// GetAuthorRelationship handles GET /api/v1/comments/{id}/relationships/author
func (h *CommentHandler) GetAuthorRelationship(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.fetchComment(w, r)
	if !ok {
		return
	}

	linkage := jsonapi.ResourceIdentifier{
		Type: jsonapi.Authors.Name,
		ID:   comment.AuthorID.String(),
	}
	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(linkage))
}

// GetAuthor handles GET /api/v1/comments/{id}/author
func (h *CommentHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.fetchComment(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), comment.AuthorID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(authorResource(user, nil)))
}

func (h *CommentHandler) fetchComment(w http.ResponseWriter, r *http.Request) (*domain.Comment, bool) {
	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return nil, false
	}

	comment, err := h.comments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return nil, false
	}
	return comment, true
}

// parseAppointmentRelationship resolves the appointment linkage to its id.
func parseAppointmentRelationship(rel *RelationshipRequest) (int64, *jsonapi.FieldError) {
	if rel == nil || rel.Data == nil {
		return 0, &jsonapi.FieldError{Field: "appointment", Detail: "The appointment field is required."}
	}

	id, err := parseInt64(rel.Data.ID)
	if err != nil || rel.Data.Type != jsonapi.Appointments.Name {
		return 0, &jsonapi.FieldError{Field: "appointment", Detail: "The selected appointment is invalid."}
	}
	return id, nil
}
