package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// Relationship endpoints for the appointments resource. For each
// relation there is an identifier endpoint
// (/appointments/{id}/relationships/<rel>) and a related-resource
// endpoint (/appointments/{id}/<rel>); the to-one relations also accept
// PATCH on the identifier endpoint to re-point the foreign key.

// GetCategoryRelationship handles GET /api/v1/appointments/{id}/relationships/category
func (h *AppointmentHandler) GetCategoryRelationship(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	linkage := jsonapi.ResourceIdentifier{Type: jsonapi.Categories.Name, ID: formatID(appt.CategoryID)}
	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(linkage))
}

// GetCategory handles GET /api/v1/appointments/{id}/category
func (h *AppointmentHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	cat, err := h.categories.GetByID(r.Context(), appt.CategoryID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(categoryResource(cat, nil)))
}

// PatchCategoryRelationship handles PATCH /api/v1/appointments/{id}/relationships/category
// It re-points the appointment at another category. Only the
// appointment's author may do so.
func (h *AppointmentHandler) PatchCategoryRelationship(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAbility(w, r, domain.AbilityAppointmentUpdate)
	if !ok {
		return
	}

	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	if !appt.OwnedBy(claims.UserID) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return
	}

	var req RelationshipRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		RespondError(w, r, jsonapi.NewBadRequest("The request body is not valid JSON."))
		return
	}

	categoryID, catErr := parseCategoryRelationship(&req, true)
	if catErr != nil {
		RespondError(w, r, jsonapi.ValidationErrors{*catErr})
		return
	}

	// Resolve first so an unknown category 404s instead of surfacing a
	// constraint violation.
	if _, err := h.categories.GetByID(r.Context(), categoryID); err != nil {
		RespondError(w, r, err)
		return
	}

	appt.CategoryID = categoryID
	if err := h.service.Reassign(r.Context(), appt); err != nil {
		RespondError(w, r, err)
		return
	}

	linkage := jsonapi.ResourceIdentifier{Type: jsonapi.Categories.Name, ID: formatID(appt.CategoryID)}
	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(linkage))
}

// GetAuthorRelationship handles GET /api/v1/appointments/{id}/relationships/author
func (h *AppointmentHandler) GetAuthorRelationship(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(authorLinkage(appt)))
}

// GetAuthor handles GET /api/v1/appointments/{id}/author
func (h *AppointmentHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	if !appt.AuthorID.Valid {
		shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(nil))
		return
	}

	user, err := h.users.GetByID(r.Context(), appt.AuthorID.UUID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(authorResource(user, nil)))
}

// PatchAuthorRelationship handles PATCH /api/v1/appointments/{id}/relationships/author
// It reassigns the appointment to another user, or detaches it when the
// linkage is null. Only the current author may give their booking away.
func (h *AppointmentHandler) PatchAuthorRelationship(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAbility(w, r, domain.AbilityAppointmentUpdate)
	if !ok {
		return
	}

	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	if !appt.OwnedBy(claims.UserID) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return
	}

	var req RelationshipRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		RespondError(w, r, jsonapi.NewBadRequest("The request body is not valid JSON."))
		return
	}

	if req.Data == nil {
		appt.AuthorID = uuid.NullUUID{}
	} else {
		userID, err := uuid.Parse(req.Data.ID)
		if err != nil || req.Data.Type != jsonapi.Authors.Name {
			RespondError(w, r, jsonapi.ValidationErrors{{
				Field: "author", Detail: "The selected author is invalid.",
			}})
			return
		}
		if _, err := h.users.GetByID(r.Context(), userID); err != nil {
			RespondError(w, r, err)
			return
		}
		appt.AuthorID = uuid.NullUUID{UUID: userID, Valid: true}
	}

	if err := h.service.Reassign(r.Context(), appt); err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(authorLinkage(appt)))
}

// GetCommentsRelationship handles GET /api/v1/appointments/{id}/relationships/comments
func (h *AppointmentHandler) GetCommentsRelationship(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	comments, err := h.comments.ListByAppointment(r.Context(), appt.ID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(commentLinkage(comments)))
}

// GetComments handles GET /api/v1/appointments/{id}/comments
func (h *AppointmentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	comments, err := h.comments.ListByAppointment(r.Context(), appt.ID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	resources := make([]jsonapi.ResourceObject, len(comments))
	for i, comment := range comments {
		resources[i] = commentResource(comment, nil)
	}

	shared.RespondWithDocument(w, r, http.StatusOK, &jsonapi.Document{Data: resources})
}

// PatchCommentsRelationship handles PATCH /api/v1/appointments/{id}/relationships/comments
// It re-points every listed comment at this appointment, atomically.
// Only the appointment's author may do so.
func (h *AppointmentHandler) PatchCommentsRelationship(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAbility(w, r, domain.AbilityAppointmentUpdate)
	if !ok {
		return
	}

	appt, ok := h.fetchAppointment(w, r)
	if !ok {
		return
	}

	if !appt.OwnedBy(claims.UserID) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return
	}

	var req ManyRelationshipRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		RespondError(w, r, jsonapi.NewBadRequest("The request body is not valid JSON."))
		return
	}

	commentIDs := make([]int64, 0, len(req.Data))
	for _, identifier := range req.Data {
		id, err := parseInt64(identifier.ID)
		if err != nil || identifier.Type != jsonapi.Comments.Name {
			RespondError(w, r, jsonapi.ValidationErrors{{
				Field: "comments", Detail: "The selected comment is invalid.",
			}})
			return
		}
		commentIDs = append(commentIDs, id)
	}

	if err := h.service.AssociateComments(r.Context(), appt.ID, commentIDs); err != nil {
		RespondError(w, r, err)
		return
	}

	comments, err := h.comments.ListByAppointment(r.Context(), appt.ID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK, jsonapi.NewIdentifierDocument(commentLinkage(comments)))
}

// fetchAppointment loads the appointment named by the URL, writing the
// 404 response itself when it can't.
func (h *AppointmentHandler) fetchAppointment(w http.ResponseWriter, r *http.Request) (*domain.Appointment, bool) {
	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return nil, false
	}

	appt, err := h.appointments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return nil, false
	}
	return appt, true
}
