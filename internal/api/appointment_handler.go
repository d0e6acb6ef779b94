package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/platform/logger"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// AppointmentHandler serves the appointments resource.
type AppointmentHandler struct {
	service      *service.AppointmentService
	appointments store.AppointmentStore
	categories   store.CategoryStore
	users        store.UserStore
	comments     store.CommentStore
	logger       *slog.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler with the given
// dependencies. If logger is nil, a default logger will be used.
func NewAppointmentHandler(
	svc *service.AppointmentService,
	appointments store.AppointmentStore,
	categories store.CategoryStore,
	users store.UserStore,
	comments store.CommentStore,
	logger *slog.Logger,
) *AppointmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentHandler{
		service:      svc,
		appointments: appointments,
		categories:   categories,
		users:        users,
		comments:     comments,
		logger:       logger.With(slog.String("component", "appointment_handler")),
	}
}

// List handles GET /api/v1/appointments
// It parses the query parameters into a QuerySpec, executes it, and
// renders the page as a JSON:API collection with pagination links and
// any requested included resources.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := parseQuerySpec(r, jsonapi.Appointments)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	page, err := h.appointments.List(r.Context(), spec)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	related, err := h.appointments.LoadRelated(r.Context(), page.Items, spec.Includes)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	resources := make([]jsonapi.ResourceObject, len(page.Items))
	for i, appt := range page.Items {
		resources[i] = appointmentResource(appt, related, spec)
	}

	links := jsonapi.PaginationLinks(apiBasePath+"/appointments", spec, page.Meta)
	doc := jsonapi.NewCollectionDocument(resources, links, page.Meta)
	for _, appt := range page.Items {
		doc.AppendIncluded(appointmentIncluded(appt, related, spec)...)
	}

	shared.RespondWithDocument(w, r, http.StatusOK, doc)
}

// Get handles GET /api/v1/appointments/{id}
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	spec, err := parseQuerySpec(r, jsonapi.Appointments)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	appt, err := h.appointments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	related, err := h.appointments.LoadRelated(r.Context(), []*domain.Appointment{appt}, spec.Includes)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	doc := jsonapi.NewResourceDocument(appointmentResource(appt, related, spec))
	doc.AppendIncluded(appointmentIncluded(appt, related, spec)...)

	shared.RespondWithDocument(w, r, http.StatusOK, doc)
}

// Create handles POST /api/v1/appointments
// The caller must hold the appointment:create ability. The new
// appointment is validated against the scheduling rules and booked for
// the authenticated user.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	claims, ok := requireAbility(w, r, domain.AbilityAppointmentCreate)
	if !ok {
		return
	}

	var req AppointmentResourceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		RespondError(w, r, jsonapi.NewBadRequest("The request body is not valid JSON."))
		return
	}

	date, start, email, fieldErrs := parseAppointmentAttributes(req.Data.Attributes, true)

	categoryID, catErr := parseCategoryRelationship(req.Data.Relationships.Category, true)
	if catErr != nil {
		fieldErrs = append(fieldErrs, *catErr)
	}

	if len(fieldErrs) > 0 {
		RespondError(w, r, fieldErrs)
		return
	}

	appt, err := domain.NewAppointment(date, start, email, categoryID)
	if err != nil {
		RespondError(w, r, domainValidationErrors(err))
		return
	}
	appt.AuthorID = uuid.NullUUID{UUID: claims.UserID, Valid: true}

	if err := h.service.Create(r.Context(), appt); err != nil {
		RespondError(w, r, err)
		return
	}

	log.Info("appointment booked",
		slog.Int64("appointment_id", appt.ID),
		slog.String("user_id", claims.UserID.String()))

	res := appointmentResource(appt, nil, nil)
	w.Header().Set("Location", res.Links["self"])
	shared.RespondWithDocument(w, r, http.StatusCreated, jsonapi.NewResourceDocument(res))
}

// Update handles PATCH /api/v1/appointments/{id}
// Only the appointment's author may modify it; anonymous bookings have
// no author and cannot be modified. Attributes absent from the payload
// keep their stored values. The modified slot re-runs the full
// scheduling validation.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAbility(w, r, domain.AbilityAppointmentUpdate)
	if !ok {
		return
	}

	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	appt, err := h.appointments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	if !appt.OwnedBy(claims.UserID) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return
	}

	var req AppointmentResourceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		RespondError(w, r, jsonapi.NewBadRequest("The request body is not valid JSON."))
		return
	}

	fieldErrs := applyAppointmentAttributes(appt, req.Data.Attributes)

	if rel := req.Data.Relationships.Category; rel != nil {
		categoryID, catErr := parseCategoryRelationship(rel, true)
		if catErr != nil {
			fieldErrs = append(fieldErrs, *catErr)
		} else {
			appt.CategoryID = categoryID
		}
	}

	if len(fieldErrs) > 0 {
		RespondError(w, r, fieldErrs)
		return
	}

	if err := h.service.Update(r.Context(), appt); err != nil {
		RespondError(w, r, err)
		return
	}

	shared.RespondWithDocument(w, r, http.StatusOK,
		jsonapi.NewResourceDocument(appointmentResource(appt, nil, nil)))
}

// Delete handles DELETE /api/v1/appointments/{id}
// Only the appointment's author may cancel it.
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	claims, ok := requireAbility(w, r, domain.AbilityAppointmentDelete)
	if !ok {
		return
	}

	id, err := parseResourceID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	appt, err := h.appointments.GetByID(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	if !appt.OwnedBy(claims.UserID) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		RespondError(w, r, err)
		return
	}

	log.Info("appointment cancelled",
		slog.Int64("appointment_id", id),
		slog.String("user_id", claims.UserID.String()))

	w.WriteHeader(http.StatusNoContent)
}

// parseAppointmentAttributes validates and parses the writable
// attributes. With required set, absent attributes fail; otherwise they
// are skipped, which serves PATCH semantics.
func parseAppointmentAttributes(attrs AppointmentAttributes, required bool) (domain.Date, domain.TimeOfDay, string, jsonapi.ValidationErrors) {
	var (
		date      domain.Date
		start     domain.TimeOfDay
		email     string
		fieldErrs jsonapi.ValidationErrors
	)

	switch {
	case attrs.Date != nil:
		d, err := domain.ParseDate(*attrs.Date)
		if err != nil {
			fieldErrs = append(fieldErrs, jsonapi.FieldError{
				Field: "date", Detail: "The date does not match the format Y-m-d.",
			})
		} else {
			date = d
		}
	case required:
		fieldErrs = append(fieldErrs, jsonapi.FieldError{
			Field: "date", Detail: "The date field is required.",
		})
	}

	switch {
	case attrs.StartTime != nil:
		t, err := domain.ParseTimeOfDay(*attrs.StartTime)
		if err != nil {
			fieldErrs = append(fieldErrs, jsonapi.FieldError{
				Field: "start_time", Detail: "The start time does not match the format H:i.",
			})
		} else {
			start = t
		}
	case required:
		fieldErrs = append(fieldErrs, jsonapi.FieldError{
			Field: "start_time", Detail: "The start time field is required.",
		})
	}

	switch {
	case attrs.Email != nil:
		email = *attrs.Email
	case required:
		fieldErrs = append(fieldErrs, jsonapi.FieldError{
			Field: "email", Detail: "The email field is required.",
		})
	}

	return date, start, email, fieldErrs
}

// applyAppointmentAttributes overlays the present attributes onto an
// existing appointment.
func applyAppointmentAttributes(appt *domain.Appointment, attrs AppointmentAttributes) jsonapi.ValidationErrors {
	date, start, email, fieldErrs := parseAppointmentAttributes(attrs, false)

	if attrs.Date != nil && !date.IsZero() {
		appt.Date = date
	}
	if attrs.StartTime != nil {
		appt.StartTime = start
	}
	if attrs.Email != nil {
		appt.Email = email
	}
	appt.UpdatedAt = time.Now().UTC()

	return fieldErrs
}

// parseCategoryRelationship resolves the category linkage to its id.
func parseCategoryRelationship(rel *RelationshipRequest, required bool) (int64, *jsonapi.FieldError) {
	if rel == nil || rel.Data == nil {
		if required {
			return 0, &jsonapi.FieldError{Field: "category", Detail: "The category field is required."}
		}
		return 0, nil
	}

	id, err := parseInt64(rel.Data.ID)
	if err != nil || rel.Data.Type != jsonapi.Categories.Name {
		return 0, &jsonapi.FieldError{Field: "category", Detail: "The selected category is invalid."}
	}
	return id, nil
}

// domainValidationErrors shapes domain constructor errors as field
// validation failures.
func domainValidationErrors(err error) jsonapi.ValidationErrors {
	switch err {
	case domain.ErrInvalidEmail:
		return jsonapi.ValidationErrors{{Field: "email", Detail: "The email must be a valid email address."}}
	case domain.ErrAppointmentDateEmpty:
		return jsonapi.ValidationErrors{{Field: "date", Detail: "The date field is required."}}
	case domain.ErrAppointmentEmailEmpty:
		return jsonapi.ValidationErrors{{Field: "email", Detail: "The email field is required."}}
	case domain.ErrAppointmentCategoryEmpty:
		return jsonapi.ValidationErrors{{Field: "category", Detail: "The category field is required."}}
	default:
		return jsonapi.ValidationErrors{{Field: "data", Detail: err.Error()}}
	}
}
