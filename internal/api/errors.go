package api

import (
	"errors"
	"net/http"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain/schedule"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service/auth"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// RespondError renders any error raised by the handlers, services or
// stores as a JSON:API errors document with the right HTTP status.
// Everything a client can see goes through here; internal detail stays
// in the logs.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	// Typed request errors carry their own status and wording.
	var reqErr *jsonapi.Error
	if errors.As(err, &reqErr) {
		shared.RespondWithErrorDocument(w, r, reqErr.Status, reqErr.Document(), err)
		return
	}

	// Attribute validation failures, already shaped per field.
	var fieldErrs jsonapi.ValidationErrors
	if errors.As(err, &fieldErrs) {
		shared.RespondWithErrorDocument(w, r, http.StatusUnprocessableEntity, fieldErrs.Document(), err)
		return
	}

	// Scheduling rule violations render like validation failures, one
	// error object per violated rule.
	var violations schedule.Violations
	if errors.As(err, &violations) {
		fields := make(jsonapi.ValidationErrors, 0, len(violations))
		for _, v := range violations {
			fields = append(fields, jsonapi.FieldError{Field: v.Field, Detail: v.Detail})
		}
		shared.RespondWithErrorDocument(w, r, http.StatusUnprocessableEntity, fields.Document(), err)
		return
	}

	switch {
	// A racing writer took the slot between the overlap check and the
	// insert; report it the same way the overlap check would have.
	case errors.Is(err, store.ErrSlotTaken):
		fields := jsonapi.ValidationErrors{{Field: "start_time", Detail: "There are cross hours"}}
		shared.RespondWithErrorDocument(w, r, http.StatusUnprocessableEntity, fields.Document(), err)

	case errors.Is(err, store.ErrEmailExists):
		fields := jsonapi.ValidationErrors{{Field: "email", Detail: "The email has already been taken."}}
		shared.RespondWithErrorDocument(w, r, http.StatusUnprocessableEntity, fields.Document(), err)

	case store.IsNotFoundError(err):
		notFound := jsonapi.NewRecordNotFound()
		shared.RespondWithErrorDocument(w, r, notFound.Status, notFound.Document(), err)

	// A write referenced a related record that doesn't exist.
	case errors.Is(err, store.ErrInvalidEntity):
		notFound := jsonapi.NewRecordNotFound()
		shared.RespondWithErrorDocument(w, r, notFound.Status, notFound.Document(), err)

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrRevokedToken):
		unauth := jsonapi.NewUnauthenticated()
		shared.RespondWithErrorDocument(w, r, unauth.Status, unauth.Document(), err)

	default:
		doc := jsonapi.ErrorDocument{Errors: []jsonapi.ErrorObject{{
			Title:  "Internal Server Error",
			Detail: "An unexpected error occurred.",
			Status: "500",
		}}}
		shared.RespondWithErrorDocument(w, r, http.StatusInternalServerError, doc, err)
	}
}
