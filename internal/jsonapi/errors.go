package jsonapi

import (
	"fmt"
	"net/http"
	"strconv"
)

// ErrorSource locates the part of the request an error refers to.
type ErrorSource struct {
	Pointer string `json:"pointer"`
}

// ErrorObject is a single JSON:API error.
type ErrorObject struct {
	Title  string       `json:"title,omitempty"`
	Detail string       `json:"detail,omitempty"`
	Status string       `json:"status,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorDocument is the top-level JSON:API errors payload.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// Error is a typed request error carrying the HTTP status it should be
// rendered with. It is raised by the query parser and the handlers and
// converted to an ErrorDocument by Format.
type Error struct {
	Status int
	Title  string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// NewBadRequest builds a 400 error with the given detail.
func NewBadRequest(detail string) *Error {
	return &Error{Status: http.StatusBadRequest, Title: "Bad Request", Detail: detail}
}

// NewNotFound builds a 404 error with the given detail.
func NewNotFound(detail string) *Error {
	return &Error{Status: http.StatusNotFound, Title: "Not Found", Detail: detail}
}

// NewRouteNotFound builds the 404 raised for paths that resolve to no
// route at all, as opposed to known routes with an unresolvable id.
func NewRouteNotFound(path string) *Error {
	return NewNotFound(fmt.Sprintf("The route %s could not be found.", path))
}

// NewRecordNotFound builds the 404 raised when a known route names an id
// that does not exist.
func NewRecordNotFound() *Error {
	return NewNotFound("No records found with that id.")
}

// NewUnauthenticated builds the 401 returned to requests without a valid
// credential.
func NewUnauthenticated() *Error {
	return &Error{Status: http.StatusUnauthorized, Title: "Unauthenticated", Detail: "Unauthenticated."}
}

// NewForbidden builds a 403 error with the given detail.
func NewForbidden(detail string) *Error {
	return &Error{Status: http.StatusForbidden, Title: "Forbidden", Detail: detail}
}

// Document renders the error as a single-element errors payload.
func (e *Error) Document() ErrorDocument {
	return ErrorDocument{Errors: []ErrorObject{{
		Title:  e.Title,
		Detail: e.Detail,
		Status: strconv.Itoa(e.Status),
	}}}
}

// validationErrorTitle matches the framework wording clients of the
// original API already depend on.
const validationErrorTitle = "The given data was invalid."

// FieldError is one failed validation on a named attribute.
type FieldError struct {
	Field  string
	Detail string
}

// ValidationErrors accumulates per-field validation failures. Several
// may co-occur; the whole set is rendered in one 422 response.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return "validation failed: " + ve[0].Detail
}

// Document renders every field failure as a JSON:API error object with a
// source pointer into the request's attributes.
func (ve ValidationErrors) Document() ErrorDocument {
	doc := ErrorDocument{Errors: make([]ErrorObject, 0, len(ve))}
	for _, fe := range ve {
		doc.Errors = append(doc.Errors, ErrorObject{
			Title:  validationErrorTitle,
			Detail: fe.Detail,
			Source: &ErrorSource{Pointer: "/data/attributes/" + fe.Field},
		})
	}
	return doc
}
