package api

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=1"`
	DeviceName string `json:"device_name" validate:"required,max=255"`
}

// TokenResponse defines the successful response for the token endpoints.
type TokenResponse struct {
	// PlainTextToken is the bearer token the client presents on
	// subsequent requests.
	PlainTextToken string `json:"plain_text_token"`
}

// MessageResponse is a plain JSON message envelope used outside the
// JSON:API surface (logout confirmation, unknown non-API routes).
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginFailureResponse mirrors the wording returned on a failed login.
type LoginFailureResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// JSON:API request bodies. Attribute fields are pointers so PATCH can
// distinguish "absent" from "set to empty"; handlers validate presence
// per method.

// IdentifierRequest is a {type, id} pair inside a relationship payload.
type IdentifierRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RelationshipRequest is a to-one relationship payload.
type RelationshipRequest struct {
	Data *IdentifierRequest `json:"data"`
}

// ManyRelationshipRequest is a to-many relationship payload.
type ManyRelationshipRequest struct {
	Data []IdentifierRequest `json:"data"`
}

// AppointmentAttributes are the writable appointment attributes.
type AppointmentAttributes struct {
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	Email     *string `json:"email"`
}

// AppointmentRelationships are the writable appointment relationships.
type AppointmentRelationships struct {
	Category *RelationshipRequest `json:"category"`
	Author   *RelationshipRequest `json:"author"`
}

// AppointmentResourceRequest is the request document for creating or
// updating an appointment.
type AppointmentResourceRequest struct {
	Data struct {
		Type          string                   `json:"type"`
		Attributes    AppointmentAttributes    `json:"attributes"`
		Relationships AppointmentRelationships `json:"relationships"`
	} `json:"data"`
}

// CommentAttributes are the writable comment attributes.
type CommentAttributes struct {
	Body *string `json:"body"`
}

// CommentRelationships are the writable comment relationships.
type CommentRelationships struct {
	Appointment *RelationshipRequest `json:"appointment"`
}

// CommentResourceRequest is the request document for creating or
// updating a comment.
type CommentResourceRequest struct {
	Data struct {
		Type          string               `json:"type"`
		Attributes    CommentAttributes    `json:"attributes"`
		Relationships CommentRelationships `json:"relationships"`
	} `json:"data"`
}
