package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/redact"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service/auth"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// loginFailureDetail matches the wording clients of the original API
// already depend on.
const loginFailureDetail = "These credentials do not match our records."

// AuthHandler handles the token endpoints. These are plain JSON, not
// JSON:API resources: a token is not addressable content.
type AuthHandler struct {
	users          store.UserStore
	tokens         store.TokenStore
	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	verifier       auth.PasswordVerifier
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// If logger is nil, a default logger will be used.
func NewAuthHandler(
	users store.UserStore,
	tokens store.TokenStore,
	jwtService auth.JWTService,
	passwordHasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:          users,
		tokens:         tokens,
		jwtService:     jwtService,
		passwordHasher: passwordHasher,
		verifier:       verifier,
		logger:         logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /api/v1/login
// A successful login issues a bearer token carrying every ability the
// user holds, scoped to the named device.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithJSON(w, r, http.StatusBadRequest,
			MessageResponse{Message: "Invalid request format."})
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		h.respondLoginFailure(w, r, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.respondLoginFailure(w, r, err)
			return
		}
		slog.Error("failed to get user by email", "error", redact.Error(err))
		shared.RespondWithJSON(w, r, http.StatusInternalServerError,
			MessageResponse{Message: "Failed to authenticate user."})
		return
	}

	if err := h.verifier.Compare(user.HashedPassword, req.Password); err != nil {
		h.respondLoginFailure(w, r, auth.ErrInvalidCredentials)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Permissions, req.DeviceName)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithJSON(w, r, http.StatusInternalServerError,
			MessageResponse{Message: "Failed to generate authentication token."})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{PlainTextToken: token})
}

// respondLoginFailure writes the fixed 422 payload for a rejected
// login. The wording never distinguishes unknown email from wrong
// password.
func (h *AuthHandler) respondLoginFailure(w http.ResponseWriter, r *http.Request, err error) {
	slog.Debug("login rejected",
		"error", redact.Error(err),
		"trace_id", shared.GetTraceID(r.Context()))

	shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, LoginFailureResponse{
		Message: loginFailureDetail,
		Errors:  map[string][]string{"email": {loginFailureDetail}},
	})
}

// Register handles POST /api/v1/register
// A new account is granted every appointment ability and logged in
// immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithJSON(w, r, http.StatusBadRequest,
			MessageResponse{Message: "Invalid request format."})
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		fields := make(map[string][]string)
		for field, tag := range shared.ValidationFieldErrors(err) {
			fields[field] = []string{registerValidationDetail(field, tag)}
		}
		shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, LoginFailureResponse{
			Message: "The given data was invalid.",
			Errors:  fields,
		})
		return
	}

	hash, err := h.passwordHasher.Hash(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		shared.RespondWithJSON(w, r, http.StatusInternalServerError,
			MessageResponse{Message: "Failed to create user."})
		return
	}

	user, err := domain.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, LoginFailureResponse{
			Message: "The given data was invalid.",
			Errors:  map[string][]string{"email": {err.Error()}},
		})
		return
	}
	user.HashedPassword = hash
	user.Password = ""
	for _, ability := range domain.AllAbilities {
		user.GrantPermission(ability)
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, LoginFailureResponse{
				Message: "The given data was invalid.",
				Errors:  map[string][]string{"email": {"The email has already been taken."}},
			})
			return
		}
		slog.Error("failed to create user", "error", redact.Error(err))
		shared.RespondWithJSON(w, r, http.StatusInternalServerError,
			MessageResponse{Message: "Failed to create user."})
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Permissions, "api")
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithJSON(w, r, http.StatusInternalServerError,
			MessageResponse{Message: "Failed to generate authentication token."})
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, TokenResponse{PlainTextToken: token})
}

// Logout handles POST /api/v1/logout
// Only the presenting token is revoked; the user's other devices stay
// logged in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		RespondError(w, r, auth.ErrMissingToken)
		return
	}

	if err := h.tokens.Revoke(r.Context(), claims.ID, claims.ExpiresAt); err != nil {
		slog.Error("failed to revoke token", "error", err, "user_id", claims.UserID)
		shared.RespondWithJSON(w, r, http.StatusInternalServerError,
			MessageResponse{Message: "Failed to log out."})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logged out."})
}

// registerValidationDetail maps a failed validation tag to its message.
func registerValidationDetail(field, tag string) string {
	switch {
	case tag == "required":
		return "The " + field + " field is required."
	case tag == "email":
		return "The " + field + " must be a valid email address."
	case field == "password" && tag == "min":
		return "The password must be at least 8 characters."
	default:
		return "The " + field + " is invalid."
	}
}
