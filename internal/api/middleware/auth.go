package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/redact"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service/auth"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	tokens     store.TokenStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, tokens store.TokenStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokens:     tokens,
	}
}

// Authenticate validates the bearer token from the Authorization
// header, rejects revoked tokens, and adds the claims to the request
// context for authorized requests. Failures get the JSON:API 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondUnauthenticated(w, r)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			respondUnauthenticated(w, r)
			return
		}

		revoked, err := m.tokens.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			slog.Error("failed to check token revocation", "error", redact.Error(err))
			respondUnauthenticated(w, r)
			return
		}
		if revoked {
			respondUnauthenticated(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), shared.ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// respondUnauthenticated writes the fixed JSON:API 401. The wording
// never reveals why the credential was rejected.
func respondUnauthenticated(w http.ResponseWriter, r *http.Request) {
	unauth := jsonapi.NewUnauthenticated()
	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(unauth.Status)
	if err := json.NewEncoder(w).Encode(unauth.Document()); err != nil {
		slog.Error("failed to encode JSON:API error document", "error", err)
	}
}
