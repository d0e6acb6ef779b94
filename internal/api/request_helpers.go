package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service/auth"
)

// parseResourceID extracts a numeric resource id from the URL. A
// non-numeric id can't name a record, so it reports the same 404 an
// unknown id would.
func parseResourceID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		return 0, jsonapi.NewRecordNotFound()
	}
	return id, nil
}

// claimsFromRequest extracts the authenticated token claims placed in
// the context by the auth middleware.
func claimsFromRequest(r *http.Request) (*auth.Claims, bool) {
	claims, ok := r.Context().Value(shared.ClaimsContextKey).(*auth.Claims)
	return claims, ok
}

// requireAbility checks that the request carries claims with the given
// ability, writing the 401/403 response itself when it doesn't.
func requireAbility(w http.ResponseWriter, r *http.Request, ability string) (*auth.Claims, bool) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		RespondError(w, r, auth.ErrMissingToken)
		return nil, false
	}
	if !claims.Can(ability) {
		RespondError(w, r, jsonapi.NewForbidden("This action is unauthorized."))
		return nil, false
	}
	return claims, true
}

// parseQuerySpec parses and validates the request's query parameters
// for the given resource type.
func parseQuerySpec(r *http.Request, rt *jsonapi.ResourceType) (*jsonapi.QuerySpec, error) {
	return jsonapi.ParseQuery(rt, r.URL.Query())
}

// parseInt64 parses a JSON:API string id into its numeric form.
func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// chiURLParam exposes the route parameter lookup to handlers without
// each of them importing the router package.
func chiURLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
