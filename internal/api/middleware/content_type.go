package middleware

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// RequireJSONAPIContentType rejects write requests whose body does not
// declare the JSON:API media type. Reads pass through: they carry no
// body worth negotiating.
func RequireJSONAPIContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodPut:
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != jsonapi.MediaType {
				doc := jsonapi.ErrorDocument{Errors: []jsonapi.ErrorObject{{
					Title:  "Unsupported Media Type",
					Detail: "Content-Type must be " + jsonapi.MediaType + ".",
					Status: "415",
				}}}
				w.Header().Set("Content-Type", jsonapi.MediaType)
				w.WriteHeader(http.StatusUnsupportedMediaType)
				if err := json.NewEncoder(w).Encode(doc); err != nil {
					slog.Error("failed to encode JSON:API error document", "error", err)
				}
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
