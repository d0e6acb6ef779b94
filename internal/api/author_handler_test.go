package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorList(t *testing.T) {
	api := newTestAPI(t)
	seedUser(t, api, "Ana", "ana@example.com")
	seedUser(t, api, "Moises", "moises@example.com")

	rec := api.do(http.MethodGet, "/api/v1/authors", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeDocument(t, rec)
	data := doc["data"].([]any)
	require.Len(t, data, 2)

	first := data[0].(map[string]any)
	assert.Equal(t, "authors", first["type"])
	attrs := first["attributes"].(map[string]any)
	assert.Equal(t, "Ana", attrs["name"])
	assert.Equal(t, "ana@example.com", attrs["email"])
	assert.NotContains(t, attrs, "password")
	assert.NotContains(t, attrs, "hashed_password")
}

func TestAuthorGet(t *testing.T) {
	api := newTestAPI(t)
	user := seedUser(t, api, "Moises", "moises@example.com")

	rec := api.do(http.MethodGet, "/api/v1/authors/"+user.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeDocument(t, rec)
	data := doc["data"].(map[string]any)
	assert.Equal(t, user.ID.String(), data["id"])
	assert.Equal(t, "Moises", data["attributes"].(map[string]any)["name"])
}

func TestAuthorGetNotFound(t *testing.T) {
	api := newTestAPI(t)

	// Both a malformed id and an unknown uuid read as not found.
	for _, target := range []string{
		"/api/v1/authors/not-a-uuid",
		"/api/v1/authors/6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	} {
		rec := api.do(http.MethodGet, target, nil)

		require.Equal(t, http.StatusNotFound, rec.Code, target)
		doc := decodeDocument(t, rec)
		first := doc["errors"].([]any)[0].(map[string]any)
		assert.Equal(t, "No records found with that id.", first["detail"])
	}
}

func TestCurrentUser(t *testing.T) {
	api := newTestAPI(t)
	user := seedUser(t, api, "Moises", "moises@example.com")

	rec := api.doAs(claimsFor(user), http.MethodGet, "/api/v1/user", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	doc := decodeDocument(t, rec)
	data := doc["data"].(map[string]any)
	assert.Equal(t, user.ID.String(), data["id"])
	assert.Equal(t, "moises@example.com", data["attributes"].(map[string]any)["email"])
}

func TestCurrentUserUnauthenticated(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/user", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
