package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedHandler(rl *RateLimiter) http.Handler {
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	handler := rateLimitedHandler(NewRateLimiter(1, 3))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.RemoteAddr = "203.0.113.10:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	handler := rateLimitedHandler(NewRateLimiter(0.0001, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.RemoteAddr = "203.0.113.10:54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	first := doc["errors"].([]any)[0].(map[string]any)
	assert.Equal(t, "Too Many Requests", first["title"])
	assert.Equal(t, "Too many requests. Slow down.", first["detail"])
	assert.Equal(t, "429", first["status"])
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	handler := rateLimitedHandler(NewRateLimiter(0.0001, 1))

	first := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	first.RemoteAddr = "203.0.113.10:54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different source IP gets its own bucket.
	second := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	second.RemoteAddr = "198.51.100.7:40000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterHandlesBareRemoteAddr(t *testing.T) {
	handler := rateLimitedHandler(NewRateLimiter(1, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	req.RemoteAddr = "203.0.113.10"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
