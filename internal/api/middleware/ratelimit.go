package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
)

// client pairs a limiter with the time it was last seen so stale
// entries can be evicted.
type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter applies a per-client-IP token bucket.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
}

// NewRateLimiter creates a RateLimiter allowing rps sustained requests
// per second with the given burst per client IP. It starts a background
// goroutine that evicts clients idle for a few minutes.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
	}
	// cleanup stale entries every minute
	go func() {
		for {
			time.Sleep(time.Minute)
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.seen) > 3*time.Minute {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if c, ok := rl.clients[ip]; ok {
		c.seen = time.Now()
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[ip] = &client{lim: l, seen: time.Now()}
	return l
}

// Limit is the HTTP middleware enforcing the per-IP limit. Rejections
// are logged at WARN: sustained rate limiting is an operational signal.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.get(ip).Allow() {
			slog.Warn("request rate limited",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path))

			doc := jsonapi.ErrorDocument{Errors: []jsonapi.ErrorObject{{
				Title:  "Too Many Requests",
				Detail: "Too many requests. Slow down.",
				Status: "429",
			}}}
			w.Header().Set("Content-Type", jsonapi.MediaType)
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(doc); err != nil {
				slog.Error("failed to encode JSON:API error document", "error", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}
