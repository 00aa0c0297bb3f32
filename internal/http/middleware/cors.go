package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders = "Content-Type, X-Request-ID"
	corsAllowMethods = "GET, POST, OPTIONS"
	corsMaxAge       = "600"
)

// OriginPolicy decides which browser origins may call the booking endpoints.
// The public form is often hosted on a separate static site, so an empty
// list (or "*") admits every origin.
type OriginPolicy struct {
	any     bool
	origins map[string]struct{}
}

// NewOriginPolicy normalizes the configured origins. Entries are compared
// case-insensitively and without a trailing slash.
func NewOriginPolicy(allowed []string) OriginPolicy {
	p := OriginPolicy{origins: map[string]struct{}{}}
	for _, origin := range allowed {
		origin = normalizeOrigin(origin)
		switch origin {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	if len(p.origins) == 0 {
		p.any = true
	}
	return p
}

// Allows reports whether origin may read responses.
func (p OriginPolicy) Allows(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// Handler applies the policy. Preflights are answered here: 204 for an
// admitted origin and 403 otherwise. Simple requests from other origins
// still reach next but get no CORS headers, so the browser hides the reply.
func (p OriginPolicy) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		allowed := p.Allows(origin)
		w.Header().Add("Vary", "Origin")
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CORS builds the middleware for the configured origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return NewOriginPolicy(allowedOrigins).Handler
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}
