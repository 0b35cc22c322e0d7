package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs one line per request with structured fields.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// measure records request metrics.
func (h *Handler) measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.metrics.RequestsInFlight.Inc()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.metrics.RequestsInFlight.Dec()
		status := strconv.Itoa(ww.Status())
		h.metrics.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		h.metrics.RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).
			Observe(time.Since(start).Seconds())
	})
}

// authenticate resolves the request's credentials to an account, in order:
// session cookie, bearer token, API key header. A failed credential falls
// through; requireAuth decides whether anonymous access is allowed.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if cookie, err := r.Cookie(SessionCookie); err == nil {
			if sess, err := h.sessions.Authenticate(ctx, cookie.Value); err == nil {
				if actor, err := h.accounts.Get(ctx, sess.UserID); err == nil {
					next.ServeHTTP(w, r.WithContext(withActor(ctx, actor)))
					return
				}
			}
			h.authFailure("session")
		}

		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			if identity, ok := h.tokens.Verify(token); ok {
				if actor, err := h.accounts.Get(ctx, identity.UserID); err == nil {
					next.ServeHTTP(w, r.WithContext(withActor(ctx, actor)))
					return
				}
			}
			h.authFailure("token")
		}

		if raw := r.Header.Get("X-API-Key"); raw != "" {
			if k, err := h.keys.Authenticate(ctx, raw); err == nil {
				if actor, err := h.accounts.Get(ctx, k.UserID); err == nil {
					next.ServeHTTP(w, r.WithContext(withActor(ctx, actor)))
					return
				}
			}
			h.authFailure("api_key")
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects anonymous requests.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(r.Context()); !ok {
			h.writeErrorStatus(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) authFailure(reason string) {
	if h.metrics != nil {
		h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}
