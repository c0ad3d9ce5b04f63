package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/platform/obs"
	"parcel-booking-service/internal/ports"
	"parcel-booking-service/internal/services"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdentityHeader carries the authenticated email set by the upstream
// auth proxy. Token verification happens there, not here.
const IdentityHeader = "X-User-Email"

const requestIDHeader = "X-Request-ID"

// statusWriter captures the final HTTP status code and number of bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestIDMiddleware tags each request with an id, reusing a caller's
// X-Request-ID when present.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(obs.WithRequestID(r.Context(), id)))
	})
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		zap.L().Info("request",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.RequestURI()),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.bytes),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		)
	})
}

// sessionMiddleware resolves the caller's role once per request and stores
// the session in the context. Requests without identity pass through
// anonymous; routes that need a session are wrapped with requireRole.
func sessionMiddleware(roles ports.RoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := r.Header.Get(IdentityHeader)
			if email == "" {
				next.ServeHTTP(w, r)
				return
			}

			s, err := services.ResolveSession(r.Context(), email, roles)
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				zap.L().Error("resolve session failed",
					zap.String("req_id", obs.RequestID(r.Context())),
					zap.Error(err),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithSession(r.Context(), s)))
		})
	}
}

// requireRole rejects anonymous callers with 401 and callers lacking every
// listed role with 403. With no roles listed any session is accepted.
func requireRole(next http.HandlerFunc, roles ...domain.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := domain.SessionFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if len(roles) > 0 && !s.Is(roles...) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
