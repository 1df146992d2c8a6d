package api

import (
	"context"
	"net/http"
	"time"

	"cardex/service"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const userIDKey contextKey = "userID"

// callerID returns the authenticated user ID attached by Identity
func callerID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Identity resolves the caller from the X-User-ID header set by the
// upstream identity provider. The user row is created on first touch;
// X-User-Name carries the display name when the provider has one.
func Identity(users service.UserService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Error:   "unauthenticated",
					Message: "missing X-User-ID header",
				})
				return
			}

			displayName := r.Header.Get("X-User-Name")
			if displayName == "" {
				displayName = userID
			}

			if _, err := users.GetOrCreateUser(r.Context(), userID, displayName); err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// RequestLogger logs one structured line per request
func RequestLogger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		defer func() {
			entry := log.WithFields(log.Fields{
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  ww.Status(),
				"bytes":   ww.BytesWritten(),
				"latency": time.Since(start).String(),
			})
			if ww.Status() >= 500 {
				entry.Error("Request failed")
			} else {
				entry.Info("Request completed")
			}
		}()

		next.ServeHTTP(ww, r)
	}
	return http.HandlerFunc(fn)
}
