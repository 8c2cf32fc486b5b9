// Package middleware provides HTTP middleware for LicenseDesk.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/raghavbhatia332/licensedesk/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID is HTTP middleware that takes X-Request-ID from the request
// header or mints a new one, stores it in the context, and echoes it on
// the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
