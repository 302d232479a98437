package middleware

import (
	"net/http"
	"regexp"

	"github.com/benvon/smart-decide/internal/request"
	"github.com/google/uuid"
)

// validRequestID bounds client supplied IDs to a safe charset
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// RequestID propagates X-Request-ID, generating a UUID when the client sent none or an unusable one
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(request.RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}

		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}
