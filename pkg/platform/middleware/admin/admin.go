package admin

import (
	"log/slog"
	"net/http"

	"backoffice/pkg/requestcontext"
	"backoffice/pkg/secrets"
)

// RequireAdminKey gates operational endpoints behind an API key. The key is
// stored as a bcrypt hash; an empty hash disables the routes entirely.
func RequireAdminKey(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if keyHash == "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			key := r.Header.Get("X-Admin-Key")
			if key == "" || secrets.Verify(key, keyHash) != nil {
				logger.WarnContext(ctx, "admin key mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin key required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
