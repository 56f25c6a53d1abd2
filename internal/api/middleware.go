package api

import (
	"context"
	"net/http"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUserID contextKey = "user_id"

// requireUser is middleware that reads the identity established by the
// fronting identity provider. The reverse proxy strips any client-supplied
// X-User-ID before setting its own, so the header is trusted here.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			response.Unauthorized(w, "Missing user identity", s.logger)
			return
		}

		// Mirror the identity locally so social edges and ownership
		// checks have a row to reference.
		user := &domain.User{
			ID:          userID,
			DisplayName: r.Header.Get("X-User-Name"),
		}
		if err := s.store.EnsureUser(r.Context(), user); err != nil {
			s.logger.Error("Failed to ensure user", "error", err, "user_id", userID)
			response.InternalError(w, "internal server error", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getUserID extracts the authenticated user ID from request context.
// Returns empty string if not authenticated.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}
