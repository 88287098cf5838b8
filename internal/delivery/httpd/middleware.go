package httpd

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionAuth resolves the bearer token to a session and stores it on
// the request context.
func (h *Handler) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authorization token is required")
			return
		}

		session, err := h.authService.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionExpired):
				writeError(w, http.StatusUnauthorized, "Session expired")
			case errors.Is(err, service.ErrNotAuthorized):
				writeError(w, http.StatusUnauthorized, "Invalid session token")
			default:
				h.logger.Error().Err(err).Msg("Failed to authenticate request")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if session == nil || !session.IsAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
