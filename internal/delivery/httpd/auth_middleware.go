package httpd

import (
	"context"
	"net/http"
	"strings"

	"github.com/marisa-playground/labeling-service/internal/auth"
	"github.com/marisa-playground/labeling-service/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticate разбирает bearer-токен, проверяет его через AuthService и
// кладёт пользователя в контекст запроса.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "Authorization header format must be Bearer <token>")
			return
		}

		user, err := h.authService.VerifyToken(r.Context(), parts[1])
		if err != nil {
			h.logger.Debug().Err(err).Msg("Token verification failed")
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}

// Require сверяет роль аутентифицированного пользователя с таблицей политик.
func (h *Handler) Require(op auth.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			user, ok := userFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !auth.Allowed(user.Role, op) {
				writeError(w, http.StatusForbidden, "Operation not permitted for role")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
