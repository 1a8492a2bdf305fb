package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

// Resolver извлекает идентичность из запроса.
type Resolver interface {
	Resolve(r *http.Request) (*models.Identity, bool)
}

// SessionMiddleware разрешает сессию запроса и сохраняет идентичность в контексте.
// Запрос без действительной сессии проходит дальше как анонимный.
func SessionMiddleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := resolver.Resolve(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("session resolved",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("user_id", identity.UserID),
				slog.String("role", identity.Role.String()),
			)
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
