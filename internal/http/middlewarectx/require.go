package middlewarectx

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wellness-auth/internal/access"
	"github.com/magabrotheeeer/wellness-auth/internal/http/response"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
)

// DecisionObserver учитывает решения о доступе.
type DecisionObserver interface {
	ObserveDecision(requirement, reason string)
}

// Guard применяет access.AuthorizeStrict к запросам.
type Guard struct {
	log      *slog.Logger
	observer DecisionObserver
}

// NewGuard создаёт Guard. observer может быть nil.
func NewGuard(log *slog.Logger, observer DecisionObserver) *Guard {
	return &Guard{log: log, observer: observer}
}

// decide возвращает решение для запроса. ok=false означает, что ответ 500 уже записан.
func (g *Guard) decide(w http.ResponseWriter, r *http.Request, op string, req access.Requirement) (access.Decision, bool) {
	log := g.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("requirement", req.String()),
	)

	identity := IdentityFromContext(r.Context())
	decision, err := access.AuthorizeStrict(identity, req)
	if err != nil {
		log.Error("access invariant violated", sl.Err(err))
		if g.observer != nil {
			g.observer.ObserveDecision(req.String(), "error")
		}
		response.JSONError(w, r, http.StatusInternalServerError, "internal error")
		return decision, false
	}
	if g.observer != nil {
		g.observer.ObserveDecision(req.String(), decision.Reason.String())
	}
	if !decision.Allowed {
		log.Info("access denied", slog.String("reason", decision.Reason.String()), slog.String("path", r.URL.Path))
	}
	return decision, true
}

// RequireAPI пропускает запрос, если доступ разрешён.
// Нет сессии: 401, чужая роль: 403.
func (g *Guard) RequireAPI(req access.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAPI"
			decision, ok := g.decide(w, r, op, req)
			if !ok {
				return
			}
			switch decision.Reason {
			case access.ReasonNone:
				next.ServeHTTP(w, r)
			case access.ReasonUnauthenticated:
				response.JSONError(w, r, http.StatusUnauthorized, "authentication required")
			default:
				response.JSONError(w, r, http.StatusForbidden, "access denied")
			}
		})
	}
}

// RequirePage пропускает запрос к странице, если доступ разрешён.
// Без сессии перенаправляет на вход с возвратом на запрошенный путь,
// с чужой ролью на стартовую страницу своей роли.
func (g *Guard) RequirePage(req access.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequirePage"
			decision, ok := g.decide(w, r, op, req)
			if !ok {
				return
			}
			switch decision.Reason {
			case access.ReasonNone:
				next.ServeHTTP(w, r)
			case access.ReasonUnauthenticated:
				target := access.LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
			default:
				target := access.HomePath
				if identity := IdentityFromContext(r.Context()); identity != nil {
					target = access.LandingPath(identity.Role)
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
			}
		})
	}
}
