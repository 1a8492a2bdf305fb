// Package logout реализует HTTP-обработчик выхода пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wellness-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wellness-auth/internal/http/response"
)

// Revoker удаляет сессионную cookie.
type Revoker interface {
	Revoke(w http.ResponseWriter)
}

// Handler обрабатывает выход. Повторный выход и выход без сессии не считаются ошибкой.
type Handler struct {
	log      *slog.Logger
	sessions Revoker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Revoker) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Удаляет сессионную cookie. Идемпотентен.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	h.sessions.Revoke(w)

	attrs := []any{
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if identity := middlewarectx.IdentityFromContext(r.Context()); identity != nil {
		attrs = append(attrs, slog.String("user_id", identity.UserID))
	}
	h.log.Info("session revoked", attrs...)

	render.JSON(w, r, response.Response{Status: response.StatusOK})
}
