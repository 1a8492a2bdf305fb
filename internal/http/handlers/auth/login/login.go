// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешной проверке учётных данных выдаётся сессионная cookie,
// а в теле ответа возвращается идентичность пользователя и стартовая страница его роли.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wellness-auth/internal/access"
	"github.com/magabrotheeeer/wellness-auth/internal/http/response"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
	"github.com/magabrotheeeer/wellness-auth/internal/metrics"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
	services "github.com/magabrotheeeer/wellness-auth/internal/services/auth"
	"github.com/magabrotheeeer/wellness-auth/internal/services/limiter"
)

// Request это структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Data это тело успешного ответа.
type Data struct {
	User     *models.Identity `json:"user"`
	Redirect string           `json:"redirect"`
}

// Service описывает проверку учётных данных.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.Identity, error)
}

// Issuer выдаёт сессионную cookie.
type Issuer interface {
	Issue(w http.ResponseWriter, identity models.Identity) (string, error)
}

// Observer учитывает результат входа.
type Observer interface {
	ObserveLogin(result string)
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Issuer
	observer Observer
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sessions Issuer, observer Observer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		observer: observer,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, устанавливает сессионную cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response{data=Data}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.JSONError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	identity, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials):
		log.Info("invalid credentials", slog.String("email", req.Email))
		h.observe(metrics.ResultInvalid)
		response.JSONError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	case errors.Is(err, limiter.ErrTooManyAttempts):
		log.Warn("login throttled", slog.String("email", req.Email))
		h.observe(metrics.ResultThrottled)
		response.JSONError(w, r, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	default:
		log.Error("login failed", sl.Err(err))
		h.observe(metrics.ResultError)
		response.JSONError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := h.sessions.Issue(w, *identity); err != nil {
		log.Error("failed to issue session", sl.Err(err))
		h.observe(metrics.ResultError)
		response.JSONError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("login success", slog.String("user_id", identity.UserID), slog.String("role", identity.Role.String()))
	h.observe(metrics.ResultSuccess)
	render.JSON(w, r, response.StatusOKWithData(Data{
		User:     identity,
		Redirect: access.LandingPath(identity.Role),
	}))
}

func (h *Handler) observe(result string) {
	if h.observer != nil {
		h.observer.ObserveLogin(result)
	}
}
