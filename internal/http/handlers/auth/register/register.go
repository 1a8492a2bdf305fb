// Package register реализует HTTP-обработчик регистрации пользователя.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wellness-auth/internal/http/response"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
	"github.com/magabrotheeeer/wellness-auth/internal/metrics"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
	services "github.com/magabrotheeeer/wellness-auth/internal/services/auth"
)

// Request это входные данные для регистрации.
type Request struct {
	Email        string  `json:"email" validate:"required,email,max=254"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	FirstName    string  `json:"first_name" validate:"required,max=100"`
	LastName     string  `json:"last_name" validate:"max=100"`
	Role         string  `json:"role" validate:"required"`
	Institution  *string `json:"institution,omitempty" validate:"omitempty,max=200"`
	Department   *string `json:"department,omitempty" validate:"omitempty,max=200"`
	AcademicYear *string `json:"academic_year,omitempty" validate:"omitempty,max=20"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	RegisterUser(ctx context.Context, in services.RegisterInput) (*models.Identity, error)
}

// Observer учитывает результат регистрации.
type Observer interface {
	ObserveRegister(result string)
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	observer Observer
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, observer Observer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		observer: observer,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью student, counselor или moderator. Администраторы создаются утилитой createadmin.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response{data=models.Identity}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Регистрация не удалась"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		h.observe(metrics.ResultRejected)
		response.JSONError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		h.observe(metrics.ResultRejected)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if role, err := models.ParseRole(req.Role); err == nil && role == models.RoleAdmin {
		log.Warn("self-registration as admin rejected", slog.String("email", req.Email))
		h.observe(metrics.ResultRejected)
		response.JSONError(w, r, http.StatusUnprocessableEntity, "role is not available for registration")
		return
	}

	identity, err := h.service.RegisterUser(r.Context(), services.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		Institution:  req.Institution,
		Department:   req.Department,
		AcademicYear: req.AcademicYear,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrValidation):
		log.Info("registration rejected", sl.Err(err))
		h.observe(metrics.ResultRejected)
		response.JSONError(w, r, http.StatusUnprocessableEntity, "invalid registration data")
		return
	case errors.Is(err, services.ErrDuplicateUser):
		log.Info("duplicate registration", slog.String("email", req.Email))
		h.observe(metrics.ResultDuplicate)
		response.JSONError(w, r, http.StatusConflict, "registration failed")
		return
	default:
		log.Error("failed to register user", sl.Err(err))
		h.observe(metrics.ResultError)
		response.JSONError(w, r, http.StatusInternalServerError, "registration failed")
		return
	}

	log.Info("user registered", slog.String("user_id", identity.UserID), slog.String("role", identity.Role.String()))
	h.observe(metrics.ResultSuccess)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(identity))
}

func (h *Handler) observe(result string) {
	if h.observer != nil {
		h.observer.ObserveRegister(result)
	}
}
