package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/wellness-auth/docs"
	"github.com/magabrotheeeer/wellness-auth/internal/access"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/areas"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/pages"
	"github.com/magabrotheeeer/wellness-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wellness-auth/internal/metrics"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

// AuthService операции сервиса учётных данных, нужные обработчикам.
type AuthService interface {
	login.Service
	register.Service
}

// Sessions выдача, проверка и отзыв сессии.
type Sessions interface {
	middlewarectx.Resolver
	pages.Sessions
}

// Deps зависимости маршрутизатора.
type Deps struct {
	Logger         *slog.Logger
	Auth           AuthService
	Sessions       Sessions
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middlewarectx.IPRateLimiter
	HealthChecks   map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger
	guard := middlewarectx.NewGuard(logger, d.Metrics)
	htmlPages := pages.New(logger, d.Auth, d.Sessions, d.Metrics)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Get("/healthz", health.New(logger, d.HealthChecks).ServeHTTP)
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		if d.RateLimiter != nil {
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.RateLimiter))
		}
		r.Use(middlewarectx.SessionMiddleware(d.Sessions, logger))

		// Страницы
		r.Get("/", htmlPages.Home)
		r.Get("/login", htmlPages.LoginForm)
		r.Post("/login", htmlPages.LoginSubmit)
		r.Post("/logout", htmlPages.Logout)
		for _, role := range models.Roles() {
			r.With(guard.RequirePage(access.RoleExactly(role))).
				Get(access.LandingPath(role), htmlPages.Area(role))
		}

		r.Route("/api/v1", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/register", register.New(logger, d.Auth, d.Metrics).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth, d.Sessions, d.Metrics).ServeHTTP)
			r.Post("/logout", logout.New(logger, d.Sessions).ServeHTTP)

			r.With(guard.RequireAPI(access.AnyAuthenticated())).Get("/me", me.ServeHTTP)
			r.With(guard.RequireAPI(access.RoleExactly(models.RoleAdmin))).Get("/admin/analytics", areas.AdminAnalytics)
			r.With(guard.RequireAPI(access.RoleExactly(models.RoleCounselor))).Get("/counselor/sessions", areas.CounselorSessions)
			r.With(guard.RequireAPI(access.RoleExactly(models.RoleModerator))).Get("/moderator/queue", areas.ModeratorQueue)
			r.With(guard.RequireAPI(access.RoleExactly(models.RoleStudent))).Get("/student/journal", areas.StudentJournal)
		})
	})
}
