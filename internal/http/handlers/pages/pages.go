// Package pages отдаёт HTML-страницы: главную, вход и разделы ролей.
// Разделы ролей защищаются middlewarectx.RequirePage до вызова обработчика.
package pages

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/wellness-auth/internal/access"
	"github.com/magabrotheeeer/wellness-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
	"github.com/magabrotheeeer/wellness-auth/internal/metrics"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
	services "github.com/magabrotheeeer/wellness-auth/internal/services/auth"
	"github.com/magabrotheeeer/wellness-auth/internal/services/limiter"
)

// LoginService проверяет учётные данные.
type LoginService interface {
	Login(ctx context.Context, email, password string) (*models.Identity, error)
}

// Sessions выдаёт и отзывает сессионную cookie.
type Sessions interface {
	Issue(w http.ResponseWriter, identity models.Identity) (string, error)
	Revoke(w http.ResponseWriter)
}

// LoginObserver учитывает результат входа.
type LoginObserver interface {
	ObserveLogin(result string)
}

// Pages обработчики HTML-страниц.
type Pages struct {
	log      *slog.Logger
	service  LoginService
	sessions Sessions
	observer LoginObserver
}

// New создаёт Pages. observer может быть nil.
func New(log *slog.Logger, service LoginService, sessions Sessions, observer LoginObserver) *Pages {
	return &Pages{log: log, service: service, sessions: sessions, observer: observer}
}

type area struct {
	title string
	intro string
}

var areas = map[models.Role]area{
	models.RoleStudent:   {title: "My wellness", intro: "Your journal, goals and upcoming counseling sessions."},
	models.RoleAdmin:     {title: "Analytics", intro: "Platform usage and wellbeing trends."},
	models.RoleCounselor: {title: "Counseling sessions", intro: "Your schedule and session requests."},
	models.RoleModerator: {title: "Moderation queue", intro: "Community posts waiting for review."},
}

// Home главная страница.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	identity := middlewarectx.IdentityFromContext(r.Context())
	data := map[string]any{"Title": "Home", "User": identity, "Landing": access.HomePath}
	if identity != nil {
		data["Landing"] = access.LandingPath(identity.Role)
	}
	p.render(w, r, homeTmpl, http.StatusOK, data)
}

// Area страница раздела роли.
func (p *Pages) Area(role models.Role) http.HandlerFunc {
	a := areas[role]
	return func(w http.ResponseWriter, r *http.Request) {
		p.render(w, r, areaTmpl, http.StatusOK, map[string]any{
			"Title": a.title,
			"Intro": a.intro,
			"User":  middlewarectx.IdentityFromContext(r.Context()),
		})
	}
}

// LoginForm форма входа. Пользователь с сессией сразу уходит в свой раздел.
func (p *Pages) LoginForm(w http.ResponseWriter, r *http.Request) {
	if identity := middlewarectx.IdentityFromContext(r.Context()); identity != nil {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next"), identity.Role), http.StatusSeeOther)
		return
	}
	p.render(w, r, loginTmpl, http.StatusOK, map[string]any{
		"Title": "Log in",
		"Error": "",
		"Email": "",
		"Next":  localNext(r.URL.Query().Get("next")),
	})
}

// LoginSubmit обрабатывает форму входа.
func (p *Pages) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pages.login"
	log := p.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Info("failed to parse form", sl.Err(err))
		p.renderLoginError(w, r, http.StatusBadRequest, "", "", "Invalid request")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")

	identity, err := p.service.Login(r.Context(), email, password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials):
		log.Info("invalid credentials", slog.String("email", email))
		p.observe(metrics.ResultInvalid)
		p.renderLoginError(w, r, http.StatusUnauthorized, email, next, "Invalid email or password")
		return
	case errors.Is(err, limiter.ErrTooManyAttempts):
		log.Warn("login throttled", slog.String("email", email))
		p.observe(metrics.ResultThrottled)
		p.renderLoginError(w, r, http.StatusTooManyRequests, email, next, "Too many attempts, try again later")
		return
	default:
		log.Error("login failed", sl.Err(err))
		p.observe(metrics.ResultError)
		p.renderLoginError(w, r, http.StatusInternalServerError, email, next, "Something went wrong")
		return
	}

	if _, err := p.sessions.Issue(w, *identity); err != nil {
		log.Error("failed to issue session", sl.Err(err))
		p.observe(metrics.ResultError)
		p.renderLoginError(w, r, http.StatusInternalServerError, email, next, "Something went wrong")
		return
	}
	p.observe(metrics.ResultSuccess)
	log.Info("login success", slog.String("user_id", identity.UserID))
	http.Redirect(w, r, safeNext(next, identity.Role), http.StatusSeeOther)
}

// Logout удаляет сессию и возвращает на главную.
func (p *Pages) Logout(w http.ResponseWriter, r *http.Request) {
	p.sessions.Revoke(w)
	http.Redirect(w, r, access.HomePath, http.StatusSeeOther)
}

func (p *Pages) renderLoginError(w http.ResponseWriter, r *http.Request, status int, email, next, msg string) {
	p.render(w, r, loginTmpl, status, map[string]any{
		"Title": "Log in",
		"Error": msg,
		"Email": email,
		"Next":  localNext(next),
	})
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data map[string]any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		p.log.Error("template render failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *Pages) observe(result string) {
	if p.observer != nil {
		p.observer.ObserveLogin(result)
	}
}

// safeNext возвращает next, если это локальный путь, иначе стартовую страницу роли.
func safeNext(next string, role models.Role) string {
	if isLocalPath(next) {
		return next
	}
	return access.LandingPath(role)
}

// isLocalPath сообщает, что next указывает на путь этого сайта.
// Браузеры выкидывают из Location табуляцию и переводы строк, а обратную косую черту
// читают как "/", поэтому такие символы отвергаются и в исходной, и в декодированной форме.
func isLocalPath(next string) bool {
	if !strings.HasPrefix(next, "/") || hasUnsafeChars(next) {
		return false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || u.Opaque != "" {
		return false
	}
	return !hasUnsafeChars(u.Path)
}

// localNext возвращает next для скрытого поля формы или пустую строку.
func localNext(next string) string {
	if isLocalPath(next) {
		return next
	}
	return ""
}

func hasUnsafeChars(s string) bool {
	return strings.HasPrefix(s, "//") ||
		strings.ContainsRune(s, '\\') ||
		strings.ContainsFunc(s, unicode.IsControl)
}
