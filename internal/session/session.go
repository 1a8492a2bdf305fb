// Package session выдаёт, проверяет и отзывает сессию пользователя.
//
// Сессия это подписанный JWT в cookie с флагами HttpOnly и SameSite=Lax.
// Сервер не хранит состояние сессий: действительность токена определяется
// только подписью и сроком действия.
package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/wellness-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

// DefaultCookieName имя cookie по умолчанию.
const DefaultCookieName = "wellness_session"

// Config параметры cookie сессии.
type Config struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Service выдаёт и проверяет сессионные cookie. Безопасен для конкурентного использования.
type Service struct {
	maker jwt.Maker
	cfg   Config
	log   *slog.Logger
}

// New создаёт Service.
func New(maker jwt.Maker, cfg Config, log *slog.Logger) *Service {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &Service{maker: maker, cfg: cfg, log: log}
}

// CookieName возвращает имя сессионной cookie.
func (s *Service) CookieName() string {
	return s.cfg.CookieName
}

// Issue подписывает токен для identity и устанавливает cookie.
func (s *Service) Issue(w http.ResponseWriter, identity models.Identity) (string, error) {
	token, expiresAt, err := s.maker.GenerateToken(identity)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Resolve возвращает identity из cookie запроса.
// Отсутствующая, повреждённая, просроченная cookie или неизвестная роль дают (nil, false).
func (s *Service) Resolve(r *http.Request) (*models.Identity, bool) {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	claims, err := s.maker.ParseToken(c.Value)
	if err != nil {
		s.debug("session token rejected", err)
		return nil, false
	}
	identity, err := claims.Identity()
	if err != nil {
		s.debug("session token carries unknown role", err)
		return nil, false
	}
	return identity, true
}

// Revoke удаляет cookie сессии. Повторный вызов безопасен.
func (s *Service) Revoke(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) debug(msg string, err error) {
	if s.log != nil {
		s.log.Debug(msg, sl.Err(err))
	}
}
