// Package limiter ограничивает количество попыток входа на один email.
//
// Каждая попытка атомарно увеличивает счётчик в redis до сравнения пароля,
// поэтому параллельные запросы не проходят сверх MaxAttempts. Счётчик живёт
// в течение окна Window с момента первой попытки и сбрасывается после успешного входа.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTooManyAttempts превышено число попыток входа в окне.
var ErrTooManyAttempts = errors.New("too many login attempts")

// Counter счётчик с временем жизни.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Invalidate(ctx context.Context, key string) error
}

// Config параметры ограничения.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginLimiter ограничитель попыток входа.
type LoginLimiter struct {
	counter Counter
	cfg     Config
}

// NewLoginLimiter создаёт LoginLimiter. MaxAttempts <= 0 отключает ограничение.
func NewLoginLimiter(counter Counter, cfg Config) *LoginLimiter {
	return &LoginLimiter{counter: counter, cfg: cfg}
}

// Acquire учитывает попытку входа и возвращает ErrTooManyAttempts,
// если она превышает лимит окна.
func (l *LoginLimiter) Acquire(ctx context.Context, email string) error {
	const op = "limiter.Acquire"
	if l.cfg.MaxAttempts <= 0 {
		return nil
	}
	n, err := l.counter.Incr(ctx, key(email), l.cfg.Window)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > int64(l.cfg.MaxAttempts) {
		return ErrTooManyAttempts
	}
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	const op = "limiter.Reset"
	if l.cfg.MaxAttempts <= 0 {
		return nil
	}
	if err := l.counter.Invalidate(ctx, key(email)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func key(email string) string {
	return "login_attempts:" + email
}
