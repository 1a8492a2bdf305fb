// Package events публикует события аутентификации в RabbitMQ.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/wellness-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

// Типы событий. Используются как ключи маршрутизации.
const (
	TypeUserRegistered  = "user.registered"
	TypeUserLogin       = "user.login"
	TypeUserLoginFailed = "user.login_failed"
)

// Event событие аутентификации.
type Event struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"`
	UserID string      `json:"user_id,omitempty"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role,omitempty"`
	At     time.Time   `json:"at"`
}

// NewEvent создаёт событие с новым id и текущим временем.
func NewEvent(eventType, email string, identity *models.Identity) Event {
	e := Event{
		ID:    uuid.NewString(),
		Type:  eventType,
		Email: email,
		At:    time.Now().UTC(),
	}
	if identity != nil {
		e.UserID = identity.UserID
		e.Role = identity.Role
	}
	return e
}

// Publisher публикует события.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// AMQPPublisher публикует события в exchange RabbitMQ.
// Канал amqp не потокобезопасен, поэтому публикация сериализуется.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	exchange string
}

// NewAMQPPublisher создаёт AMQPPublisher поверх открытого канала.
func NewAMQPPublisher(ch rabbitmq.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish отправляет событие с ключом маршрутизации e.Type.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	const op = "events.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, e.Type, e.ID, e); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// NopPublisher ничего не публикует. Используется, когда брокер не настроен.
type NopPublisher struct{}

// Publish ничего не делает.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// LoggingPublisher пишет ошибки публикации в лог и не возвращает их:
// сбой брокера не должен ломать вход и регистрацию.
type LoggingPublisher struct {
	next Publisher
	log  *slog.Logger
}

// NewLoggingPublisher оборачивает next.
func NewLoggingPublisher(next Publisher, log *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, log: log}
}

// Publish публикует событие и логирует ошибку.
func (p *LoggingPublisher) Publish(ctx context.Context, e Event) error {
	if err := p.next.Publish(ctx, e); err != nil {
		p.log.Warn("failed to publish auth event",
			slog.String("type", e.Type),
			slog.String("event_id", e.ID),
			sl.Err(err),
		)
	}
	return nil
}
