// Package middlewarectx содержит HTTP middleware сессии и проверки доступа.
//
// SessionMiddleware один раз на запрос читает сессионную cookie и кладёт
// идентичность пользователя в контекст. RequireAPI и RequirePage проверяют
// доступ до того, как защищённый обработчик что-либо запишет в ответ.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey ключ идентичности пользователя в контексте.
const IdentityKey Key = "identity"

// WithIdentity кладёт identity в контекст.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFromContext возвращает идентичность пользователя или nil, если сессии нет.
func IdentityFromContext(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(IdentityKey).(*models.Identity)
	return identity
}
