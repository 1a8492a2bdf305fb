// Package access решает, может ли запрос с данной идентичностью получить доступ к ресурсу.
//
// Authorize чистая функция: без ввода-вывода и побочных эффектов. Отказ это обычный
// результат, а не ошибка; что с ним делать (редирект, 401 или 403) решает вызывающий.
package access

import (
	"fmt"

	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

// Kind вид требования.
type Kind int

const (
	// KindPublic доступно всем.
	KindPublic Kind = iota
	// KindAnyAuthenticated доступно любому вошедшему пользователю.
	KindAnyAuthenticated
	// KindRoleExactly доступно только пользователю с заданной ролью.
	KindRoleExactly
)

// Requirement требование доступа к ресурсу.
type Requirement struct {
	Kind Kind
	Role models.Role
}

// Public ресурс без ограничений.
func Public() Requirement {
	return Requirement{Kind: KindPublic}
}

// AnyAuthenticated ресурс для любого вошедшего пользователя.
func AnyAuthenticated() Requirement {
	return Requirement{Kind: KindAnyAuthenticated}
}

// RoleExactly ресурс для пользователя с ролью role.
func RoleExactly(role models.Role) Requirement {
	return Requirement{Kind: KindRoleExactly, Role: role}
}

func (r Requirement) String() string {
	switch r.Kind {
	case KindPublic:
		return "public"
	case KindAnyAuthenticated:
		return "authenticated"
	case KindRoleExactly:
		return "role:" + r.Role.String()
	}
	return fmt.Sprintf("kind(%d)", int(r.Kind))
}

// Reason причина отказа.
type Reason int

const (
	// ReasonNone доступ разрешён.
	ReasonNone Reason = iota
	// ReasonUnauthenticated нет действительной сессии.
	ReasonUnauthenticated
	// ReasonWrongRole сессия есть, но роль не подходит.
	ReasonWrongRole
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonWrongRole:
		return "wrong_role"
	}
	return "unknown"
}

// Decision результат проверки доступа.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true, Reason: ReasonNone}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize решает, допускается ли identity (nil, если сессии нет) к ресурсу с требованием req.
func Authorize(identity *models.Identity, req Requirement) Decision {
	switch req.Kind {
	case KindPublic:
		return allow
	case KindAnyAuthenticated:
		if identity == nil {
			return deny(ReasonUnauthenticated)
		}
		return allow
	case KindRoleExactly:
		if identity == nil {
			return deny(ReasonUnauthenticated)
		}
		if identity.Role != req.Role {
			return deny(ReasonWrongRole)
		}
		return allow
	}
	// Неизвестный вид требования закрывает доступ.
	return deny(ReasonWrongRole)
}

// AuthorizeStrict как Authorize, но сначала проверяет инварианты: роль identity
// и роль требования должны входить в закрытый список. Нарушение возвращается
// ошибкой и означает сбой выше по цепочке, а не отказ пользователю.
func AuthorizeStrict(identity *models.Identity, req Requirement) (Decision, error) {
	if identity != nil && !identity.Role.Valid() {
		return deny(ReasonUnauthenticated), fmt.Errorf("access: identity %s: %w %q", identity.UserID, models.ErrUnknownRole, identity.Role)
	}
	if req.Kind == KindRoleExactly && !req.Role.Valid() {
		return deny(ReasonWrongRole), fmt.Errorf("access: requirement: %w %q", models.ErrUnknownRole, req.Role)
	}
	if req.Kind < KindPublic || req.Kind > KindRoleExactly {
		return deny(ReasonWrongRole), fmt.Errorf("access: unknown requirement kind %d", int(req.Kind))
	}
	return Authorize(identity, req), nil
}

// HomePath главная страница.
const HomePath = "/"

// LoginPath страница входа.
const LoginPath = "/login"

// LandingPath стартовая страница для роли. Для неизвестной роли главная.
func LandingPath(role models.Role) string {
	switch role {
	case models.RoleStudent:
		return "/student"
	case models.RoleAdmin:
		return "/admin"
	case models.RoleCounselor:
		return "/counselor"
	case models.RoleModerator:
		return "/moderator"
	}
	return HomePath
}
