// Package models содержит доменную модель пользователя платформы,
// его роль и нормализованную идентичность, которая попадает в сессионный токен.
package models

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownRole возвращается, если строка роли не входит в закрытый список ролей.
var ErrUnknownRole = errors.New("unknown role")

// Role роль пользователя. Ровно одна роль на пользователя.
type Role string

const (
	// RoleStudent студент, основной пользователь платформы.
	RoleStudent Role = "student"
	// RoleAdmin администратор, имеет доступ к аналитике.
	RoleAdmin Role = "admin"
	// RoleCounselor консультант, ведёт сессии со студентами.
	RoleCounselor Role = "counselor"
	// RoleModerator модератор форумов.
	RoleModerator Role = "moderator"
)

// Roles возвращает все допустимые роли.
func Roles() []Role {
	return []Role{RoleStudent, RoleAdmin, RoleCounselor, RoleModerator}
}

// Valid сообщает, входит ли роль в закрытый список.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleCounselor, RoleModerator:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole приводит строку к канонической роли (без пробелов, в нижнем регистре).
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// NormalizeEmail приводит email к виду, в котором он хранится и ищется.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта, уникальна без учёта регистра
	FirstName    string    // Имя
	LastName     string    // Фамилия
	PasswordHash string    // bcrypt-хэш пароля
	Role         Role      // Роль пользователя
	Institution  *string   // Учебное заведение
	Department   *string   // Факультет
	AcademicYear *string   // Курс
	CreatedAt    time.Time // Дата регистрации
}

// DisplayName собирает отображаемое имя из имени и фамилии.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity нормализованные данные пользователя без хэша пароля.
// Именно эта структура зашивается в сессионный токен.
type Identity struct {
	UserID       string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Role         Role    `json:"role"`
	Institution  *string `json:"institution,omitempty"`
	Department   *string `json:"department,omitempty"`
	AcademicYear *string `json:"academic_year,omitempty"`
}

// Identity возвращает нормализованную идентичность пользователя.
func (u *User) Identity() *Identity {
	return &Identity{
		UserID:       u.UUID,
		Email:        u.Email,
		Name:         u.DisplayName(),
		Role:         u.Role,
		Institution:  u.Institution,
		Department:   u.Department,
		AcademicYear: u.AcademicYear,
	}
}
