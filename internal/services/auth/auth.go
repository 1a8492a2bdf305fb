// Package services содержит проверку учётных данных и регистрацию пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/wellness-auth/internal/lib/password"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
	"github.com/magabrotheeeer/wellness-auth/internal/services/events"
	"github.com/magabrotheeeer/wellness-auth/internal/storage"
)

var (
	// ErrInvalidCredentials неверная пара email/пароль. Неизвестный email и неверный пароль не различаются.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation не заполнены обязательные поля регистрации.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateUser email уже зарегистрирован.
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя. Повтор email даёт storage.ErrUserExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// FindUserByEmail возвращает пользователя по email или storage.ErrUserNotFound.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordHasher хэширует и сравнивает пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Throttler ограничивает попытки входа. Acquire учитывает попытку до проверки пароля,
// Reset сбрасывает счётчик после успешного входа.
type Throttler interface {
	Acquire(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService отвечает за регистрацию и проверку учётных данных.
type AuthService struct {
	users     UserRepository
	hasher    PasswordHasher
	throttler Throttler
	events    events.Publisher
}

// NewAuthService создает новый экземпляр AuthService.
// throttler и publisher могут быть nil.
func NewAuthService(users UserRepository, hasher PasswordHasher, throttler Throttler, publisher events.Publisher) *AuthService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		throttler: throttler,
		events:    publisher,
	}
}

// RegisterInput поля регистрации.
type RegisterInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         string
	Institution  *string
	Department   *string
	AcademicYear *string
}

// Authenticate проверяет пару email/пароль и возвращает нормализованную идентичность.
// Не изменяет состояние.
func (s *AuthService) Authenticate(ctx context.Context, email, rawPassword string) (*models.Identity, error) {
	const op = "services.Authenticate"
	email = models.NormalizeEmail(email)
	if email == "" || rawPassword == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Role.Valid() {
		return nil, fmt.Errorf("%s: user %s: %w", op, user.UUID, models.ErrUnknownRole)
	}
	return user.Identity(), nil
}

// Login выполняет Authenticate с учётом ограничения попыток и публикует событие входа.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.Identity, error) {
	const op = "services.Login"
	email = models.NormalizeEmail(email)

	if s.throttler != nil && email != "" {
		if err := s.throttler.Acquire(ctx, email); err != nil {
			return nil, err
		}
	}

	identity, err := s.Authenticate(ctx, email, rawPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			_ = s.events.Publish(ctx, events.NewEvent(events.TypeUserLoginFailed, email, nil))
		}
		return nil, err
	}

	if s.throttler != nil && email != "" {
		if err := s.throttler.Reset(ctx, email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	_ = s.events.Publish(ctx, events.NewEvent(events.TypeUserLogin, email, identity))
	return identity, nil
}

// RegisterUser проверяет поля, хэширует пароль и сохраняет пользователя.
// Уникальность email гарантирует хранилище.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (*models.Identity, error) {
	const op = "services.RegisterUser"
	email := models.NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	if email == "" || in.Password == "" || firstName == "" || strings.TrimSpace(in.Role) == "" {
		return nil, fmt.Errorf("%s: %w: email, password, first name and role are required", op, ErrValidation)
	}
	if len(in.Password) > password.MaxBytes {
		return nil, fmt.Errorf("%s: %w: password must not exceed %d bytes", op, ErrValidation, password.MaxBytes)
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	// Предварительная проверка экономит bcrypt для очевидных повторов,
	// окончательное решение за уникальным индексом.
	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hashed,
		Role:         role,
		Institution:  in.Institution,
		Department:   in.Department,
		AcademicYear: in.AcademicYear,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	identity := created.Identity()
	_ = s.events.Publish(ctx, events.NewEvent(events.TypeUserRegistered, email, identity))
	return identity, nil
}
