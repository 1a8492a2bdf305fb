// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// CustomClaims расширяет стандартные claims JWT данными пользователя:
// id, email, отображаемое имя, роль и необязательные поля профиля.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

// ErrInvalidToken возвращается для любого токена, который не прошёл проверку.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken подписывает токен с данными пользователя и возвращает его вместе со временем истечения.
	GenerateToken(identity models.Identity) (string, time.Time, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Email                string  `json:"email"`
	Name                 string  `json:"name"`
	Role                 string  `json:"role"`
	Institution          *string `json:"institution,omitempty"`
	Department           *string `json:"department,omitempty"`
	AcademicYear         *string `json:"academic_year,omitempty"`
	jwt.RegisteredClaims         // Subject хранит id пользователя
}

// Identity возвращает данные пользователя из claims. Роль должна входить в закрытый список.
func (c *CustomClaims) Identity() (*models.Identity, error) {
	role, err := models.ParseRole(c.Role)
	if err != nil {
		return nil, err
	}
	if string(role) != c.Role {
		return nil, models.ErrUnknownRole
	}
	return &models.Identity{
		UserID:       c.Subject,
		Email:        c.Email,
		Name:         c.Name,
		Role:         role,
		Institution:  c.Institution,
		Department:   c.Department,
		AcademicYear: c.AcademicYear,
	}, nil
}

// MakerImpl реализует интерфейс Maker на HS256 с секретным ключом и TTL.
type MakerImpl struct {
	secretKey []byte           // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration    // Время жизни токена.
	issuer    string           // Значение iss.
	now       func() time.Time // Часы, подменяются в тестах.
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// WithIssuer задаёт значение claim iss, которое проверяется при парсинге.
func WithIssuer(issuer string) Option {
	return func(m *MakerImpl) {
		m.issuer = issuer
	}
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) *MakerImpl {
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL возвращает время жизни токена.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}

// GenerateToken создает JWT токен с данными пользователя, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(identity models.Identity) (string, time.Time, error) {
	const op = "jwt.GenerateToken"
	issuedAt := j.now()
	expiresAt := issuedAt.Add(j.tokenTTL)
	claims := CustomClaims{
		Email:        identity.Email,
		Name:         identity.Name,
		Role:         identity.Role.String(),
		Institution:  identity.Institution,
		Department:   identity.Department,
		AcademicYear: identity.AcademicYear,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return signed, expiresAt, nil
}

// ParseToken парсит JWT токен, проверяет алгоритм, подпись и срок действия,
// возвращает CustomClaims, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
