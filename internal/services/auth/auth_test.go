package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/wellness-auth/internal/lib/password"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
	services "github.com/magabrotheeeer/wellness-auth/internal/services/auth"
	"github.com/magabrotheeeer/wellness-auth/internal/services/events"
	"github.com/magabrotheeeer/wellness-auth/internal/services/limiter"
	"github.com/magabrotheeeer/wellness-auth/internal/storage"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для Throttler
type ThrottlerMock struct {
	mock.Mock
}

func (m *ThrottlerMock) Acquire(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *ThrottlerMock) Reset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// Мок для events.Publisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, e events.Event) error {
	return m.Called(ctx, e).Error(0)
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == eventType })
}

var hasher = password.NewHasher(bcrypt.MinCost)

func storedUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	hash, err := hasher.Hash("Secret123!")
	require.NoError(t, err)
	inst := "State University"
	return &models.User{
		UUID:         "uid-1",
		Email:        "a@b.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: hash,
		Role:         role,
		Institution:  &inst,
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(t *testing.T, r *UserRepoMock)
		wantErr    error
	}{
		{
			name:     "success",
			email:    "a@b.com",
			password: "Secret123!",
			setupMocks: func(t *testing.T, r *UserRepoMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.RoleStudent), nil).Once()
			},
		},
		{
			name:     "email normalized before lookup",
			email:    "  A@B.com ",
			password: "Secret123!",
			setupMocks: func(t *testing.T, r *UserRepoMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.RoleStudent), nil).Once()
			},
		},
		{
			name:       "empty email",
			email:      "",
			password:   "Secret123!",
			setupMocks: func(*testing.T, *UserRepoMock) {},
			wantErr:    services.ErrInvalidCredentials,
		},
		{
			name:       "empty password",
			email:      "a@b.com",
			password:   "",
			setupMocks: func(*testing.T, *UserRepoMock) {},
			wantErr:    services.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@b.com",
			password: "Secret123!",
			setupMocks: func(_ *testing.T, r *UserRepoMock) {
				r.On("FindUserByEmail", mock.Anything, "nobody@b.com").Return(nil, storage.ErrUserNotFound).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@b.com",
			password: "wrong",
			setupMocks: func(t *testing.T, r *UserRepoMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.RoleStudent), nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "unknown role in store",
			email:    "a@b.com",
			password: "Secret123!",
			setupMocks: func(t *testing.T, r *UserRepoMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.Role("root")), nil).Once()
			},
			wantErr: models.ErrUnknownRole,
		},
		{
			name:     "repository error",
			email:    "a@b.com",
			password: "Secret123!",
			setupMocks: func(_ *testing.T, r *UserRepoMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(nil, errors.New("db error")).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(t, repo)
			svc := services.NewAuthService(repo, hasher, nil, nil)

			identity, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
				assert.Equal(t, "uid-1", identity.UserID)
				assert.Equal(t, "a@b.com", identity.Email)
				assert.Equal(t, "Ada Lovelace", identity.Name)
				assert.Equal(t, models.RoleStudent, identity.Role)
				require.NotNil(t, identity.Institution)
				assert.Equal(t, "State University", *identity.Institution)
			case errors.Is(tt.wantErr, services.ErrInvalidCredentials) || errors.Is(tt.wantErr, models.ErrUnknownRole):
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, identity)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate_IndistinguishableFailures(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("FindUserByEmail", mock.Anything, "nobody@b.com").Return(nil, storage.ErrUserNotFound)
	repo.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.RoleAdmin), nil)
	svc := services.NewAuthService(repo, hasher, nil, nil)

	_, errUnknown := svc.Authenticate(context.Background(), "nobody@b.com", "Secret123!")
	_, errWrong := svc.Authenticate(context.Background(), "a@b.com", "nope")

	assert.Equal(t, errUnknown, errWrong)
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		setupMocks func(t *testing.T, r *UserRepoMock, th *ThrottlerMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name:     "success resets counter",
			password: "Secret123!",
			setupMocks: func(t *testing.T, r *UserRepoMock, th *ThrottlerMock, p *PublisherMock) {
				th.On("Acquire", mock.Anything, "a@b.com").Return(nil).Once()
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.RoleCounselor), nil).Once()
				th.On("Reset", mock.Anything, "a@b.com").Return(nil).Once()
				p.On("Publish", mock.Anything, eventOfType(events.TypeUserLogin)).Return(nil).Once()
			},
		},
		{
			name:     "wrong password keeps attempt counted",
			password: "wrong",
			setupMocks: func(t *testing.T, r *UserRepoMock, th *ThrottlerMock, p *PublisherMock) {
				th.On("Acquire", mock.Anything, "a@b.com").Return(nil).Once()
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.RoleCounselor), nil).Once()
				p.On("Publish", mock.Anything, eventOfType(events.TypeUserLoginFailed)).Return(nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "throttled before lookup",
			password: "Secret123!",
			setupMocks: func(_ *testing.T, _ *UserRepoMock, th *ThrottlerMock, _ *PublisherMock) {
				th.On("Acquire", mock.Anything, "a@b.com").Return(limiter.ErrTooManyAttempts).Once()
			},
			wantErr: limiter.ErrTooManyAttempts,
		},
		{
			name:     "publisher failure does not fail login",
			password: "Secret123!",
			setupMocks: func(t *testing.T, r *UserRepoMock, th *ThrottlerMock, p *PublisherMock) {
				th.On("Acquire", mock.Anything, "a@b.com").Return(nil).Once()
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(storedUser(t, models.RoleCounselor), nil).Once()
				th.On("Reset", mock.Anything, "a@b.com").Return(nil).Once()
				p.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			th := new(ThrottlerMock)
			pub := new(PublisherMock)
			tt.setupMocks(t, repo, th, pub)
			svc := services.NewAuthService(repo, hasher, th, pub)

			identity, err := svc.Login(context.Background(), "A@b.com", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, identity)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.RoleCounselor, identity.Role)
			}
			repo.AssertExpectations(t)
			th.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestAuthService_RegisterUser(t *testing.T) {
	valid := services.RegisterInput{
		Email:     "A@B.com",
		Password:  "Secret123!",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "Student",
	}

	tests := []struct {
		name       string
		input      services.RegisterInput
		setupMocks func(r *UserRepoMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name:  "success",
			input: valid,
			setupMocks: func(r *UserRepoMock, p *PublisherMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(nil, storage.ErrUserNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "a@b.com" &&
						u.Role == models.RoleStudent &&
						u.PasswordHash != "" &&
						u.PasswordHash != "Secret123!" &&
						hasher.Compare(u.PasswordHash, "Secret123!") == nil
				})).Return(&models.User{UUID: "uid-9", Email: "a@b.com", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleStudent}, nil).Once()
				p.On("Publish", mock.Anything, eventOfType(events.TypeUserRegistered)).Return(nil).Once()
			},
		},
		{
			name:       "missing email",
			input:      services.RegisterInput{Password: "x", FirstName: "Ada", Role: "student"},
			setupMocks: func(*UserRepoMock, *PublisherMock) {},
			wantErr:    services.ErrValidation,
		},
		{
			name:       "missing password",
			input:      services.RegisterInput{Email: "a@b.com", FirstName: "Ada", Role: "student"},
			setupMocks: func(*UserRepoMock, *PublisherMock) {},
			wantErr:    services.ErrValidation,
		},
		{
			name:       "missing first name",
			input:      services.RegisterInput{Email: "a@b.com", Password: "x", FirstName: "  ", Role: "student"},
			setupMocks: func(*UserRepoMock, *PublisherMock) {},
			wantErr:    services.ErrValidation,
		},
		{
			name:       "missing role",
			input:      services.RegisterInput{Email: "a@b.com", Password: "x", FirstName: "Ada"},
			setupMocks: func(*UserRepoMock, *PublisherMock) {},
			wantErr:    services.ErrValidation,
		},
		{
			name:       "multibyte password over bcrypt limit",
			input:      services.RegisterInput{Email: "a@b.com", Password: strings.Repeat("é", 40), FirstName: "Ada", Role: "student"},
			setupMocks: func(*UserRepoMock, *PublisherMock) {},
			wantErr:    services.ErrValidation,
		},
		{
			name:       "unknown role",
			input:      services.RegisterInput{Email: "a@b.com", Password: "x", FirstName: "Ada", Role: "superuser"},
			setupMocks: func(*UserRepoMock, *PublisherMock) {},
			wantErr:    services.ErrValidation,
		},
		{
			name:  "email already present",
			input: valid,
			setupMocks: func(r *UserRepoMock, _ *PublisherMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(&models.User{UUID: "uid-1"}, nil).Once()
			},
			wantErr: services.ErrDuplicateUser,
		},
		{
			name:  "unique violation on insert",
			input: valid,
			setupMocks: func(r *UserRepoMock, _ *PublisherMock) {
				r.On("FindUserByEmail", mock.Anything, "a@b.com").Return(nil, storage.ErrUserNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).Return(nil, storage.ErrUserExists).Once()
			},
			wantErr: services.ErrDuplicateUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, pub)
			svc := services.NewAuthService(repo, hasher, nil, pub)

			identity, err := svc.RegisterUser(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, identity)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-9", identity.UserID)
				assert.Equal(t, "Ada Lovelace", identity.Name)
				assert.Equal(t, models.RoleStudent, identity.Role)
			}
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}
