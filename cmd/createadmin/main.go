// Package main создаёт пользователя с заданной ролью, по умолчанию администратора.
//
// Пароль хэшируется тем же кодом, что и при обычной регистрации,
// поэтому хэши не попадают в SQL-миграции.
//
//	CONFIG_PATH=./config/local.yaml go run ./cmd/createadmin -email admin@uni.edu -password 'S3cret!pass' -first Ada
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/wellness-auth/internal/config"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/password"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
	"github.com/magabrotheeeer/wellness-auth/internal/migrations"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
	authservices "github.com/magabrotheeeer/wellness-auth/internal/services/auth"
	"github.com/magabrotheeeer/wellness-auth/internal/storage"
)

func main() {
	var in authservices.RegisterInput
	flag.StringVar(&in.Email, "email", "", "email пользователя")
	flag.StringVar(&in.Password, "password", "", "пароль пользователя")
	flag.StringVar(&in.FirstName, "first", "", "имя")
	flag.StringVar(&in.LastName, "last", "", "фамилия")
	flag.StringVar(&in.Role, "role", models.RoleAdmin.String(), "роль: student, admin, counselor, moderator")
	flag.Parse()

	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, cfg, in); err != nil {
		logger.Error("failed to create user", sl.Err(err))
		if errors.Is(err, authservices.ErrValidation) {
			flag.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
	logger.Info("user created", slog.String("email", models.NormalizeEmail(in.Email)), slog.String("role", in.Role))
}

func run(ctx context.Context, cfg *config.Config, in authservices.RegisterInput) error {
	const op = "createadmin.run"
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	svc := authservices.NewAuthService(db, password.NewHasher(cfg.BcryptCost), nil, nil)
	if _, err := svc.RegisterUser(ctx, in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
