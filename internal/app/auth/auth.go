// Package auth собирает HTTP-сервис аутентификации: хранилище, миграции, redis,
// брокер событий, сессии и маршруты.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wellness-auth/internal/cache"
	"github.com/magabrotheeeer/wellness-auth/internal/config"
	"github.com/magabrotheeeer/wellness-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/wellness-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/password"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wellness-auth/internal/lib/sl"
	"github.com/magabrotheeeer/wellness-auth/internal/metrics"
	"github.com/magabrotheeeer/wellness-auth/internal/migrations"
	authservices "github.com/magabrotheeeer/wellness-auth/internal/services/auth"
	"github.com/magabrotheeeer/wellness-auth/internal/services/events"
	"github.com/magabrotheeeer/wellness-auth/internal/services/limiter"
	"github.com/magabrotheeeer/wellness-auth/internal/session"
	"github.com/magabrotheeeer/wellness-auth/internal/storage"
)

// rateLimiterIdle время, после которого неактивный IP забывается.
const rateLimiterIdle = 10 * time.Minute

// App HTTP-сервис аутентификации.
type App struct {
	server      *http.Server
	logger      *slog.Logger
	db          *storage.Storage
	cache       *cache.Cache
	amqpConn    *amqp.Connection
	amqpChannel *amqp.Channel
	rateLimiter *middlewarectx.IPRateLimiter
}

// New подключает зависимости и собирает маршрутизатор.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"
	a := &App{logger: logger}

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.db = db
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.cache = cacheRedis

	publisher, err := a.setupEvents(ctx, cfg.RabbitMQ)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	loginLimiter := limiter.NewLoginLimiter(cacheRedis, limiter.Config{
		MaxAttempts: cfg.LoginThrottle.MaxAttempts,
		Window:      cfg.LoginThrottle.Window,
	})
	authService := authservices.NewAuthService(db, password.NewHasher(cfg.BcryptCost), loginLimiter, publisher)

	maker := jwt.NewJWTMaker(cfg.Session.SecretKey, cfg.Session.TokenTTL, jwt.WithIssuer(cfg.Session.Issuer))
	sessions := session.New(maker, session.Config{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TokenTTL,
		Secure:     cfg.SecureCookie(),
	}, logger)

	a.rateLimiter = middlewarectx.NewIPRateLimiter(cfg.HTTPServer.RatePerSec, cfg.HTTPServer.RateBurst)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:         logger,
		Auth:           authService,
		Sessions:       sessions,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		RateLimiter:    a.rateLimiter,
		HealthChecks: map[string]health.Pinger{
			"postgres": health.PingFunc(db.DB.PingContext),
			"redis": health.PingFunc(func(ctx context.Context) error {
				return cacheRedis.Db.Ping(ctx).Err()
			}),
		},
	})

	a.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return a, nil
}

// setupEvents подключается к RabbitMQ. Без URL события не публикуются.
func (a *App) setupEvents(ctx context.Context, cfg config.RabbitMQ) (events.Publisher, error) {
	if cfg.URL == "" {
		a.logger.Info("rabbitmq url is empty, auth events are disabled")
		return events.NopPublisher{}, nil
	}
	conn, err := rabbitmq.Connect(ctx, cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	a.amqpConn = conn
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, nil)
	if err != nil {
		return nil, err
	}
	a.amqpChannel = ch
	a.logger.Info("publishing auth events", slog.String("exchange", cfg.Exchange))
	return events.NewLoggingPublisher(events.NewAMQPPublisher(ch, cfg.Exchange), a.logger), nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(rateLimiterIdle)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			a.close()
			return err
		case <-ticker.C:
			if n := a.rateLimiter.Cleanup(rateLimiterIdle); n > 0 {
				a.logger.Debug("rate limiter cleanup", slog.Int("removed", n))
			}
		case <-ctx.Done():
			timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			a.logger.Info("shutting down HTTP server gracefully")
			err := a.server.Shutdown(timeoutCtx)
			a.close()
			return err
		}
	}
}

func (a *App) close() {
	if a.amqpChannel != nil {
		if err := a.amqpChannel.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close postgres", sl.Err(err))
		}
	}
}
