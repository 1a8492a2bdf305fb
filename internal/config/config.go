// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// EnvLocal локальный запуск, cookie без флага Secure.
	EnvLocal = "local"
	// EnvDev тестовый стенд.
	EnvDev = "dev"
	// EnvProd продакшен.
	EnvProd = "prod"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string          `yaml:"env" env:"APP_ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	BcryptCost              int             `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	Session                 Session         `yaml:"session"`
	LoginThrottle           LoginThrottle   `yaml:"login_throttle"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	RatePerSec  float64       `yaml:"rate_per_sec" env:"HTTP_RATE_PER_SEC" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env:"HTTP_RATE_BURST" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT"`
}

// Session настройки сессионного токена и cookie
type Session struct {
	SecretKey  string        `yaml:"secret_key" env:"SESSION_SECRET_KEY" env-required:"true"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"SESSION_TOKEN_TTL" env-default:"24h"`
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"wellness_session"`
	Issuer     string        `yaml:"issuer" env:"SESSION_ISSUER" env-default:"wellness"`
	Secure     string        `yaml:"secure" env:"SESSION_SECURE" env-default:"auto"` // auto, true или false
}

// LoginThrottle ограничение неудачных попыток входа на один email
type LoginThrottle struct {
	MaxAttempts int           `yaml:"max_attempts" env:"LOGIN_MAX_ATTEMPTS" env-default:"5"`
	Window      time.Duration `yaml:"window" env:"LOGIN_WINDOW" env-default:"15m"`
}

// RabbitMQ подключение для публикации событий аутентификации. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"auth.events"`
	Retries    int           `yaml:"retries" env:"RABBITMQ_RETRIES" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// MustLoad функция для загрузки конфига из файла CONFIG_PATH, значения можно переопределить переменными окружения
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг по указанному пути.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	return &cfg, nil
}

// SecureCookie возвращает значение флага Secure для сессионной cookie.
// В режиме auto флаг выключен только для локального запуска.
func (c *Config) SecureCookie() bool {
	switch c.Session.Secure {
	case "true":
		return true
	case "false":
		return false
	default:
		return c.Env != EnvLocal
	}
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Session:\n"+
			"  SecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"  CookieName: %s\n"+
			"  Secure: %t\n"+
			"LoginThrottle:\n"+
			"  MaxAttempts: %d\n"+
			"  Window: %s\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.RedisConnection.AddressRedis,
		c.RedisConnection.User,
		c.RedisConnection.DB,
		c.HTTPServer.AddressHTTP,
		c.HTTPServer.TimeoutHTTP,
		c.HTTPServer.IdleTimeout,
		mask(c.Session.SecretKey),
		c.Session.TokenTTL,
		c.Session.CookieName,
		c.SecureCookie(),
		c.LoginThrottle.MaxAttempts,
		c.LoginThrottle.Window,
		c.RabbitMQ.URL != "",
		c.RabbitMQ.Exchange,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
