package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "partstracker"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Auth          AuthConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PARTSTRACKER_APP_ENV" default:"development"`
	Port         string `envconfig:"PARTSTRACKER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PARTSTRACKER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARTSTRACKER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PARTSTRACKER_DB_DSN"`

	Host     string `envconfig:"PARTSTRACKER_DB_HOST" default:"127.0.0.1"`
	Port     int    `envconfig:"PARTSTRACKER_DB_PORT" default:"5432"`
	User     string `envconfig:"PARTSTRACKER_DB_USER" default:"postgres"`
	Password string `envconfig:"PARTSTRACKER_DB_PASSWORD"`
	Name     string `envconfig:"PARTSTRACKER_DB_NAME" default:"car_inventory"`
	SSLMode  string `envconfig:"PARTSTRACKER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARTSTRACKER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARTSTRACKER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARTSTRACKER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARTSTRACKER_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"PARTSTRACKER_DB_AUTO_MIGRATE" default:"false"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.Name == "" {
		return fmt.Errorf("either PARTSTRACKER_DB_DSN or host/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PARTSTRACKER_REDIS_URL"`
	Address      string        `envconfig:"PARTSTRACKER_REDIS_ADDR"`
	Password     string        `envconfig:"PARTSTRACKER_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARTSTRACKER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARTSTRACKER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARTSTRACKER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARTSTRACKER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARTSTRACKER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARTSTRACKER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type AuthConfig struct {
	TokenTTL      time.Duration `envconfig:"PARTSTRACKER_AUTH_TOKEN_TTL" default:"48h"`
	TokenBytes    int           `envconfig:"PARTSTRACKER_AUTH_TOKEN_BYTES" default:"32"`
	BcryptCost    int           `envconfig:"PARTSTRACKER_AUTH_BCRYPT_COST" default:"10"`
	SeedAdminUser string        `envconfig:"PARTSTRACKER_AUTH_SEED_ADMIN_USER"`
	SeedAdminPass string        `envconfig:"PARTSTRACKER_AUTH_SEED_ADMIN_PASS"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PARTSTRACKER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"PARTSTRACKER_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PARTSTRACKER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PARTSTRACKER_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
