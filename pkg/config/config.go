package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Drafts       DraftsConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Catalog      CatalogConfig
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
	Env          string `envconfig:"KITLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"KITLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KITLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KITLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KITLINE_DB_DSN"`
	Driver string `envconfig:"KITLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KITLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"KITLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KITLINE_DB_USER"`
	LegacyPassword string `envconfig:"KITLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"KITLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"KITLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KITLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KITLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KITLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KITLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KITLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KITLINE_REDIS_ADDR"`
	Password     string        `envconfig:"KITLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"KITLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KITLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KITLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KITLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KITLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KITLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// DraftsConfig controls the composer-to-confirmation handoff slot.
type DraftsConfig struct {
	TTL time.Duration `envconfig:"KITLINE_DRAFT_TTL" default:"24h"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"KITLINE_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"KITLINE_RATE_LIMIT_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KITLINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KITLINE_AUTO_MIGRATE" default:"false"`
}

// CatalogConfig holds catalog presentation defaults.
type CatalogConfig struct {
	Currency string `envconfig:"KITLINE_CATALOG_CURRENCY" default:"DKK"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
