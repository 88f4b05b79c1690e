package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "HALMARKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "HALMARKET_DB_DSN"
	EnvDBHost = "HALMARKET_DB_HOST"
	EnvDBUser = "HALMARKET_DB_USER"
	EnvDBName = "HALMARKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Commission   CommissionConfig
	Pricing      PricingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Commission.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HALMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"HALMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HALMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HALMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HALMARKET_DB_DSN"`
	Driver string `envconfig:"HALMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HALMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"HALMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HALMARKET_DB_USER"`
	LegacyPassword string `envconfig:"HALMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"HALMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"HALMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HALMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HALMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HALMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HALMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HALMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HALMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"HALMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"HALMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HALMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HALMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HALMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HALMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HALMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HALMARKET_AUTO_MIGRATE" default:"false"`
}

// CommissionConfig carries the marketplace markup rates per customer class.
// Rates are configuration, never hard-coded at the call sites: the pricing
// policy is constructed from this struct and injected.
type CommissionConfig struct {
	B2BRate float64 `envconfig:"HALMARKET_COMMISSION_B2B_RATE" default:"0.30"`
	B2CRate float64 `envconfig:"HALMARKET_COMMISSION_B2C_RATE" default:"0.50"`
}

func (c CommissionConfig) validate() error {
	for name, rate := range map[string]float64{"b2b": c.B2BRate, "b2c": c.B2CRate} {
		if rate < 0 || rate >= 1 {
			return fmt.Errorf("commission rate %s must be in [0,1), got %v", name, rate)
		}
	}
	return nil
}

type PricingConfig struct {
	BatchConcurrency     int           `envconfig:"HALMARKET_PRICING_BATCH_CONCURRENCY" default:"8"`
	OfferStoreTimeout    time.Duration `envconfig:"HALMARKET_PRICING_OFFER_STORE_TIMEOUT" default:"3s"`
	StatsCacheTTL        time.Duration `envconfig:"HALMARKET_PRICING_STATS_CACHE_TTL" default:"2m"`
	SignificantChangePct float64       `envconfig:"HALMARKET_PRICING_SIGNIFICANT_CHANGE_PCT" default:"0.20"`
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
