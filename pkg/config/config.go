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
	JWT          JWTConfig
	Roles        RolesConfig
	Market       MarketConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Market.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WEALTH_APP_ENV" required:"true"`
	Port         string `envconfig:"WEALTH_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"WEALTH_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"WEALTH_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"WEALTH_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"WEALTH_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WEALTH_DB_DSN"`
	Driver string `envconfig:"WEALTH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WEALTH_DB_HOST"`
	LegacyPort     int    `envconfig:"WEALTH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WEALTH_DB_USER"`
	LegacyPassword string `envconfig:"WEALTH_DB_PASSWORD"`
	LegacyName     string `envconfig:"WEALTH_DB_NAME"`
	LegacySSLMode  string `envconfig:"WEALTH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WEALTH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WEALTH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WEALTH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WEALTH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"WEALTH_REDIS_URL"`
	Address      string        `envconfig:"WEALTH_REDIS_ADDR"`
	Password     string        `envconfig:"WEALTH_REDIS_PASSWORD"`
	DB           int           `envconfig:"WEALTH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WEALTH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WEALTH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WEALTH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WEALTH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WEALTH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"WEALTH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WEALTH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WEALTH_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RolesConfig lists the emails promoted on first sight.
type RolesConfig struct {
	OwnerEmails []string `envconfig:"WEALTH_OWNER_EMAILS"`
	AdminEmails []string `envconfig:"WEALTH_ADMIN_EMAILS"`
}

type MarketConfig struct {
	PriceTTL        time.Duration `envconfig:"WEALTH_MARKET_PRICE_TTL" default:"60s"`
	RateTTL         time.Duration `envconfig:"WEALTH_MARKET_RATE_TTL" default:"300s"`
	CacheCapacity   int           `envconfig:"WEALTH_MARKET_CACHE_CAPACITY" default:"512"`
	CacheBackend    string        `envconfig:"WEALTH_MARKET_CACHE_BACKEND" default:"memory"`
	RateLimitWindow time.Duration `envconfig:"WEALTH_MARKET_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimit       int           `envconfig:"WEALTH_MARKET_RATE_LIMIT" default:"60"`
}

func (m MarketConfig) validate() error {
	switch strings.ToLower(m.CacheBackend) {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvMarketCacheBackend, CacheBackendMemory, CacheBackendRedis)
	}
	if m.CacheCapacity <= 0 {
		return fmt.Errorf("%s must be positive", EnvMarketCacheCapacity)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WEALTH_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
