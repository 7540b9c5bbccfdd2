package config

// EnvPrefix is passed to envconfig; every field carries an explicit tag.
const EnvPrefix = "WEALTH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

const (
	EnvAppEnv   = "WEALTH_APP_ENV"
	EnvPort     = "WEALTH_APP_PORT"
	EnvLogLevel = "WEALTH_LOG_LEVEL"

	EnvDBDSN    = "WEALTH_DB_DSN"
	EnvDBDriver = "WEALTH_DB_DRIVER"
	EnvDBHost   = "WEALTH_DB_HOST"
	EnvDBUser   = "WEALTH_DB_USER"
	EnvDBName   = "WEALTH_DB_NAME"

	EnvRedisURL = "WEALTH_REDIS_URL"

	EnvJWTSecret = "WEALTH_JWT_SECRET"
	EnvJWTIssuer = "WEALTH_JWT_ISSUER"

	EnvOwnerEmails = "WEALTH_OWNER_EMAILS"
	EnvAdminEmails = "WEALTH_ADMIN_EMAILS"

	EnvMarketPriceTTL      = "WEALTH_MARKET_PRICE_TTL"
	EnvMarketCacheBackend  = "WEALTH_MARKET_CACHE_BACKEND"
	EnvMarketCacheCapacity = "WEALTH_MARKET_CACHE_CAPACITY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
