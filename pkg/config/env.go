package config

const EnvPrefix = "ECOFINDS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	CartBackendRedis  = "redis"
	CartBackendDB     = "db"
	CartBackendMemory = "memory"
)

const (
	EnvAppEnv   = "ECOFINDS_APP_ENV"
	EnvPort     = "ECOFINDS_APP_PORT"
	EnvLogLevel = "ECOFINDS_LOG_LEVEL"

	EnvDBDSN    = "ECOFINDS_DB_DSN"
	EnvDBDriver = "ECOFINDS_DB_DRIVER"
	EnvDBHost   = "ECOFINDS_DB_HOST"
	EnvDBUser   = "ECOFINDS_DB_USER"
	EnvDBName   = "ECOFINDS_DB_NAME"

	EnvRedisURL  = "ECOFINDS_REDIS_URL"
	EnvRedisAddr = "ECOFINDS_REDIS_ADDR"

	EnvJWTSecret = "ECOFINDS_JWT_SECRET"
	EnvJWTIssuer = "ECOFINDS_JWT_ISSUER"

	EnvCartBackend     = "ECOFINDS_CART_BACKEND"
	EnvCartShippingFee = "ECOFINDS_CART_SHIPPING_FEE"
	EnvCartSnapshotTTL = "ECOFINDS_CART_SNAPSHOT_TTL"
	EnvCartIdleTTL     = "ECOFINDS_CART_IDLE_TTL"

	EnvCORSOrigins = "ECOFINDS_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
