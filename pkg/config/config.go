package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cart         CartConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if cfg.Cart.UsesDB() || cfg.DB.DSN != "" || cfg.DB.LegacyHost != "" {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Cart.UsesRedis() && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("either %s or %s is required for the redis cart backend", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOFINDS_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOFINDS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOFINDS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ECOFINDS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ECOFINDS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ECOFINDS_DB_DSN"`
	Driver string `envconfig:"ECOFINDS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECOFINDS_DB_HOST"`
	LegacyPort     int    `envconfig:"ECOFINDS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECOFINDS_DB_USER"`
	LegacyPassword string `envconfig:"ECOFINDS_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECOFINDS_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECOFINDS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOFINDS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOFINDS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOFINDS_REDIS_URL"`
	Address      string        `envconfig:"ECOFINDS_REDIS_ADDR"`
	Password     string        `envconfig:"ECOFINDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOFINDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOFINDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOFINDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOFINDS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"ECOFINDS_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"ECOFINDS_JWT_ISSUER"`
}

// CartConfig drives the cart store persistence and the order summary.
type CartConfig struct {
	Backend      string        `envconfig:"ECOFINDS_CART_BACKEND" default:"redis"`
	ShippingFee  string        `envconfig:"ECOFINDS_CART_SHIPPING_FEE" default:"15.00"`
	SnapshotTTL  time.Duration `envconfig:"ECOFINDS_CART_SNAPSHOT_TTL" default:"720h"`
	WriteTimeout time.Duration `envconfig:"ECOFINDS_CART_WRITE_TIMEOUT" default:"2s"`
	LoadTimeout  time.Duration `envconfig:"ECOFINDS_CART_LOAD_TIMEOUT" default:"2s"`

	// IdleTTL releases carts nobody touched for this long; 0 disables eviction.
	IdleTTL       time.Duration `envconfig:"ECOFINDS_CART_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"ECOFINDS_CART_SWEEP_INTERVAL" default:"1m"`
}

// ShippingFeeAmount returns the parsed per-order shipping fee.
func (c CartConfig) ShippingFeeAmount() decimal.Decimal {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil || fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}

// NormalizedBackend lowercases the configured persistence backend.
func (c CartConfig) NormalizedBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Backend))
	if backend == "" {
		return CartBackendRedis
	}
	return backend
}

func (c CartConfig) UsesRedis() bool {
	return c.NormalizedBackend() == CartBackendRedis
}

func (c CartConfig) UsesDB() bool {
	return c.NormalizedBackend() == CartBackendDB
}

func (c CartConfig) validate() error {
	switch c.NormalizedBackend() {
	case CartBackendRedis, CartBackendDB, CartBackendMemory:
	default:
		return fmt.Errorf("%s must be one of redis, db, memory; got %q", EnvCartBackend, c.Backend)
	}
	if c.IdleTTL < 0 {
		return fmt.Errorf("%s must not be negative", EnvCartIdleTTL)
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvCartShippingFee, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("%s must be non-negative", EnvCartShippingFee)
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ECOFINDS_CORS_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ECOFINDS_AUTO_MIGRATE" default:"false"`
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
