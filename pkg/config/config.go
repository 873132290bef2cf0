package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Catalog  CatalogConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPSTATE_APP_ENV" default:"dev"`
	Port         string `envconfig:"SHOPSTATE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPSTATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPSTATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig locates the embedded key-value store file.
type StoreConfig struct {
	Path string `envconfig:"SHOPSTATE_STORE_PATH" default:"shopstate.db"`
}

// CatalogConfig controls the remote catalog clients and the retry budget.
type CatalogConfig struct {
	FakeStoreBaseURL string        `envconfig:"SHOPSTATE_CATALOG_FAKESTORE_URL" default:"https://fakestoreapi.com"`
	DummyJSONBaseURL string        `envconfig:"SHOPSTATE_CATALOG_DUMMYJSON_URL" default:"https://dummyjson.com"`
	DummyJSONLimit   int           `envconfig:"SHOPSTATE_CATALOG_DUMMYJSON_LIMIT" default:"100"`
	RequestTimeout   time.Duration `envconfig:"SHOPSTATE_CATALOG_REQUEST_TIMEOUT" default:"10s"`
	MaxRetries       int           `envconfig:"SHOPSTATE_CATALOG_MAX_RETRIES" default:"3"`
	InitialDelay     time.Duration `envconfig:"SHOPSTATE_CATALOG_INITIAL_DELAY" default:"1s"`
	CacheTTL         time.Duration `envconfig:"SHOPSTATE_CATALOG_CACHE_TTL" default:"5m"`
}

// RedisConfig is optional; the catalog cache is skipped when URL and
// Address are both empty.
type RedisConfig struct {
	URL          string        `envconfig:"SHOPSTATE_REDIS_URL"`
	Address      string        `envconfig:"SHOPSTATE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPSTATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPSTATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPSTATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPSTATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPSTATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPSTATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPSTATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPSTATE_JWT_SECRET" default:"shopstate-local-secret"`
	Issuer            string `envconfig:"SHOPSTATE_JWT_ISSUER" default:"shopstate"`
	ExpirationMinutes int    `envconfig:"SHOPSTATE_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the session token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPSTATE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPSTATE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPSTATE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPSTATE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPSTATE_ARGON_KEY_LEN" default:"32"`
}
