package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MARKETPLACE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "MARKETPLACE_APP_ENV"
	EnvPort              = "MARKETPLACE_APP_PORT"
	EnvLogLevel          = "MARKETPLACE_LOG_LEVEL"
	EnvRPCPort           = "MARKETPLACE_RPC_PORT"
	EnvRPCWorkers        = "MARKETPLACE_RPC_WORKERS"
	EnvHTTPMaxInFlight   = "MARKETPLACE_HTTP_MAX_IN_FLIGHT"
	EnvRedisURL          = "MARKETPLACE_REDIS_URL"
	EnvIdempotencyTTL    = "MARKETPLACE_IDEMPOTENCY_TTL"
	EnvEnforceOwnership  = "MARKETPLACE_ENFORCE_ITEM_OWNERSHIP"
	EnvShutdownTimeout   = "MARKETPLACE_HTTP_SHUTDOWN_TIMEOUT"
	EnvRPCMaxConcStreams = "MARKETPLACE_RPC_MAX_CONCURRENT_STREAMS"
)

type Config struct {
	App         AppConfig
	RPC         RPCConfig
	HTTP        HTTPConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Market      MarketConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETPLACE_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETPLACE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MARKETPLACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETPLACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RPCConfig sizes the gRPC listener. Workers bounds the calls executing at
// once across all connections; further calls wait for a free slot.
// MaxConcurrentStreams applies per connection.
type RPCConfig struct {
	Port                 string `envconfig:"MARKETPLACE_RPC_PORT" default:"50051"`
	Workers              int    `envconfig:"MARKETPLACE_RPC_WORKERS" default:"10"`
	MaxConcurrentStreams int    `envconfig:"MARKETPLACE_RPC_MAX_CONCURRENT_STREAMS" default:"100"`
}

type HTTPConfig struct {
	MaxInFlight     int           `envconfig:"MARKETPLACE_HTTP_MAX_IN_FLIGHT" default:"10"`
	Backlog         int           `envconfig:"MARKETPLACE_HTTP_BACKLOG" default:"100"`
	BacklogTimeout  time.Duration `envconfig:"MARKETPLACE_HTTP_BACKLOG_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"MARKETPLACE_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	// MutationLimit caps mutating requests per client IP per MutationWindow.
	// Zero disables the limiter; it also needs redis.
	MutationLimit  int           `envconfig:"MARKETPLACE_HTTP_MUTATION_LIMIT" default:"0"`
	MutationWindow time.Duration `envconfig:"MARKETPLACE_HTTP_MUTATION_WINDOW" default:"1m"`
}

// RedisConfig is optional; when neither URL nor Address is set the service
// runs without idempotent replay of mutating HTTP calls.
type RedisConfig struct {
	URL          string        `envconfig:"MARKETPLACE_REDIS_URL"`
	Address      string        `envconfig:"MARKETPLACE_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETPLACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETPLACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETPLACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETPLACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETPLACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETPLACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETPLACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"MARKETPLACE_IDEMPOTENCY_TTL" default:"24h"`
}

type MarketConfig struct {
	EnforceItemOwnership bool `envconfig:"MARKETPLACE_ENFORCE_ITEM_OWNERSHIP" default:"false"`
}

func (c *Config) validate() error {
	missing := []string{}
	if strings.TrimSpace(c.App.Port) == "" {
		missing = append(missing, EnvPort)
	}
	if strings.TrimSpace(c.RPC.Port) == "" {
		missing = append(missing, EnvRPCPort)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.RPC.Workers <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvRPCWorkers, c.RPC.Workers)
	}
	if c.RPC.MaxConcurrentStreams < c.RPC.Workers {
		return fmt.Errorf("%s (%d) must be at least %s (%d)", EnvRPCMaxConcStreams, c.RPC.MaxConcurrentStreams, EnvRPCWorkers, c.RPC.Workers)
	}
	if c.HTTP.MutationLimit < 0 {
		return fmt.Errorf("MARKETPLACE_HTTP_MUTATION_LIMIT must not be negative, got %d", c.HTTP.MutationLimit)
	}
	if c.HTTP.MaxInFlight <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvHTTPMaxInFlight, c.HTTP.MaxInFlight)
	}
	return nil
}
