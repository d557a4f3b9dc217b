// Package config loads process configuration from environment variables.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the API server configuration.
type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	// AllowedOrigins restricts CORS and websocket origins; empty allows any.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	GoogleMapsAPIKey string        `env:"GOOGLE_MAPS_API_KEY"`
	PushWorkers      int           `env:"PUSH_WORKERS,      default=4"`
	MetricsCacheTTL  time.Duration `env:"METRICS_CACHE_TTL, default=1m"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,  default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=shipment_tracker"`
}

type RedisConfig struct {
	URL      string `env:"REDIS_URL"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether logs should be emitted as JSON.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ClientConfig configures the tracker client.
type ClientConfig struct {
	APIURL   string `env:"API_URL, default=http://localhost:8080/api"`
	WSURL    string `env:"WS_URL,  default=ws://localhost:8080/ws"`
	Token    string `env:"TOKEN"`
	UserID   string `env:"USER_ID"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// MapsAPIKey lets the client call the directions provider directly;
	// when empty, directions are requested through the API.
	MapsAPIKey string `env:"MAPS_API_KEY"`

	// DashboardFallback serves the placeholder dataset when metrics cannot
	// be fetched.
	DashboardFallback bool          `env:"DASHBOARD_FALLBACK, default=true"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT,    default=10s"`
}

// Load reads the server configuration from lookuper
// (envconfig.OsLookuper() in production).
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadClient reads the client configuration from lookuper.
func LoadClient(ctx context.Context, lookuper envconfig.Lookuper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
