package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/xenking/order-entry/internal/storage/postgres"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (ORDERENTRY_ prefix), an optional .env file, or YAML
// config files.
type Config struct {
	Addr        string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string        `usage:"PostgreSQL connection URL (ORDERENTRY_DATABASE_URL or DATABASE_URL)"`
	AutoMigrate bool          `default:"true" usage:"Apply pending schema migrations on startup"`
	Seed        bool          `default:"false" usage:"Load demo data into an empty database on startup"`
	SessionTTL  time.Duration `default:"30m" usage:"Idle time after which an open editing session is discarded"`
	Database    DatabaseConfig
	Graceful    GracefulConfig
}

// DatabaseConfig controls the connection pool. One connection serves the
// whole process by default.
type DatabaseConfig struct {
	MaxConns       int32         `default:"1" usage:"Maximum open database connections"`
	ConnectTimeout time.Duration `default:"10s" usage:"Timeout for establishing a connection"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration"`
}

// Pool returns the connection pool settings.
func (c *Config) Pool() postgres.PoolConfig {
	return postgres.PoolConfig{
		URL:            c.DatabaseURL,
		MaxConns:       c.Database.MaxConns,
		ConnectTimeout: c.Database.ConnectTimeout,
	}
}

// LoadConfig loads configuration from .env, environment variables and YAML
// config files, then applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "ORDERENTRY",
		Files:     []string{"config.yaml", "/etc/orderentry/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ORDERENTRY_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Database.MaxConns < 1 {
		return nil, errors.Errorf("database max conns must be positive, got %d", cfg.Database.MaxConns)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL and PORT
// variables onto the configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
