package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreMongo = "mongo"
)

type Config struct {
	// APIURL is the backend base address. It has no default on purpose; the
	// gateway refuses to start without it.
	APIURL      string        `env:"FEEDBACK_API_URL"`
	HTTPTimeout time.Duration `env:"FEEDBACK_HTTP_TIMEOUT, default=0s"`
	LogLevel    string        `env:"LOG_LEVEL,             default=info"`
	LogPretty   bool          `env:"LOG_PRETTY,            default=false"`

	Token  TokenConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Portal PortalConfig
	Poll   PollConfig
	Dev    DevBackendConfig
}

type TokenConfig struct {
	Store string `env:"TOKEN_STORE, default=file"`
	// File is the session file for the file store. Empty means
	// ~/.feedbackctl/session.json.
	File string `env:"TOKEN_FILE"`
	// Key names the redis key or mongo document holding the token.
	Key string `env:"TOKEN_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=feedback_client"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type PortalConfig struct {
	Addr string `env:"PORTAL_ADDR, default=127.0.0.1:3000"`
}

type PollConfig struct {
	Notifications time.Duration `env:"NOTIFICATION_POLL_INTERVAL, default=30s"`
	Requests      time.Duration `env:"REQUEST_POLL_INTERVAL,      default=60s"`
}

type DevBackendConfig struct {
	Addr      string `env:"DEV_BACKEND_ADDR, default=127.0.0.1:8000"`
	JWTSecret string `env:"DEV_JWT_SECRET,   default=dev-secret-change-me"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Token.Store {
	case StoreFile, StoreRedis, StoreMongo:
	default:
		return nil, fmt.Errorf("config: TOKEN_STORE must be one of file, redis, mongo; got %q", cfg.Token.Store)
	}
	if cfg.HTTPTimeout < 0 {
		return nil, fmt.Errorf("config: FEEDBACK_HTTP_TIMEOUT must not be negative")
	}
	return &cfg, nil
}

// MustLoad is Load for program entry points; it panics on error.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
