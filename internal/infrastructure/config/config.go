package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Identity IdentityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Emulator EmulatorConfig
}

type EmulatorConfig struct {
	Port        string `env:"EMULATOR_PORT,         default=9099"`
	JWTSecret   string `env:"EMULATOR_JWT_SECRET,   default=local-dev-secret"`
	AllowSignup bool   `env:"EMULATOR_ALLOW_SIGNUP, default=true"`
}

type IdentityConfig struct {
	BaseURL string `env:"IDENTITY_BASE_URL, default=http://localhost:9099"`
	APIKey  string `env:"IDENTITY_API_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=musha_views"`
}

type RedisConfig struct {
	Addr        string `env:"REDIS_ADDR, default=localhost:6379"`
	DB          int    `env:"REDIS_DB,   default=0"`
	SnapshotKey string `env:"SESSION_SNAPSHOT_KEY"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
