package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string        `env:"PORT,         default=5000"`
	Env         string        `env:"ENV,          default=development"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=24h"`
	RequireAuth bool          `env:"REQUIRE_AUTH, default=false"`
	CORSOrigins []string      `env:"CORS_ORIGINS, default=*"`

	Mongo      MongoConfig
	Redis      RedisConfig
	MQTT       MQTTConfig
	Simulation SimulationConfig
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=smartcare"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=true"`
}

// RedisConfig is optional; an empty Addr disables the vitals cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB,         default=0"`
	CacheTTL time.Duration `env:"VITALS_CACHE_TTL, default=2m"`
}

// MQTTConfig is optional; an empty Broker disables sample publishing.
type MQTTConfig struct {
	Broker      string `env:"MQTT_BROKER"`
	ClientID    string `env:"MQTT_CLIENT_ID,    default=smartcare-api"`
	Username    string `env:"MQTT_USERNAME"`
	Password    string `env:"MQTT_PASSWORD"`
	TopicPrefix string `env:"MQTT_TOPIC_PREFIX, default=smartcare"`
}

type SimulationConfig struct {
	Samples        int           `env:"SIM_SAMPLES,         default=10"`
	SampleInterval time.Duration `env:"SIM_SAMPLE_INTERVAL, default=1s"`
	AutoInterval   time.Duration `env:"SIM_AUTO_INTERVAL,   default=60s"`
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l; tests pass envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Simulation.Samples <= 0 {
		return nil, fmt.Errorf("config: SIM_SAMPLES must be positive, got %d", cfg.Simulation.Samples)
	}
	if !cfg.IsDevelopment() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	return &cfg, nil
}
