package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"APP_ENV" envDefault:"dev"` // dev or prod
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"30s"`
	TrustedOrigins  []string      `env:"TRUSTED_ORIGINS" envDefault:"http://localhost:8888" envSeparator:","`
}

type DatabaseConfig struct {
	Driver         string `env:"DB_DRIVER" envDefault:"postgres"` // postgres, sqlite or memory
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           string `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"postgres"`
	Password       string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName         string `env:"DB_NAME" envDefault:"auth"`
	SSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	ChannelBinding string `env:"DB_CHANNEL_BINDING"` // "require" for Neon DB, empty for local
	Path           string `env:"DB_PATH" envDefault:"auth.db"`
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	AutoMigrate    bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Enabled      bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         string        `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	UserCacheTTL time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`
}

type AuthConfig struct {
	TokenFormat    string        `env:"TOKEN_FORMAT" envDefault:"jwt"` // jwt or paseto
	TokenSecret    string        `env:"TOKEN_SECRET"`
	TokenIssuer    string        `env:"TOKEN_ISSUER"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"168h"`

	PasswordHasher  string `env:"PASSWORD_HASHER" envDefault:"argon2id"` // argon2id or bcrypt
	BcryptCost      int    `env:"BCRYPT_COST" envDefault:"12"`
	Argon2Time      uint32 `env:"ARGON2_TIME" envDefault:"3"`
	Argon2MemoryKiB uint32 `env:"ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Threads   uint8  `env:"ARGON2_THREADS" envDefault:"4"`
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return Parse(env.Options{})
}

// Parse builds a Config from the process environment, or from opts.Environment
// when set, and validates it.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Address returns the listen address for the HTTP server
func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}
