package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string `env:"JWT_SECRET"`
	// BaseURL is used to build links in outbound emails.
	BaseURL string `env:"BASE_URL, default=http://localhost:8080"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Provider ProviderConfig
	SMTP     SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// ProviderConfig holds identity-provider credentials. WebhookSecret is
// required: the webhook endpoint refuses to start without it.
type ProviderConfig struct {
	APIURL        string `env:"PROVIDER_API_URL, default=https://api.clerk.dev/v1"`
	APIKey        string `env:"PROVIDER_API_KEY"`
	WebhookSecret string `env:"PROVIDER_WEBHOOK_SECRET"`
	// SessionPublicKey is the PEM-encoded RS256 key for provider session
	// tokens.
	SessionPublicKey string `env:"PROVIDER_SESSION_PUBLIC_KEY"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST,     default=localhost"`
	Port     int    `env:"SMTP_PORT,     default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM,     default=noreply@example.com"`
	AppName  string `env:"APP_NAME,      default=Marketplace"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
