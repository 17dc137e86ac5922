// Package config loads process-wide settings once at startup.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultPhotoURL is the placeholder avatar assigned at signup.
const DefaultPhotoURL = "https://res.cloudinary.com/riqra/image/upload/profile.png"

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8431"`

	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"service-user-go"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"360h"`

	// empty means DefaultPhotoURL
	DefaultPhotoURL string `env:"DEFAULT_PHOTO_URL"`
	SnowflakeNode   int64  `env:"SNOWFLAKE_NODE" envDefault:"1"`
	EnsureSchema    bool   `env:"ENSURE_SCHEMA" envDefault:"true"`

	// login limiter, disabled without REDIS_ADDR
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`

	// lifecycle events, disabled without KAFKA_BROKER
	KafkaBroker string `env:"KAFKA_BROKER"`
	KafkaTopic  string `env:"KAFKA_TOPIC" envDefault:"users"`
}

// Load reads a .env file if present and parses the environment.
// A missing .env is fine; real env vars always win over it.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DefaultPhotoURL == "" {
		cfg.DefaultPhotoURL = DefaultPhotoURL
	}
	return cfg, nil
}
