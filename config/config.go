package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string `envconfig:"HTTP_PORT"    default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET"   required:"true"`

	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`

	// RedisAddr switches the rate limiter to Redis when set.
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX"    default:"100"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: HTTP port=%s, log level=%s", config.HTTPPort, config.LogLevel)
	})
	return &config
}
