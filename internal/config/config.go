package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all environment-driven settings.
type Config struct {
	Port        int    `env:"PORT, default=8080"`
	DatabaseURL string `env:"DATABASE_URL, required"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	JWTSecret       string `env:"JWT_SECRET"`
	TokenTTLSeconds int    `env:"TOKEN_TTL_SECONDS, default=900"`
	RefreshTTLHours int    `env:"REFRESH_TTL_HOURS, default=168"`

	RedisAddr     string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB, default=0"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT, default=localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY, default=minioadmin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY, default=minioadmin"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
	MinioKeyBucket string `env:"MINIO_KEY_BUCKET, default=vet-credentials"`

	AuditRetentionDays int `env:"AUDIT_RETENTION_DAYS, default=365"`
}

// Load reads the configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
