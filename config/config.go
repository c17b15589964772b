package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the service. Values are read by viper
// from a local .env file or the environment.
type Config struct {
	Env                string `mapstructure:"ENV"`
	Port               string `mapstructure:"PORT"`
	DBURL              string `mapstructure:"DB_URL"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	AccessTokenSecret  string `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `mapstructure:"REFRESH_TOKEN_SECRET"`
	AccessExpiryMin    int    `mapstructure:"ACCESS_TOKEN_EXPIRY"`
	RefreshExpiryMin   int    `mapstructure:"REFRESH_TOKEN_EXPIRY"`
	MaxActiveSessions  int    `mapstructure:"MAX_ACTIVE_SESSIONS"`
	MainTenantSlug     string `mapstructure:"MAIN_TENANT_SLUG"`
	CleanupIntervalMin int    `mapstructure:"CLEANUP_INTERVAL_MIN"`
}

// Load reads configuration from a .env file (if present) or environment
// variables. Secrets and the database URL are required; everything else has a
// sensible default.
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ACCESS_TOKEN_EXPIRY", 15)
	viper.SetDefault("REFRESH_TOKEN_EXPIRY", 10080)
	viper.SetDefault("MAX_ACTIVE_SESSIONS", 5)
	viper.SetDefault("MAIN_TENANT_SLUG", "edulift-prod")
	viper.SetDefault("CLEANUP_INTERVAL_MIN", 60)

	for _, key := range []string{"DB_URL", "RABBITMQ_URL", "ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET"} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.DBURL == "" {
		return nil, fmt.Errorf("missing required configuration: DB_URL")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("missing required configuration: token secrets")
	}

	return &cfg, nil
}
