package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string `mapstructure:"APP_ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Donation platform sync
	SyncServiceURL   string        `mapstructure:"SYNC_SERVICE_URL"`
	SyncServiceToken string        `mapstructure:"SYNC_SERVICE_TOKEN"`
	SyncInterval     time.Duration `mapstructure:"SYNC_INTERVAL"`

	// Leaderboard cache
	LeaderboardTTL     time.Duration `mapstructure:"LEADERBOARD_TTL"`
	LeaderboardRefresh time.Duration `mapstructure:"LEADERBOARD_REFRESH"`

	// R2 / S3 badge icon storage
	R2AccountID       string `mapstructure:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `mapstructure:"R2_ACCESS_KEY_SECRET"`
	R2BucketName      string `mapstructure:"R2_BUCKET_NAME"`
	CDNBaseURL        string `mapstructure:"CDN_BASE_URL"`
}

// Load reads .env when present, then the environment. Environment variables
// always win.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SYNC_INTERVAL", time.Minute)
	viper.SetDefault("LEADERBOARD_TTL", 30*time.Second)
	viper.SetDefault("LEADERBOARD_REFRESH", time.Minute)

	// No .env is fine in deployed environments.
	_ = viper.ReadInConfig()

	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("failed to decode config -> %w", err)
	}
	return &conf, nil
}
