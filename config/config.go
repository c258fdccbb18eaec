package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// SideShift API
	BaseURL        string
	APISecret      string
	AffiliateID    string
	CommissionRate string

	// Telegram
	BotToken      string
	WebhookSecret string

	// HTTP server
	ListenAddr string

	// Sessions
	SessionTTL time.Duration

	// Logging
	LogLevel      string
	LogFilePath   string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".octaneshift")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://sideshift.ai/api/v2")
	viper.SetDefault("commission_rate", "0.5")
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("session_ttl_minutes", 30)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "logs/octaneshift.log")
	viper.SetDefault("log_max_size_mb", 10)
	viper.SetDefault("log_max_backups", 5)
	viper.SetDefault("log_max_age_days", 14)

	// Read from environment variables
	viper.SetEnvPrefix("OCTANESHIFT")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		BaseURL:        viper.GetString("base_url"),
		APISecret:      viper.GetString("api_secret"),
		AffiliateID:    viper.GetString("affiliate_id"),
		CommissionRate: viper.GetString("commission_rate"),
		BotToken:       viper.GetString("bot_token"),
		WebhookSecret:  viper.GetString("webhook_secret"),
		ListenAddr:     viper.GetString("listen_addr"),
		SessionTTL:     time.Duration(viper.GetInt("session_ttl_minutes")) * time.Minute,
		LogLevel:       viper.GetString("log_level"),
		LogFilePath:    viper.GetString("log_file"),
		LogMaxSizeMB:   viper.GetInt("log_max_size_mb"),
		LogMaxBackups:  viper.GetInt("log_max_backups"),
		LogMaxAgeDays:  viper.GetInt("log_max_age_days"),
	}

	if cfg.AffiliateID == "" {
		return nil, fmt.Errorf("affiliate ID not found. Please set OCTANESHIFT_AFFILIATE_ID or add affiliate_id to a .octaneshift.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
