package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Service    ServiceConfig    `mapstructure:"service"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Store      StoreConfig      `mapstructure:"store"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	Log        LogConfig        `mapstructure:"log"`
}

// LoadConfig reads the yaml config file (CONFIG_PATH, default
// ./configs/topup.yaml) with TOPUP_-prefixed environment overrides, and
// fails fast when a required setting is missing.
func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/topup.yaml"
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(absPath)

	// Environment overrides, e.g. TOPUP_GATEWAY_ACCESS_TOKEN.
	v.SetEnvPrefix("TOPUP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key so that environment-only overrides are
// picked up by Unmarshal even when the key is absent from the yaml file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "topup-service")
	v.SetDefault("service.environment", "development")
	v.SetDefault("service.currency", "RUB")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)

	v.SetDefault("gateway.access_token", "")
	v.SetDefault("gateway.receiver", "")
	v.SetDefault("gateway.return_url_template", "")
	v.SetDefault("gateway.base_url", "https://yoomoney.ru")
	v.SetDefault("gateway.request_timeout", "10s")

	v.SetDefault("store.path", "")

	v.SetDefault("reconciler.tick_period", "1s")
	v.SetDefault("reconciler.fast_interval", "5s")
	v.SetDefault("reconciler.medium_interval", "30s")
	v.SetDefault("reconciler.slow_interval", "600s")
	v.SetDefault("reconciler.fast_until", "1h")
	v.SetDefault("reconciler.medium_until", "24h")
	v.SetDefault("reconciler.expire_after", "48h")
	v.SetDefault("reconciler.concurrency", 10)
	v.SetDefault("reconciler.amount_tolerance", 0.92)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "topup.credited")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
}

// Validate checks required settings. The process must not begin serving
// without them.
func (c *Config) Validate() error {
	if c.Gateway.AccessToken == "" {
		return fmt.Errorf("gateway.access_token is required")
	}
	if c.Gateway.Receiver == "" {
		return fmt.Errorf("gateway.receiver is required")
	}
	if c.Gateway.ReturnURLTemplate == "" {
		return fmt.Errorf("gateway.return_url_template is required")
	}
	if !strings.Contains(c.Gateway.ReturnURLTemplate, "{uid}") {
		return fmt.Errorf("gateway.return_url_template must contain a {uid} placeholder")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Reconciler.Concurrency <= 0 {
		return fmt.Errorf("reconciler.concurrency must be positive")
	}
	if c.Reconciler.AmountTolerance <= 0 || c.Reconciler.AmountTolerance > 1 {
		return fmt.Errorf("reconciler.amount_tolerance must be in (0, 1]")
	}
	return nil
}
