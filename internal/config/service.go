package config

import "time"

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Currency    string `mapstructure:"currency"`
}

// GatewayConfig holds the payment gateway credentials and endpoints.
type GatewayConfig struct {
	AccessToken string `mapstructure:"access_token"`
	Receiver    string `mapstructure:"receiver"`
	// ReturnURLTemplate is the success-page URL with a {uid} placeholder
	// for the record id, e.g. "https://t.me/your_bot?start={uid}".
	ReturnURLTemplate string        `mapstructure:"return_url_template"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// StoreConfig locates the persisted payments file.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ReconcilerConfig tunes the sweep loop and the tiered polling schedule.
// Defaults reflect the expectation that most payments complete quickly;
// slowing polling for older records bounds gateway call volume.
type ReconcilerConfig struct {
	TickPeriod      time.Duration `mapstructure:"tick_period"`
	FastInterval    time.Duration `mapstructure:"fast_interval"`
	MediumInterval  time.Duration `mapstructure:"medium_interval"`
	SlowInterval    time.Duration `mapstructure:"slow_interval"`
	FastUntil       time.Duration `mapstructure:"fast_until"`
	MediumUntil     time.Duration `mapstructure:"medium_until"`
	ExpireAfter     time.Duration `mapstructure:"expire_after"`
	Concurrency     int           `mapstructure:"concurrency"`
	AmountTolerance float64       `mapstructure:"amount_tolerance"`
}

// RedisConfig configures the settlement notification channel.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	FilePath    string `mapstructure:"file_path"`
	Development bool   `mapstructure:"development"`
}
