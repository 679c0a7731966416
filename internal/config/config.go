package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TelegramConfig stores Telegram specific configurations.
type TelegramConfig struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"`
}

// YooKassaConfig stores YooKassa payment gateway credentials.
type YooKassaConfig struct {
	ShopID    string `yaml:"shop_id"`
	SecretKey string `yaml:"secret_key"`
	ReturnURL string `yaml:"return_url"`
	// APIBaseURL overrides the production endpoint, used in tests.
	APIBaseURL string `yaml:"api_base_url"`
}

// WebhookConfig stores the payment notification server settings.
type WebhookConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Path       string `yaml:"path"`
}

// StorageConfig stores the JSON file store settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// ShopConfig stores storefront behavior settings.
type ShopConfig struct {
	Currency          string `yaml:"currency"`
	LowStockThreshold int    `yaml:"low_stock_threshold"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	CardCacheSize     int    `yaml:"card_cache_size"`
}

// Config stores the application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	YooKassa YooKassaConfig `yaml:"yookassa"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Storage  StorageConfig  `yaml:"storage"`
	Shop     ShopConfig     `yaml:"shop"`
	LogLevel string         `yaml:"log_level"`
}

const (
	defaultListenAddr    = ":8080"
	defaultWebhookPath   = "/yookassa/webhook"
	defaultDataDir       = "data"
	defaultCurrency      = "RUB"
	defaultLowStock      = 3
	defaultSessionTTL    = 30
	defaultCardCacheSize = 256
	defaultAPIBaseURL    = "https://api.yookassa.ru"
)

// LoadConfig loads the configuration from the given file path. A missing file
// is not an error so the bot can be configured entirely from the environment
// inside a container; required values are still validated afterwards.
func LoadConfig(filePath string) (*Config, error) {
	// Populate the process environment from .env first, if present.
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Environment-only configuration.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("BOT_TOKEN"); ok {
		cfg.Telegram.Token = v
	}
	if v, ok := os.LookupEnv("YOOKASSA_SHOP_ID"); ok {
		cfg.YooKassa.ShopID = v
	}
	if v, ok := os.LookupEnv("YOOKASSA_SECRET_KEY"); ok {
		cfg.YooKassa.SecretKey = v
	}
	if v, ok := os.LookupEnv("DATA_DIR"); ok {
		cfg.Storage.DataDir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Webhook.ListenAddr == "" {
		cfg.Webhook.ListenAddr = defaultListenAddr
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = defaultWebhookPath
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir
	}
	if cfg.Shop.Currency == "" {
		cfg.Shop.Currency = defaultCurrency
	}
	if cfg.Shop.LowStockThreshold <= 0 {
		cfg.Shop.LowStockThreshold = defaultLowStock
	}
	if cfg.Shop.SessionTTLMinutes <= 0 {
		cfg.Shop.SessionTTLMinutes = defaultSessionTTL
	}
	if cfg.Shop.CardCacheSize <= 0 {
		cfg.Shop.CardCacheSize = defaultCardCacheSize
	}
	if cfg.YooKassa.APIBaseURL == "" {
		cfg.YooKassa.APIBaseURL = defaultAPIBaseURL
	}
}

// Validate reports the first missing required value.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram bot token is not set in config")
	}
	if c.YooKassa.ShopID == "" {
		return errors.New("yookassa shop id is not set in config")
	}
	if c.YooKassa.SecretKey == "" {
		return errors.New("yookassa secret key is not set in config")
	}
	return nil
}
