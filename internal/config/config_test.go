package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_ids: [42, 43]
yookassa:
  shop_id: "shop-1"
  secret_key: "sk-1"
  return_url: "https://t.me/examplebot"
storage:
  data_dir: "/srv/shop/data"
shop:
  low_stock_threshold: 5
log_level: debug
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, []int64{42, 43}, cfg.Telegram.AdminIDs)
	assert.Equal(t, "shop-1", cfg.YooKassa.ShopID)
	assert.Equal(t, "/srv/shop/data", cfg.Storage.DataDir)
	assert.Equal(t, 5, cfg.Shop.LowStockThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Defaults fill the rest.
	assert.Equal(t, ":8080", cfg.Webhook.ListenAddr)
	assert.Equal(t, "/yookassa/webhook", cfg.Webhook.Path)
	assert.Equal(t, "RUB", cfg.Shop.Currency)
	assert.Equal(t, 30, cfg.Shop.SessionTTLMinutes)
	assert.Equal(t, "https://api.yookassa.ru", cfg.YooKassa.APIBaseURL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "from-file"
yookassa:
  shop_id: "shop-1"
  secret_key: "sk-1"
`)

	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("DATA_DIR", "/mnt/data")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, "/mnt/data", cfg.Storage.DataDir)
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("YOOKASSA_SHOP_ID", "shop-1")
	t.Setenv("YOOKASSA_SECRET_KEY", "sk-1")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "data", cfg.Storage.DataDir)
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeConfig(t, `
yookassa:
  shop_id: "shop-1"
  secret_key: "sk-1"
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}
