// Package payments provides the YooKassa payment gateway client and its Fx module.
package payments

import (
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"shopbot/internal/config"
)

// Module provides payment gateway dependencies.
var Module = fx.Module("payments",
	fx.Provide(NewClientProvider),
)

// NewClientProvider creates the YooKassa client from config.
func NewClientProvider(cfg *config.Config, logger *zap.Logger) (Client, error) {
	if cfg.YooKassa.ShopID == "" || cfg.YooKassa.SecretKey == "" {
		return nil, errors.New("yookassa credentials are not configured")
	}
	return NewClient(cfg.YooKassa.APIBaseURL, cfg.YooKassa.ShopID, cfg.YooKassa.SecretKey, logger), nil
}
