package store

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shopbot/internal/config"
)

// Module provides the persistence layer.
var Module = fx.Module("store",
	fx.Provide(NewStoreProvider),
)

// NewStoreProvider creates the Store rooted at the configured data directory.
func NewStoreProvider(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	s, err := New(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Store opened", zap.String("dataDir", s.Dir()))
	return s, nil
}
