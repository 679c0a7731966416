// Package app provides the main application structure and lifecycle management.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"shopbot/internal/telegram"
	"shopbot/internal/webhook"
)

// Application represents the main application with its lifecycle.
type Application struct {
	app *fx.App
}

// New creates a new Application with the provided modules and options.
func New(modules ...fx.Option) *Application {
	options := append(modules, fx.Invoke(registerLifecycleHooks))

	return &Application{
		app: fx.New(options...),
	}
}

// Run starts the application and blocks until it's stopped.
func (a *Application) Run() {
	a.app.Run()
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

// registerLifecycleHooks forces construction of the bot service and the
// webhook server, both of which attach their own start and stop hooks, and
// logs the application lifecycle around them.
func registerLifecycleHooks(lc fx.Lifecycle, logger *zap.Logger, _ *telegram.Service, _ *webhook.Server) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("Application started successfully")
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("Application stopped")
			return nil
		},
	})
}
