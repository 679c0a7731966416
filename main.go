// Package main provides the entry point for the Telegram shop bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"shopbot/internal/app"
	"shopbot/internal/checkout"
	"shopbot/internal/commands"
	"shopbot/internal/config"
	"shopbot/internal/infrastructure"
	"shopbot/internal/notify"
	"shopbot/internal/payments"
	"shopbot/internal/shop"
	"shopbot/internal/store"
	"shopbot/internal/telegram"
	"shopbot/internal/webhook"
	pkginfra "shopbot/pkg/infrastructure"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to the config file")
	pflag.Parse()

	// Create the application with all modules
	application := app.New(
		// Core modules
		config.Module,
		infrastructure.LoggerModule,
		store.Module,

		// External service modules
		payments.Module,
		telegram.Module,

		// Application modules
		shop.Module,
		notify.Module,
		checkout.Module,
		commands.Module,
		webhook.Module,

		// Supply the config path
		fx.Supply(*configPath),

		// Configure Fx to use our Zap logger for its own internal logging
		fx.WithLogger(pkginfra.NewFxLoggerAdapter),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go application.Run()

	sig := <-sigCh
	fmt.Printf("Received signal: %s, initiating shutdown.\n", sig)

	// Give the application 30 seconds to shut down gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := application.Stop(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Printf("Error during shutdown: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Application has shut down gracefully.")
}
