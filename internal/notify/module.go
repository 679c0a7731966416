// Package notify delivers shop events to customers and admins over Telegram.
package notify

import (
	"github.com/go-telegram/bot"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shopbot/internal/shop"
)

// Module provides notification dependencies.
var Module = fx.Module("notify",
	fx.Provide(NewNotifierProvider),
)

// NewNotifierProvider wires the Telegram bot as the notification sender.
func NewNotifierProvider(logger *zap.Logger, b *bot.Bot, shopService shop.Service) *Notifier {
	return NewNotifier(logger, b, shopService)
}
