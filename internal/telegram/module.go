// Package telegram hosts the bot client, update routing and the polling
// loop.
package telegram

import (
	"go.uber.org/fx"
)

// Module provides Telegram transport dependencies.
var Module = fx.Module("telegram",
	fx.Provide(
		NewDispatcher,
		NewBot,
		NewRouter,
		NewService,
	),
)
