package commands

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// API is the Telegram surface commands need; *bot.Bot satisfies it.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// Command is a slash command the bot responds to.
type Command interface {
	// Name returns the command keyword without the leading slash.
	Name() string
	// Description is the short help text shown in the Telegram command menu.
	Description() string
	// AdminOnly hides the command from regular users and refuses execution.
	AdminOnly() bool
	// Execute runs the command. args are the shell-split tokens after the
	// command keyword.
	Execute(ctx context.Context, api API, msg *models.Message, args []string) error
}
