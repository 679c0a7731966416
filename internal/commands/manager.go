package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	shellwords "github.com/mattn/go-shellwords"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shopbot/internal/shop"
)

// ManagerParams holds the dependencies for creating a Manager.
type ManagerParams struct {
	fx.In

	Logger   *zap.Logger
	Shop     shop.Service
	Commands []Command `group:"commands"`
}

// Manager routes incoming slash commands to their handlers and keeps the
// Telegram command menu in sync.
type Manager struct {
	logger   *zap.Logger
	shop     shop.Service
	commands map[string]Command
	ordered  []Command
}

// NewManager creates a command Manager from the provided command group.
func NewManager(params ManagerParams) *Manager {
	byName := make(map[string]Command, len(params.Commands))
	for _, cmd := range params.Commands {
		byName[cmd.Name()] = cmd
	}
	return &Manager{
		logger:   params.Logger.Named("commands"),
		shop:     params.Shop,
		commands: byName,
		ordered:  params.Commands,
	}
}

// Register publishes the public command menu to Telegram.
func (m *Manager) Register(ctx context.Context, api API) error {
	menu := make([]models.BotCommand, 0, len(m.ordered))
	for _, cmd := range m.ordered {
		if cmd.AdminOnly() {
			continue
		}
		menu = append(menu, models.BotCommand{Command: cmd.Name(), Description: cmd.Description()})
	}
	if _, err := api.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: menu}); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	m.logger.Info("Registered command menu", zap.Int("count", len(menu)))
	return nil
}

// Handle dispatches a message that starts with a slash. It returns false for
// anything that is not a known command.
func (m *Manager) Handle(ctx context.Context, api API, msg *models.Message) bool {
	if msg.From == nil || !strings.HasPrefix(msg.Text, "/") {
		return false
	}

	keyword, rest, _ := strings.Cut(strings.TrimPrefix(msg.Text, "/"), " ")
	// Group chats address commands as /cmd@botname.
	keyword, _, _ = strings.Cut(keyword, "@")

	cmd, ok := m.commands[keyword]
	if !ok {
		return false
	}
	if cmd.AdminOnly() && !m.shop.IsAdmin(msg.From.ID) {
		m.logger.Warn("Refused admin command",
			zap.String("command", keyword),
			zap.Int64("userID", msg.From.ID))
		return true
	}

	args, err := shellwords.Parse(rest)
	if err != nil {
		m.send(ctx, api, msg.Chat.ID, "Could not parse the arguments. Use quotes around values with spaces.")
		return true
	}

	if err := cmd.Execute(ctx, api, msg, args); err != nil {
		m.logger.Error("Command failed",
			zap.String("command", keyword),
			zap.Int64("userID", msg.From.ID),
			zap.Error(err))
		m.send(ctx, api, msg.Chat.ID, "Something went wrong, try again.")
	}
	return true
}

func (m *Manager) send(ctx context.Context, api API, chatID int64, text string) {
	if _, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		m.logger.Warn("Failed to send message", zap.Int64("chatID", chatID), zap.Error(err))
	}
}
