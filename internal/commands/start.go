package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shopbot/internal/shop"
)

// StartCommand greets the user and points at the catalog.
type StartCommand struct{}

// NewStartCommand creates the /start command.
func NewStartCommand() *StartCommand { return &StartCommand{} }

func (c *StartCommand) Name() string        { return "start" }
func (c *StartCommand) Description() string { return "Open the shop" }
func (c *StartCommand) AdminOnly() bool     { return false }

func (c *StartCommand) Execute(ctx context.Context, api API, msg *models.Message, _ []string) error {
	text := "👋 Welcome to the shop!\n\n" +
		"🛍 /catalog — browse products\n" +
		"🛒 /cart — view your cart and check out\n" +
		"📦 /orders — your orders\n" +
		"ℹ️ /help — all commands"
	_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
	return err
}

// HelpCommand lists the available commands, including the admin ones for
// admins.
type HelpCommand struct {
	shop shop.Service
}

// NewHelpCommand creates the /help command.
func NewHelpCommand(shopService shop.Service) *HelpCommand {
	return &HelpCommand{shop: shopService}
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) AdminOnly() bool     { return false }

func (c *HelpCommand) Execute(ctx context.Context, api API, msg *models.Message, _ []string) error {
	var b strings.Builder
	b.WriteString("Commands:\n")
	b.WriteString("/catalog — browse products\n")
	b.WriteString("/cart — your cart\n")
	b.WriteString("/orders — your orders\n")
	b.WriteString("/cancel <order> — cancel an unpaid order\n")

	if c.shop.IsAdmin(msg.From.ID) {
		b.WriteString("\nAdmin:\n")
		b.WriteString("/additem \"Name\" \"Description\" <price> <stock>\n")
		b.WriteString("/setstock <id> <qty>\n")
		b.WriteString("/delitem <id>\n")
		b.WriteString("/pending — unpaid orders\n")
		b.WriteString("/ship <order> <tracking-url>\n")
		b.WriteString("/done <order> — mark delivered\n")
	}

	_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: b.String()})
	if err != nil {
		return fmt.Errorf("send help: %w", err)
	}
	return nil
}
