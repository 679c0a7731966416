package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shopbot/internal/checkout"
	"shopbot/internal/shop"
)

// CartCommand shows the cart with per-item remove buttons and a checkout
// button.
type CartCommand struct {
	shop shop.Service
}

// NewCartCommand creates the /cart command.
func NewCartCommand(shopService shop.Service) *CartCommand {
	return &CartCommand{shop: shopService}
}

func (c *CartCommand) Name() string        { return "cart" }
func (c *CartCommand) Description() string { return "View your cart" }
func (c *CartCommand) AdminOnly() bool     { return false }

func (c *CartCommand) Execute(ctx context.Context, api API, msg *models.Message, _ []string) error {
	lines, total, err := c.shop.CartLines(msg.From.ID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		_, err = api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: "🛒 Your cart is empty. Browse /catalog to add something."})
		return err
	}

	var b strings.Builder
	b.WriteString("🛒 Your cart:\n\n")
	rows := make([][]models.InlineKeyboardButton, 0, len(lines)+1)
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s × %d = %s\n", l.Product.Name, l.Qty, c.shop.FormatPrice(l.Subtotal))
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("❌ Remove %s", l.Product.Name),
			CallbackData: fmt.Sprintf("%s%d", checkout.CallbackRemovePrefix, l.Product.ID),
		}})
	}
	fmt.Fprintf(&b, "\n💰 Total: %s", c.shop.FormatPrice(total))
	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         "✅ Checkout",
		CallbackData: checkout.CallbackCheckout,
	}})

	_, err = api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        b.String(),
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	return err
}
