package commands

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shopbot/internal/checkout"
	"shopbot/internal/shop"
)

// CatalogCommand sends every product card with add-to-cart and buy buttons.
type CatalogCommand struct {
	shop shop.Service
}

// NewCatalogCommand creates the /catalog command.
func NewCatalogCommand(shopService shop.Service) *CatalogCommand {
	return &CatalogCommand{shop: shopService}
}

func (c *CatalogCommand) Name() string        { return "catalog" }
func (c *CatalogCommand) Description() string { return "Browse products" }
func (c *CatalogCommand) AdminOnly() bool     { return false }

func (c *CatalogCommand) Execute(ctx context.Context, api API, msg *models.Message, _ []string) error {
	products, err := c.shop.Catalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(products) == 0 {
		_, err = api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: "The catalog is empty for now. Check back later!"})
		return err
	}

	for _, p := range products {
		card, _, err := c.shop.ProductCard(p.ID)
		if err != nil {
			return fmt.Errorf("render product %d: %w", p.ID, err)
		}

		var kb *models.InlineKeyboardMarkup
		if p.Stock > 0 {
			kb = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "🛒 Add to cart", CallbackData: fmt.Sprintf("%s%d", checkout.CallbackAddPrefix, p.ID)},
				{Text: "💳 Buy now", CallbackData: fmt.Sprintf("%s%d", checkout.CallbackBuyPrefix, p.ID)},
			}}}
		}
		if _, err := api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      msg.Chat.ID,
			Text:        card,
			ReplyMarkup: kb,
		}); err != nil {
			return fmt.Errorf("send product %d: %w", p.ID, err)
		}
	}
	return nil
}
