package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shopbot/internal/notify"
	"shopbot/internal/shop"
)

// AddItemCommand adds a product to the catalog.
type AddItemCommand struct {
	shop shop.Service
}

// NewAddItemCommand creates the /additem command.
func NewAddItemCommand(shopService shop.Service) *AddItemCommand {
	return &AddItemCommand{shop: shopService}
}

func (c *AddItemCommand) Name() string        { return "additem" }
func (c *AddItemCommand) Description() string { return "Add a product" }
func (c *AddItemCommand) AdminOnly() bool     { return true }

func (c *AddItemCommand) Execute(ctx context.Context, api API, msg *models.Message, args []string) error {
	reply := func(text string) error {
		_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
		return err
	}
	if len(args) != 4 {
		return reply("Usage: /additem \"Name\" \"Description\" <price> <stock>")
	}
	price, err := strconv.Atoi(args[2])
	if err != nil || price <= 0 {
		return reply("Price must be a positive number.")
	}
	stock, err := strconv.Atoi(args[3])
	if err != nil || stock < 0 {
		return reply("Stock must be a non-negative number.")
	}

	p, err := c.shop.AddProduct(args[0], args[1], price, stock)
	if err != nil {
		return fmt.Errorf("add product: %w", err)
	}
	return reply(fmt.Sprintf("✅ Added %s (ID %d), %s, stock %d.", p.Name, p.ID, c.shop.FormatPrice(p.Price), p.Stock))
}

// SetStockCommand sets a product's stock level and re-arms its stock alerts.
type SetStockCommand struct {
	shop     shop.Service
	notifier *notify.Notifier
}

// NewSetStockCommand creates the /setstock command.
func NewSetStockCommand(shopService shop.Service, notifier *notify.Notifier) *SetStockCommand {
	return &SetStockCommand{shop: shopService, notifier: notifier}
}

func (c *SetStockCommand) Name() string        { return "setstock" }
func (c *SetStockCommand) Description() string { return "Set product stock" }
func (c *SetStockCommand) AdminOnly() bool     { return true }

func (c *SetStockCommand) Execute(ctx context.Context, api API, msg *models.Message, args []string) error {
	reply := func(text string) error {
		_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
		return err
	}
	if len(args) != 2 {
		return reply("Usage: /setstock <id> <qty>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return reply("Usage: /setstock <id> <qty>")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil || qty < 0 {
		return reply("Quantity must be a non-negative number.")
	}

	p, found, err := c.shop.SetStock(id, qty)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if !found {
		return reply("No product with that ID.")
	}
	c.notifier.ResetStockAlerts(id)
	return reply(fmt.Sprintf("✅ %s now has %d in stock.", p.Name, p.Stock))
}

// DelItemCommand removes a product from the catalog.
type DelItemCommand struct {
	shop shop.Service
}

// NewDelItemCommand creates the /delitem command.
func NewDelItemCommand(shopService shop.Service) *DelItemCommand {
	return &DelItemCommand{shop: shopService}
}

func (c *DelItemCommand) Name() string        { return "delitem" }
func (c *DelItemCommand) Description() string { return "Remove a product" }
func (c *DelItemCommand) AdminOnly() bool     { return true }

func (c *DelItemCommand) Execute(ctx context.Context, api API, msg *models.Message, args []string) error {
	reply := func(text string) error {
		_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
		return err
	}
	if len(args) != 1 {
		return reply("Usage: /delitem <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return reply("Usage: /delitem <id>")
	}

	removed, err := c.shop.RemoveProduct(id)
	if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}
	if !removed {
		return reply("No product with that ID.")
	}
	return reply(fmt.Sprintf("🗑 Product %d removed.", id))
}
