package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shopbot/internal/notify"
	"shopbot/internal/shop"
)

// PendingCommand lists checkouts awaiting payment.
type PendingCommand struct {
	shop shop.Service
}

// NewPendingCommand creates the /pending command.
func NewPendingCommand(shopService shop.Service) *PendingCommand {
	return &PendingCommand{shop: shopService}
}

func (c *PendingCommand) Name() string        { return "pending" }
func (c *PendingCommand) Description() string { return "List unpaid orders" }
func (c *PendingCommand) AdminOnly() bool     { return true }

func (c *PendingCommand) Execute(ctx context.Context, api API, msg *models.Message, _ []string) error {
	pendings, err := c.shop.PendingOrders()
	if err != nil {
		return fmt.Errorf("load pending orders: %w", err)
	}
	if len(pendings) == 0 {
		_, err = api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: "No unpaid orders."})
		return err
	}

	var b strings.Builder
	b.WriteString("💳 Awaiting payment:\n\n")
	for _, p := range pendings {
		reserved := ""
		if p.Reserved {
			reserved = ", stock reserved"
		}
		fmt.Fprintf(&b, "#%d — %s, user %d%s\n", p.Number, c.shop.FormatPrice(p.Total), p.UserID, reserved)
	}
	_, err = api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: b.String()})
	return err
}

// ShipCommand marks an order shipped and sends the customer the tracking
// link.
type ShipCommand struct {
	shop     shop.Service
	notifier *notify.Notifier
}

// NewShipCommand creates the /ship command.
func NewShipCommand(shopService shop.Service, notifier *notify.Notifier) *ShipCommand {
	return &ShipCommand{shop: shopService, notifier: notifier}
}

func (c *ShipCommand) Name() string        { return "ship" }
func (c *ShipCommand) Description() string { return "Mark an order shipped" }
func (c *ShipCommand) AdminOnly() bool     { return true }

func (c *ShipCommand) Execute(ctx context.Context, api API, msg *models.Message, args []string) error {
	reply := func(text string) error {
		_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
		return err
	}
	if len(args) != 2 {
		return reply("Usage: /ship <order number> <tracking-url>")
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return reply("Usage: /ship <order number> <tracking-url>")
	}

	order, found, err := c.shop.MarkShipped(number, args[1])
	if err != nil {
		return fmt.Errorf("mark shipped: %w", err)
	}
	if !found {
		return reply("No order with that number.")
	}
	c.notifier.OrderShipped(ctx, order)
	return reply(fmt.Sprintf("🚚 Order #%d marked shipped, customer notified.", number))
}

// DoneCommand marks an order delivered and thanks the customer.
type DoneCommand struct {
	shop     shop.Service
	notifier *notify.Notifier
}

// NewDoneCommand creates the /done command.
func NewDoneCommand(shopService shop.Service, notifier *notify.Notifier) *DoneCommand {
	return &DoneCommand{shop: shopService, notifier: notifier}
}

func (c *DoneCommand) Name() string        { return "done" }
func (c *DoneCommand) Description() string { return "Mark an order delivered" }
func (c *DoneCommand) AdminOnly() bool     { return true }

func (c *DoneCommand) Execute(ctx context.Context, api API, msg *models.Message, args []string) error {
	reply := func(text string) error {
		_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
		return err
	}
	if len(args) != 1 {
		return reply("Usage: /done <order number>")
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return reply("Usage: /done <order number>")
	}

	order, found, err := c.shop.MarkDelivered(number)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	if !found {
		return reply("No order with that number.")
	}
	c.notifier.OrderDelivered(ctx, order)
	return reply(fmt.Sprintf("✅ Order #%d marked delivered.", number))
}
