package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"shopbot/internal/shop"
	"shopbot/internal/store"
)

var statusLabels = map[string]string{
	store.StatusProcessing: "🕐 Processing",
	store.StatusShipped:    "🚚 Shipped",
	store.StatusDelivered:  "✅ Delivered",
}

// OrdersCommand lists the user's paid orders plus unpaid checkouts.
type OrdersCommand struct {
	shop shop.Service
}

// NewOrdersCommand creates the /orders command.
func NewOrdersCommand(shopService shop.Service) *OrdersCommand {
	return &OrdersCommand{shop: shopService}
}

func (c *OrdersCommand) Name() string        { return "orders" }
func (c *OrdersCommand) Description() string { return "Your orders" }
func (c *OrdersCommand) AdminOnly() bool     { return false }

func (c *OrdersCommand) Execute(ctx context.Context, api API, msg *models.Message, _ []string) error {
	orders, err := c.shop.OrdersFor(msg.From.ID)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	pendings, err := c.shop.PendingOrders()
	if err != nil {
		return fmt.Errorf("load pending orders: %w", err)
	}

	var b strings.Builder
	for _, p := range pendings {
		if p.UserID != msg.From.ID {
			continue
		}
		fmt.Fprintf(&b, "💳 Order #%d — awaiting payment, %s\nCancel with /cancel %d\n\n",
			p.Number, c.shop.FormatPrice(p.Total), p.Number)
	}
	for _, o := range orders {
		label, ok := statusLabels[o.Status]
		if !ok {
			label = o.Status
		}
		fmt.Fprintf(&b, "🧾 Order #%d — %s\n💰 %s\n📅 %s\n",
			o.Number, label, c.shop.FormatPrice(o.Total), o.CreatedAt.Format("02.01.2006"))
		if o.Tracking != "" {
			fmt.Fprintf(&b, "🔗 %s\n", o.Tracking)
		}
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		text = "You have no orders yet. Browse /catalog to place one!"
	}
	_, err = api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
	return err
}

// CancelCommand cancels the user's own unpaid order and releases any
// reserved stock.
type CancelCommand struct {
	shop shop.Service
}

// NewCancelCommand creates the /cancel command.
func NewCancelCommand(shopService shop.Service) *CancelCommand {
	return &CancelCommand{shop: shopService}
}

func (c *CancelCommand) Name() string        { return "cancel" }
func (c *CancelCommand) Description() string { return "Cancel an unpaid order" }
func (c *CancelCommand) AdminOnly() bool     { return false }

func (c *CancelCommand) Execute(ctx context.Context, api API, msg *models.Message, args []string) error {
	reply := func(text string) error {
		_, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
		return err
	}
	if len(args) != 1 {
		return reply("Usage: /cancel <order number>")
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return reply("Usage: /cancel <order number>")
	}

	pendings, err := c.shop.PendingOrders()
	if err != nil {
		return fmt.Errorf("load pending orders: %w", err)
	}
	for _, p := range pendings {
		if p.Number != number {
			continue
		}
		if p.UserID != msg.From.ID && !c.shop.IsAdmin(msg.From.ID) {
			break
		}
		if err := c.shop.CancelPending(p.ID); err != nil {
			return fmt.Errorf("cancel pending %d: %w", p.ID, err)
		}
		return reply(fmt.Sprintf("❌ Order #%d cancelled.", number))
	}
	return reply("No unpaid order with that number.")
}
