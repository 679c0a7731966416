package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"shopbot/internal/shop"
	"shopbot/internal/store"
)

// adminItemLineLimit caps the item lines in the admin order summary.
const adminItemLineLimit = 10

// Sender is the Telegram send surface the notifier needs; *bot.Bot satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier delivers shop events to customers and admins. Send failures are
// logged and swallowed: a dead Telegram chat must never fail a payment
// webhook or an admin action.
type Notifier struct {
	logger *zap.Logger
	sender Sender
	shop   shop.Service

	// alerted dedupes low/out-of-stock alerts per product until the stock
	// is corrected.
	alerted *lru.Cache[string, bool]
}

// NewNotifier creates a Notifier.
func NewNotifier(logger *zap.Logger, sender Sender, shopService shop.Service) *Notifier {
	alerted, err := lru.New[string, bool](1024)
	if err != nil {
		panic(err)
	}
	return &Notifier{
		logger:  logger.Named("notify"),
		sender:  sender,
		shop:    shopService,
		alerted: alerted,
	}
}

// PaymentSucceeded tells the customer their payment went through.
func (n *Notifier) PaymentSucceeded(ctx context.Context, order store.Order) {
	text := fmt.Sprintf(
		"✅ Payment for order #%d received\n\n"+
			"📦 The order is confirmed. An administrator will start processing it shortly.\n"+
			"We will message you once a tracking link is available.\n\n"+
			"You can follow the status under 📦 My orders.",
		order.Number,
	)
	n.send(ctx, order.UserID, text)
}

// NewPaidOrder sends the full order summary to every admin.
func (n *Notifier) NewPaidOrder(ctx context.Context, order store.Order) {
	n.broadcast(ctx, n.orderSummary(order))
}

// StockEvents alerts admins about low and out-of-stock transitions, at most
// once per product until ResetStockAlerts is called for it.
func (n *Notifier) StockEvents(ctx context.Context, events []shop.StockEvent) {
	for _, ev := range events {
		key := fmt.Sprintf("%d:%d", ev.Product.ID, ev.Kind)
		if _, seen := n.alerted.Get(key); seen {
			continue
		}
		n.alerted.Add(key, true)

		var text string
		switch ev.Kind {
		case shop.StockOut:
			text = fmt.Sprintf("⛔ Product out of stock\n\n💊 %s\n🆔 ID: %d", ev.Product.Name, ev.Product.ID)
		case shop.StockLow:
			text = fmt.Sprintf("⚠️ Low stock\n\n💊 %s\n📦 Left: %d pcs\n🆔 ID: %d", ev.Product.Name, ev.Product.Stock, ev.Product.ID)
		default:
			continue
		}
		n.broadcast(ctx, text)
	}
}

// ResetStockAlerts re-arms alerts for a product after an admin restocked it.
func (n *Notifier) ResetStockAlerts(productID int) {
	n.alerted.Remove(fmt.Sprintf("%d:%d", productID, shop.StockLow))
	n.alerted.Remove(fmt.Sprintf("%d:%d", productID, shop.StockOut))
}

// OrderShipped tells the customer their order is on its way.
func (n *Notifier) OrderShipped(ctx context.Context, order store.Order) {
	text := fmt.Sprintf("🚚 Order #%d is on its way!\n\n🔗 Tracking: %s", order.Number, order.Tracking)
	n.send(ctx, order.UserID, text)
}

// OrderDelivered tells the customer their order arrived.
func (n *Notifier) OrderDelivered(ctx context.Context, order store.Order) {
	n.send(ctx, order.UserID, fmt.Sprintf("✅ Order #%d was delivered. Thank you for shopping with us!", order.Number))
}

func (n *Notifier) orderSummary(order store.Order) string {
	lines := make([]string, 0, adminItemLineLimit+1)
	for i, it := range order.Items {
		if i == adminItemLineLimit {
			lines = append(lines, fmt.Sprintf("… and %d more", len(order.Items)-adminItemLineLimit))
			break
		}
		lines = append(lines, fmt.Sprintf("• %s × %d", it.Name, it.Qty))
	}
	if len(lines) == 0 {
		lines = append(lines, "• -")
	}

	name := strings.TrimSpace(strings.Join([]string{order.Client.LastName, order.Client.FirstName, order.Client.Patronymic}, " "))
	if name == "" {
		name = "-"
	}
	phone := strings.TrimSpace(order.Client.Phone)
	if phone == "" {
		phone = "-"
	}
	handle := "-"
	if order.Username != "" {
		handle = "@" + order.Username
	}
	delivery := order.Delivery
	if delivery == "" {
		delivery = "-"
	}
	address := order.Address
	if address == "" {
		address = "-"
	}

	return fmt.Sprintf(
		"🆕 New paid order\n\n"+
			"🧾 Order #%d\n"+
			"💰 Total: %s\n"+
			"🚚 Delivery: %s\n"+
			"📍 Address: %s\n\n"+
			"👤 Client: %s\n"+
			"📞 Phone: %s\n"+
			"Telegram: %s\n"+
			"ID: %d\n\n"+
			"📦 Items:\n%s",
		order.Number,
		n.shop.FormatPrice(order.Total),
		delivery,
		address,
		name,
		phone,
		handle,
		order.UserID,
		strings.Join(lines, "\n"),
	)
}

func (n *Notifier) broadcast(ctx context.Context, text string) {
	admins, err := n.shop.AdminIDs()
	if err != nil {
		n.logger.Error("Failed to load admin ids", zap.Error(err))
		return
	}
	for _, id := range admins {
		n.send(ctx, id, text)
	}
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) {
	if chatID == 0 {
		return
	}
	if _, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		n.logger.Warn("Failed to send notification", zap.Int64("chatID", chatID), zap.Error(err))
	}
}
