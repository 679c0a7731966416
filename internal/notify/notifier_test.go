package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopbot/internal/config"
	"shopbot/internal/notify"
	"shopbot/internal/shop"
	"shopbot/internal/store"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, sentMessage{chatID: params.ChatID.(int64), text: params.Text})
	return &models.Message{}, nil
}

func newTestNotifier(t *testing.T, admins ...int64) (*notify.Notifier, *fakeSender) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.Telegram.AdminIDs = admins
	cfg.Shop.Currency = "RUB"
	cfg.Shop.LowStockThreshold = 3
	cfg.Shop.CardCacheSize = 16
	svc := shop.NewService(zap.NewNop(), cfg, st)

	sender := &fakeSender{}
	return notify.NewNotifier(zap.NewNop(), sender, svc), sender
}

func TestPaymentSucceeded(t *testing.T) {
	n, sender := newTestNotifier(t)

	n.PaymentSucceeded(context.Background(), store.Order{Number: 7, UserID: 42})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].chatID)
	assert.Contains(t, sender.sent[0].text, "order #7")
}

func TestNewPaidOrderSummary(t *testing.T) {
	n, sender := newTestNotifier(t, 100, 200)

	items := make([]store.OrderItem, 0, 12)
	for i := 1; i <= 12; i++ {
		items = append(items, store.OrderItem{ProductID: i, Name: "Vitamin C", Price: 100, Qty: 1})
	}
	order := store.Order{
		Number:   3,
		UserID:   42,
		Username: "alice",
		Items:    items,
		Total:    1200,
		Client:   store.Client{LastName: "Ivanova", FirstName: "Anna", Phone: "+79991234567"},
		Address:  "Moscow, Tverskaya 1",
		Delivery: "courier",
	}

	n.NewPaidOrder(context.Background(), order)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(100), sender.sent[0].chatID)
	assert.Equal(t, int64(200), sender.sent[1].chatID)

	text := sender.sent[0].text
	assert.Contains(t, text, "Order #3")
	assert.Contains(t, text, "Ivanova Anna")
	assert.Contains(t, text, "@alice")
	assert.Contains(t, text, "+79991234567")
	assert.Contains(t, text, "… and 2 more")
	assert.Equal(t, 10, strings.Count(text, "• Vitamin C"))
}

func TestStockEventsDeduped(t *testing.T) {
	n, sender := newTestNotifier(t, 100)

	events := []shop.StockEvent{{Kind: shop.StockLow, Product: store.Product{ID: 1, Name: "Zinc", Stock: 2}}}
	n.StockEvents(context.Background(), events)
	n.StockEvents(context.Background(), events)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "Low stock")

	// Restock re-arms the alert.
	n.ResetStockAlerts(1)
	n.StockEvents(context.Background(), events)
	assert.Len(t, sender.sent, 2)
}

func TestStockOutAlert(t *testing.T) {
	n, sender := newTestNotifier(t, 100)

	n.StockEvents(context.Background(), []shop.StockEvent{
		{Kind: shop.StockOut, Product: store.Product{ID: 2, Name: "Magnesium"}},
	})
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "out of stock")
	assert.Contains(t, sender.sent[0].text, "Magnesium")
}

type failingSender struct {
	attempts int
}

func (f *failingSender) SendMessage(context.Context, *bot.SendMessageParams) (*models.Message, error) {
	f.attempts++
	return nil, errors.New("telegram unreachable")
}

func TestSendFailuresAreSwallowed(t *testing.T) {
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.Telegram.AdminIDs = []int64{100, 200}
	cfg.Shop.Currency = "RUB"
	cfg.Shop.LowStockThreshold = 3
	cfg.Shop.CardCacheSize = 16
	svc := shop.NewService(zap.NewNop(), cfg, st)

	sender := &failingSender{}
	n := notify.NewNotifier(zap.NewNop(), sender, svc)

	// Failures never propagate, and one dead chat does not stop the
	// admin broadcast.
	n.PaymentSucceeded(context.Background(), store.Order{Number: 7, UserID: 42})
	n.NewPaidOrder(context.Background(), store.Order{Number: 7, UserID: 42})
	assert.Equal(t, 3, sender.attempts)
}

func TestOrderLifecycleNotifications(t *testing.T) {
	n, sender := newTestNotifier(t)

	n.OrderShipped(context.Background(), store.Order{Number: 5, UserID: 42, Tracking: "https://track.example/5"})
	n.OrderDelivered(context.Background(), store.Order{Number: 5, UserID: 42})

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0].text, "https://track.example/5")
	assert.Contains(t, sender.sent[1].text, "delivered")
}
