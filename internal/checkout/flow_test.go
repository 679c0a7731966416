package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopbot/internal/checkout"
	"shopbot/internal/config"
	"shopbot/internal/payments"
	"shopbot/internal/shop"
	"shopbot/internal/store"
)

type fakeAPI struct {
	sent    []*bot.SendMessageParams
	answers []string
}

func (f *fakeAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, params)
	return &models.Message{}, nil
}

func (f *fakeAPI) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.answers = append(f.answers, params.Text)
	return true, nil
}

func (f *fakeAPI) lastText() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

type fakeGateway struct {
	created []payments.CreatePaymentRequest
	err     error
}

func (f *fakeGateway) CreatePayment(_ context.Context, req payments.CreatePaymentRequest) (payments.Payment, error) {
	if f.err != nil {
		return payments.Payment{}, f.err
	}
	f.created = append(f.created, req)
	return payments.Payment{
		ID:           "pay-1",
		Status:       payments.StatusPending,
		Confirmation: &payments.Confirmation{Type: "redirect", ConfirmationURL: "https://yookassa.example/confirm"},
	}, nil
}

func (f *fakeGateway) GetPayment(context.Context, string) (payments.Payment, error) {
	return payments.Payment{}, errors.New("not implemented")
}

type fixture struct {
	flow    *checkout.Flow
	api     *fakeAPI
	store   *store.Store
	shop    shop.Service
	gateway *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Shop.Currency = "RUB"
	cfg.Shop.LowStockThreshold = 3
	cfg.Shop.SessionTTLMinutes = 30
	cfg.Shop.CardCacheSize = 16
	cfg.YooKassa.ReturnURL = "https://t.me/examplebot"

	svc := shop.NewService(zap.NewNop(), cfg, st)
	gateway := &fakeGateway{}
	return &fixture{
		flow:    checkout.NewFlow(zap.NewNop(), cfg, svc, gateway),
		api:     &fakeAPI{},
		store:   st,
		shop:    svc,
		gateway: gateway,
	}
}

func (f *fixture) callback(t *testing.T, userID int64, data string) {
	t.Helper()
	handled := f.flow.HandleCallback(context.Background(), f.api, &models.CallbackQuery{
		ID:   "cb",
		From: models.User{ID: userID, Username: "alice"},
		Data: data,
	})
	require.True(t, handled)
}

func (f *fixture) text(t *testing.T, userID int64, text string) {
	t.Helper()
	handled := f.flow.HandleText(context.Background(), f.api, &models.Message{
		From: &models.User{ID: userID},
		Text: text,
	})
	require.True(t, handled)
}

func TestCheckoutFullFlow(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.SaveProduct(store.Product{ID: 1, Name: "Vitamin C", Price: 350, Stock: 10})
	require.NoError(t, err)
	require.NoError(t, f.shop.AddToCart(42, 1, 1))
	require.NoError(t, f.shop.AddToCart(42, 1, 1))

	f.callback(t, 42, checkout.CallbackCheckout)
	require.True(t, f.flow.Active(42))
	assert.Contains(t, f.api.lastText(), "700 ₽")

	f.callback(t, 42, "dlv:courier")
	f.text(t, 42, "Moscow, Tverskaya 1")
	f.text(t, 42, "Ivanova Anna")
	f.text(t, 42, "+79991234567")
	assert.Contains(t, f.api.lastText(), "Check your order")

	f.callback(t, 42, "confirm")
	assert.False(t, f.flow.Active(42))
	assert.Contains(t, f.api.lastText(), "waiting for payment")

	require.Len(t, f.gateway.created, 1)
	req := f.gateway.created[0]
	assert.Equal(t, "700.00", req.AmountValue)
	assert.Equal(t, "1", req.Metadata["order_id"])
	assert.Equal(t, "42", req.Metadata["user_id"])

	pendings, err := f.store.PendingOrders()
	require.NoError(t, err)
	require.Len(t, pendings, 1)
	p := pendings[0]
	assert.Equal(t, "pay-1", p.PaymentID)
	assert.True(t, p.Reserved)
	assert.True(t, p.FromCart)
	assert.Equal(t, "courier", p.Delivery)
	assert.Equal(t, "Ivanova", p.Client.LastName)
	assert.Equal(t, "alice", p.Username)

	// Reservation already took the stock.
	product, found, err := f.store.Product(1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 8, product.Stock)
}

func TestCheckoutSingleItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.SaveProduct(store.Product{ID: 2, Name: "Zinc", Price: 200, Stock: 5})
	require.NoError(t, err)

	f.callback(t, 42, "buy:2")
	require.True(t, f.flow.Active(42))
	assert.Contains(t, f.api.lastText(), "200 ₽")

	f.callback(t, 42, "dlv:pickup")
	f.text(t, 42, "Pickup point 17")
	f.text(t, 42, "Petrov Ivan Sergeevich")
	f.text(t, 42, "8 999 123-45-67")
	f.callback(t, 42, "confirm")

	pendings, err := f.store.PendingOrders()
	require.NoError(t, err)
	require.Len(t, pendings, 1)
	assert.False(t, pendings[0].FromCart)
	assert.Equal(t, "Sergeevich", pendings[0].Client.Patronymic)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	f.callback(t, 42, checkout.CallbackCheckout)
	assert.False(t, f.flow.Active(42))
	assert.Contains(t, f.api.lastText(), "cart is empty")
}

func TestCheckoutCancel(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.SaveProduct(store.Product{ID: 1, Name: "Vitamin C", Price: 350, Stock: 10})
	require.NoError(t, err)

	f.callback(t, 42, "buy:1")
	require.True(t, f.flow.Active(42))
	f.callback(t, 42, "cancel")
	assert.False(t, f.flow.Active(42))

	// Nothing was reserved.
	product, _, err := f.store.Product(1)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)
}

func TestCheckoutPaymentFailureReleasesStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.SaveProduct(store.Product{ID: 1, Name: "Vitamin C", Price: 350, Stock: 10})
	require.NoError(t, err)
	f.gateway.err = errors.New("gateway down")

	f.callback(t, 42, "buy:1")
	f.callback(t, 42, "dlv:courier")
	f.text(t, 42, "Moscow")
	f.text(t, 42, "Ivanova Anna")
	f.text(t, 42, "+79991234567")
	f.callback(t, 42, "confirm")

	assert.Contains(t, f.api.lastText(), "unavailable")
	assert.False(t, f.flow.Active(42))

	product, _, err := f.store.Product(1)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)

	pendings, err := f.store.PendingOrders()
	require.NoError(t, err)
	assert.Empty(t, pendings)
}

func TestCheckoutOutOfStockAtConfirm(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.SaveProduct(store.Product{ID: 1, Name: "Vitamin C", Price: 350, Stock: 1})
	require.NoError(t, err)

	f.callback(t, 42, "buy:1")
	f.callback(t, 42, "dlv:courier")
	f.text(t, 42, "Moscow")
	f.text(t, 42, "Ivanova Anna")
	f.text(t, 42, "+79991234567")

	// Stock vanishes between summary and confirm.
	_, _, err = f.shop.SetStock(1, 0)
	require.NoError(t, err)

	f.callback(t, 42, "confirm")
	assert.Contains(t, f.api.lastText(), "no longer in stock")
	assert.False(t, f.flow.Active(42))
}

func TestAddRemoveCallbacks(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.SaveProduct(store.Product{ID: 1, Name: "Vitamin C", Price: 350, Stock: 10})
	require.NoError(t, err)

	f.callback(t, 42, "add:1")
	require.NotEmpty(t, f.api.answers)
	assert.Contains(t, f.api.answers[len(f.api.answers)-1], "Added")

	lines, total, err := f.shop.CartLines(42)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 350, total)

	f.callback(t, 42, "rm:1")
	lines, _, err = f.shop.CartLines(42)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUnknownCallbackNotHandled(t *testing.T) {
	f := newFixture(t)
	handled := f.flow.HandleCallback(context.Background(), f.api, &models.CallbackQuery{
		ID:   "cb",
		From: models.User{ID: 42},
		Data: "something-else",
	})
	assert.False(t, handled)
}

func TestParseClientName(t *testing.T) {
	c, ok := checkout.ParseClientName("Ivanova Anna")
	require.True(t, ok)
	assert.Equal(t, "Ivanova", c.LastName)
	assert.Equal(t, "Anna", c.FirstName)

	c, ok = checkout.ParseClientName("  Petrov   Ivan Sergeevich ")
	require.True(t, ok)
	assert.Equal(t, "Sergeevich", c.Patronymic)

	_, ok = checkout.ParseClientName("Anna")
	assert.False(t, ok)
	_, ok = checkout.ParseClientName("a b c d")
	assert.False(t, ok)
}

func TestValidPhone(t *testing.T) {
	valid := []string{"+79991234567", "89991234567", "8 (999) 123-45-67"}
	for _, v := range valid {
		assert.True(t, checkout.ValidPhone(v), v)
	}
	invalid := []string{"", "12345", "phone", "+7999123456789012345"}
	for _, v := range invalid {
		assert.False(t, checkout.ValidPhone(v), v)
	}
}
