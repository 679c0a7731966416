package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"shopbot/internal/config"
	"shopbot/internal/payments"
	"shopbot/internal/shop"
	"shopbot/internal/store"
)

// Callback data understood by the flow. Catalog and cart keyboards emit these.
const (
	CallbackAddPrefix    = "add:"
	CallbackRemovePrefix = "rm:"
	CallbackBuyPrefix    = "buy:"
	CallbackCheckout     = "checkout"

	callbackDeliveryPrefix = "dlv:"
	callbackConfirm        = "confirm"
	callbackCancel         = "cancel"
)

const maxSessions = 256

// API is the Telegram surface the flow needs; *bot.Bot satisfies it.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type state int

const (
	stateDelivery state = iota
	stateAddress
	stateName
	statePhone
	stateConfirm
)

type session struct {
	state    state
	username string
	items    []store.OrderItem
	total    int
	fromCart bool
	delivery string
	address  string
	client   store.Client
}

// Flow drives a user through checkout: delivery method, address, full name,
// phone, confirmation, then a payment link. Abandoned sessions expire; stock
// is only reserved at the confirmation step, so expiry leaks nothing.
type Flow struct {
	logger   *zap.Logger
	cfg      *config.Config
	shop     shop.Service
	payments payments.Client
	sessions *expirable.LRU[int64, *session]
}

// NewFlow creates the checkout flow.
func NewFlow(logger *zap.Logger, cfg *config.Config, shopService shop.Service, client payments.Client) *Flow {
	ttl := time.Duration(cfg.Shop.SessionTTLMinutes) * time.Minute
	return &Flow{
		logger:   logger.Named("checkout"),
		cfg:      cfg,
		shop:     shopService,
		payments: client,
		sessions: expirable.NewLRU[int64, *session](maxSessions, nil, ttl),
	}
}

// Active reports whether the user is mid-checkout.
func (f *Flow) Active(userID int64) bool {
	_, ok := f.sessions.Get(userID)
	return ok
}

// HandleCallback processes inline keyboard presses. It returns false for
// callback data the flow does not own.
func (f *Flow) HandleCallback(ctx context.Context, api API, cq *models.CallbackQuery) bool {
	userID := cq.From.ID
	data := cq.Data

	switch {
	case strings.HasPrefix(data, CallbackAddPrefix):
		f.answer(ctx, api, cq.ID, f.addToCart(userID, strings.TrimPrefix(data, CallbackAddPrefix)))
	case strings.HasPrefix(data, CallbackRemovePrefix):
		f.answer(ctx, api, cq.ID, f.removeFromCart(userID, strings.TrimPrefix(data, CallbackRemovePrefix)))
	case strings.HasPrefix(data, CallbackBuyPrefix):
		f.answer(ctx, api, cq.ID, "")
		f.startSingle(ctx, api, userID, cq.From.Username, strings.TrimPrefix(data, CallbackBuyPrefix))
	case data == CallbackCheckout:
		f.answer(ctx, api, cq.ID, "")
		f.startFromCart(ctx, api, userID, cq.From.Username)
	case strings.HasPrefix(data, callbackDeliveryPrefix):
		f.answer(ctx, api, cq.ID, "")
		f.chooseDelivery(ctx, api, userID, strings.TrimPrefix(data, callbackDeliveryPrefix))
	case data == callbackConfirm:
		f.answer(ctx, api, cq.ID, "")
		f.confirm(ctx, api, userID)
	case data == callbackCancel:
		f.answer(ctx, api, cq.ID, "")
		f.cancel(ctx, api, userID)
	default:
		return false
	}
	return true
}

// HandleText feeds a plain message into the active session. It returns false
// when the user has no session, so the router can fall through to commands.
func (f *Flow) HandleText(ctx context.Context, api API, msg *models.Message) bool {
	s, ok := f.sessions.Get(msg.From.ID)
	if !ok {
		return false
	}
	text := strings.TrimSpace(msg.Text)

	switch s.state {
	case stateAddress:
		if text == "" {
			f.send(ctx, api, msg.From.ID, "Please send the delivery address as text.")
			return true
		}
		s.address = text
		s.state = stateName
		f.sessions.Add(msg.From.ID, s)
		f.send(ctx, api, msg.From.ID, "👤 Now send the recipient's full name (last name, first name, optional patronymic).")
	case stateName:
		client, ok := ParseClientName(text)
		if !ok {
			f.send(ctx, api, msg.From.ID, "Please send 2 or 3 words: last name, first name and an optional patronymic.")
			return true
		}
		s.client = client
		s.state = statePhone
		f.sessions.Add(msg.From.ID, s)
		f.send(ctx, api, msg.From.ID, "📞 Send a contact phone number, for example +79991234567.")
	case statePhone:
		if !ValidPhone(text) {
			f.send(ctx, api, msg.From.ID, "That does not look like a phone number. Try again, for example +79991234567.")
			return true
		}
		s.client.Phone = text
		s.state = stateConfirm
		f.sessions.Add(msg.From.ID, s)
		f.sendSummary(ctx, api, msg.From.ID, s)
	default:
		f.send(ctx, api, msg.From.ID, "Please use the buttons above to continue.")
	}
	return true
}

func (f *Flow) addToCart(userID int64, rawID string) string {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return "Unknown product."
	}
	switch err := f.shop.AddToCart(userID, id, 1); err {
	case nil:
		return "🛒 Added to cart"
	case shop.ErrUnknownProduct:
		return "This product is no longer available."
	case shop.ErrOutOfStock:
		return "Out of stock."
	default:
		f.logger.Error("Failed to add to cart", zap.Int64("userID", userID), zap.Error(err))
		return "Something went wrong, try again."
	}
}

func (f *Flow) removeFromCart(userID int64, rawID string) string {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return "Unknown product."
	}
	if err := f.shop.RemoveFromCart(userID, id); err != nil {
		f.logger.Error("Failed to remove from cart", zap.Int64("userID", userID), zap.Error(err))
		return "Something went wrong, try again."
	}
	return "Removed from cart"
}

func (f *Flow) startSingle(ctx context.Context, api API, userID int64, username, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		f.send(ctx, api, userID, "Unknown product.")
		return
	}
	products, err := f.shop.Catalog()
	if err != nil {
		f.logger.Error("Failed to load catalog", zap.Error(err))
		f.send(ctx, api, userID, "Something went wrong, try again.")
		return
	}
	for _, p := range products {
		if p.ID != id {
			continue
		}
		if p.Stock <= 0 {
			f.send(ctx, api, userID, "⛔ This product is out of stock.")
			return
		}
		f.begin(ctx, api, userID, &session{
			username: username,
			items:    []store.OrderItem{{ProductID: p.ID, Name: p.Name, Price: p.Price, Qty: 1}},
			total:    p.Price,
		})
		return
	}
	f.send(ctx, api, userID, "This product is no longer available.")
}

func (f *Flow) startFromCart(ctx context.Context, api API, userID int64, username string) {
	lines, total, err := f.shop.CartLines(userID)
	if err != nil {
		f.logger.Error("Failed to load cart", zap.Int64("userID", userID), zap.Error(err))
		f.send(ctx, api, userID, "Something went wrong, try again.")
		return
	}
	if len(lines) == 0 {
		f.send(ctx, api, userID, "🛒 Your cart is empty.")
		return
	}
	items := make([]store.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, store.OrderItem{ProductID: l.Product.ID, Name: l.Product.Name, Price: l.Product.Price, Qty: l.Qty})
	}
	f.begin(ctx, api, userID, &session{
		username: username,
		items:    items,
		total:    total,
		fromCart: true,
	})
}

func (f *Flow) begin(ctx context.Context, api API, userID int64, s *session) {
	s.state = stateDelivery
	f.sessions.Add(userID, s)

	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: "🚚 Courier", CallbackData: callbackDeliveryPrefix + "courier"}},
		{{Text: "🏠 Pickup point", CallbackData: callbackDeliveryPrefix + "pickup"}},
		{{Text: "📮 Post", CallbackData: callbackDeliveryPrefix + "post"}},
		{{Text: "❌ Cancel", CallbackData: callbackCancel}},
	}}
	if _, err := api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      userID,
		Text:        fmt.Sprintf("🧾 Checkout, total %s.\n\nChoose a delivery method:", f.shop.FormatPrice(s.total)),
		ReplyMarkup: kb,
	}); err != nil {
		f.logger.Warn("Failed to send checkout prompt", zap.Int64("userID", userID), zap.Error(err))
	}
}

func (f *Flow) chooseDelivery(ctx context.Context, api API, userID int64, method string) {
	s, ok := f.sessions.Get(userID)
	if !ok || s.state != stateDelivery {
		f.send(ctx, api, userID, "This checkout has expired. Start again from the cart.")
		return
	}
	switch method {
	case "courier", "pickup", "post":
	default:
		return
	}
	s.delivery = method
	s.state = stateAddress
	f.sessions.Add(userID, s)
	f.send(ctx, api, userID, "📍 Send the delivery address as a message.")
}

func (f *Flow) sendSummary(ctx context.Context, api API, userID int64, s *session) {
	var b strings.Builder
	b.WriteString("🧾 Check your order:\n\n")
	for _, it := range s.items {
		fmt.Fprintf(&b, "• %s × %d = %s\n", it.Name, it.Qty, f.shop.FormatPrice(it.Price*it.Qty))
	}
	fmt.Fprintf(&b, "\n💰 Total: %s\n🚚 Delivery: %s\n📍 Address: %s\n👤 %s %s %s\n📞 %s",
		f.shop.FormatPrice(s.total), s.delivery, s.address,
		s.client.LastName, s.client.FirstName, s.client.Patronymic, s.client.Phone)

	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: "✅ Confirm and pay", CallbackData: callbackConfirm}},
		{{Text: "❌ Cancel", CallbackData: callbackCancel}},
	}}
	if _, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: userID, Text: b.String(), ReplyMarkup: kb}); err != nil {
		f.logger.Warn("Failed to send order summary", zap.Int64("userID", userID), zap.Error(err))
	}
}

func (f *Flow) confirm(ctx context.Context, api API, userID int64) {
	s, ok := f.sessions.Get(userID)
	if !ok || s.state != stateConfirm {
		f.send(ctx, api, userID, "This checkout has expired. Start again from the cart.")
		return
	}

	number, err := f.shop.NextOrderNumber()
	if err != nil {
		f.logger.Error("Failed to allocate order number", zap.Error(err))
		f.send(ctx, api, userID, "Something went wrong, try again.")
		return
	}

	if err := f.shop.ReserveItems(s.items); err != nil {
		f.sessions.Remove(userID)
		if err == shop.ErrOutOfStock || err == shop.ErrUnknownProduct {
			f.send(ctx, api, userID, "⛔ Some items are no longer in stock. Check the catalog and try again.")
			return
		}
		f.logger.Error("Failed to reserve items", zap.Int("orderNumber", number), zap.Error(err))
		f.send(ctx, api, userID, "Something went wrong, try again.")
		return
	}

	payment, err := f.payments.CreatePayment(ctx, payments.CreatePaymentRequest{
		AmountValue: fmt.Sprintf("%d.00", s.total),
		Currency:    f.cfg.Shop.Currency,
		Description: fmt.Sprintf("Order #%d", number),
		ReturnURL:   f.cfg.YooKassa.ReturnURL,
		Metadata: map[string]string{
			"order_id": strconv.Itoa(number),
			"user_id":  strconv.FormatInt(userID, 10),
		},
	})
	if err != nil {
		f.shop.ReleaseItems(s.items)
		f.sessions.Remove(userID)
		f.logger.Error("Failed to create payment", zap.Int("orderNumber", number), zap.Error(err))
		f.send(ctx, api, userID, "Payment service is unavailable right now. Your items were not charged, try again later.")
		return
	}

	pending := store.PendingOrder{
		ID:        number,
		Number:    number,
		UserID:    userID,
		Username:  s.username,
		Items:     s.items,
		Total:     s.total,
		Client:    s.client,
		Address:   s.address,
		Delivery:  s.delivery,
		PaymentID: payment.ID,
		Reserved:  true,
		FromCart:  s.fromCart,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.shop.SavePending(pending); err != nil {
		f.shop.ReleaseItems(s.items)
		f.sessions.Remove(userID)
		f.logger.Error("Failed to save pending order", zap.Int("orderNumber", number), zap.Error(err))
		f.send(ctx, api, userID, "Something went wrong, try again.")
		return
	}

	f.sessions.Remove(userID)

	url := ""
	if payment.Confirmation != nil {
		url = payment.Confirmation.ConfirmationURL
	}
	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: "💳 Pay", URL: url}},
	}}
	if _, err := api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      userID,
		Text:        fmt.Sprintf("💳 Order #%d is waiting for payment: %s\n\nItems are reserved for you until the payment completes.", number, f.shop.FormatPrice(s.total)),
		ReplyMarkup: kb,
	}); err != nil {
		f.logger.Warn("Failed to send payment link", zap.Int64("userID", userID), zap.Error(err))
	}
}

func (f *Flow) cancel(ctx context.Context, api API, userID int64) {
	if _, ok := f.sessions.Get(userID); !ok {
		return
	}
	f.sessions.Remove(userID)
	f.send(ctx, api, userID, "❌ Checkout cancelled.")
}

func (f *Flow) send(ctx context.Context, api API, chatID int64, text string) {
	if _, err := api.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		f.logger.Warn("Failed to send message", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

func (f *Flow) answer(ctx context.Context, api API, callbackID, text string) {
	if _, err := api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callbackID, Text: text}); err != nil {
		f.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}
