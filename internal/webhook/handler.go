package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"shopbot/internal/notify"
	"shopbot/internal/payments"
	"shopbot/internal/shop"
)

// Handler processes YooKassa payment notifications. It always answers
// HTTP 200 so the gateway does not retry forever; the JSON status field
// tells the gateway (and the logs) what happened.
type Handler struct {
	logger   *zap.Logger
	payments payments.Client
	shop     shop.Service
	notifier *notify.Notifier
}

// NewHandler creates the webhook handler.
func NewHandler(logger *zap.Logger, client payments.Client, shopService shop.Service, notifier *notify.Notifier) *Handler {
	return &Handler{
		logger:   logger.Named("webhook"),
		payments: client,
		shop:     shopService,
		notifier: notifier,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", zap.Error(err))
		h.respond(w, "ignored")
		return
	}

	n, err := payments.DecodeNotification(body)
	if err != nil {
		h.logger.Warn("Undecodable webhook body", zap.Error(err))
		h.respond(w, "ignored")
		return
	}
	if n.Event != payments.EventPaymentSucceeded {
		h.logger.Debug("Ignoring webhook event", zap.String("event", n.Event))
		h.respond(w, "ignored")
		return
	}

	// YooKassa notifications are unsigned. Re-fetch the payment over the
	// authenticated API and trust only what it says.
	payment, err := h.payments.GetPayment(r.Context(), n.Object.ID)
	if err != nil {
		h.logger.Warn("Failed to verify payment", zap.String("paymentID", n.Object.ID), zap.Error(err))
		h.respond(w, "invalid_signature")
		return
	}
	if payment.Status != payments.StatusSucceeded || !payment.Paid {
		h.logger.Warn("Payment verification mismatch",
			zap.String("paymentID", payment.ID),
			zap.String("status", payment.Status),
			zap.Bool("paid", payment.Paid))
		h.respond(w, "invalid_signature")
		return
	}

	verified := payments.Notification{Event: n.Event, Object: payment}
	orderID, ok := verified.OrderID()
	if !ok {
		h.logger.Warn("Payment without order metadata", zap.String("paymentID", payment.ID))
		h.respond(w, "ignored")
		return
	}

	order, events, outcome, err := h.shop.PromotePending(orderID, payment.ID)
	if err != nil {
		h.logger.Error("Failed to promote pending order",
			zap.Int("orderID", orderID),
			zap.String("paymentID", payment.ID),
			zap.Error(err))
		h.respond(w, "ignored")
		return
	}

	switch outcome {
	case shop.PromoteUnknown:
		h.logger.Warn("Paid order not found", zap.Int("orderID", orderID), zap.String("paymentID", payment.ID))
		h.respond(w, "ignored")
	case shop.PromoteAlreadyProcessed:
		h.logger.Info("Payment already processed", zap.Int("orderNumber", order.Number), zap.String("paymentID", payment.ID))
		h.respond(w, "ok")
	case shop.PromotePromoted:
		h.logger.Info("Order paid",
			zap.Int("orderNumber", order.Number),
			zap.Int64("userID", order.UserID),
			zap.Int("total", order.Total))
		h.notifier.PaymentSucceeded(r.Context(), order)
		h.notifier.NewPaidOrder(r.Context(), order)
		h.notifier.StockEvents(r.Context(), events)
		h.respond(w, "ok")
	default:
		h.respond(w, "ignored")
	}
}

func (h *Handler) respond(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		h.logger.Warn("Failed to write webhook response", zap.Error(err))
	}
}
