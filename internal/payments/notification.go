package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Webhook events the shop reacts to.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
)

// ErrInvalidNotification marks webhook bodies that do not decode into a
// YooKassa notification.
var ErrInvalidNotification = errors.New("invalid yookassa notification")

// Notification is the envelope YooKassa posts to the webhook.
type Notification struct {
	Type   string  `json:"type"`
	Event  string  `json:"event"`
	Object Payment `json:"object"`
}

// DecodeNotification parses a webhook body. YooKassa notifications carry no
// signature, so decoding only establishes shape; callers must verify the
// payment by re-fetching it over the authenticated API before trusting it.
func DecodeNotification(body []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	if n.Event == "" || n.Object.ID == "" {
		return Notification{}, fmt.Errorf("%w: missing event or payment id", ErrInvalidNotification)
	}
	return n, nil
}

// OrderID extracts the shop order id the payment was created for.
func (n Notification) OrderID() (int, bool) {
	raw, ok := n.Object.Metadata["order_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
