package payments_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopbot/internal/payments"
)

func TestCreatePayment(t *testing.T) {
	var gotBody map[string]any
	var gotIdempotenceKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/payments", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "shop-1", user)
		assert.Equal(t, "sk-1", pass)

		gotIdempotenceKey = r.Header.Get("Idempotence-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "pay-1",
			"status": "pending",
			"amount": {"value": "700.00", "currency": "RUB"},
			"confirmation": {"type": "redirect", "confirmation_url": "https://yookassa.example/confirm/pay-1"},
			"metadata": {"order_id": "12", "user_id": "42"}
		}`))
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "shop-1", "sk-1", zap.NewNop())

	payment, err := client.CreatePayment(context.Background(), payments.CreatePaymentRequest{
		AmountValue: "700.00",
		Currency:    "RUB",
		Description: "Order #12",
		ReturnURL:   "https://t.me/examplebot",
		Metadata:    map[string]string{"order_id": "12", "user_id": "42"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pay-1", payment.ID)
	assert.Equal(t, payments.StatusPending, payment.Status)
	require.NotNil(t, payment.Confirmation)
	assert.Equal(t, "https://yookassa.example/confirm/pay-1", payment.Confirmation.ConfirmationURL)

	assert.NotEmpty(t, gotIdempotenceKey)
	amount := gotBody["amount"].(map[string]any)
	assert.Equal(t, "700.00", amount["value"])
	assert.Equal(t, true, gotBody["capture"])
	confirmation := gotBody["confirmation"].(map[string]any)
	assert.Equal(t, "redirect", confirmation["type"])
	assert.Equal(t, "https://t.me/examplebot", confirmation["return_url"])
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v3/payments/pay-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "pay-1", "status": "succeeded", "paid": true, "amount": {"value": "700.00", "currency": "RUB"}}`))
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "shop-1", "sk-1", zap.NewNop())

	payment, err := client.GetPayment(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, payments.StatusSucceeded, payment.Status)
	assert.True(t, payment.Paid)
}

func TestGetPaymentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "shop-1", "sk-1", zap.NewNop())

	_, err := client.GetPayment(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDecodeNotification(t *testing.T) {
	body := []byte(`{
		"type": "notification",
		"event": "payment.succeeded",
		"object": {
			"id": "pay-1",
			"status": "succeeded",
			"metadata": {"order_id": "12", "user_id": "42"}
		}
	}`)

	n, err := payments.DecodeNotification(body)
	require.NoError(t, err)
	assert.Equal(t, payments.EventPaymentSucceeded, n.Event)
	assert.Equal(t, "pay-1", n.Object.ID)

	orderID, ok := n.OrderID()
	require.True(t, ok)
	assert.Equal(t, 12, orderID)
}

func TestDecodeNotificationInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":         `{{`,
		"missing event":    `{"object": {"id": "pay-1"}}`,
		"missing payment":  `{"event": "payment.succeeded", "object": {}}`,
		"empty body shape": `[]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := payments.DecodeNotification([]byte(body))
			assert.ErrorIs(t, err, payments.ErrInvalidNotification)
		})
	}
}

func TestNotificationOrderID(t *testing.T) {
	invalid := []string{"abc", "7abc", "7.5", "-3", "0", ""}
	for _, raw := range invalid {
		n := payments.Notification{Object: payments.Payment{Metadata: map[string]string{"order_id": raw}}}
		_, ok := n.OrderID()
		assert.False(t, ok, "order_id %q", raw)
	}

	n := payments.Notification{Object: payments.Payment{}}
	_, ok := n.OrderID()
	assert.False(t, ok)
}
