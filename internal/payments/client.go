package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Payment statuses the shop cares about.
const (
	StatusSucceeded = "succeeded"
	StatusPending   = "pending"
	StatusCanceled  = "canceled"
)

// Amount is a YooKassa money value, e.g. {"value":"350.00","currency":"RUB"}.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Confirmation carries the redirect the customer completes the payment on.
type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// Payment is the payment object as returned by the YooKassa API.
type Payment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Description  string            `json:"description,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CreatePaymentRequest describes a new redirect payment.
type CreatePaymentRequest struct {
	AmountValue string
	Currency    string
	Description string
	ReturnURL   string
	Metadata    map[string]string
}

// Client is the YooKassa payments API surface used by the shop.
type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (Payment, error)
	GetPayment(ctx context.Context, id string) (Payment, error)
}

// NewClient creates a YooKassa API client authenticated with the shop id and
// secret key.
func NewClient(baseURL, shopID, secretKey string, logger *zap.Logger) Client {
	return &httpClient{
		baseURL:   baseURL,
		shopID:    shopID,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger.Named("yookassa"),
	}
}

type httpClient struct {
	baseURL   string
	shopID    string
	secretKey string
	client    *http.Client
	logger    *zap.Logger
}

type createPaymentBody struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CreatePayment registers a redirect payment. Every call carries a fresh
// Idempotence-Key as the API requires.
func (c *httpClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (Payment, error) {
	body := createPaymentBody{
		Amount:       Amount{Value: req.AmountValue, Currency: req.Currency},
		Capture:      true,
		Confirmation: Confirmation{Type: "redirect", ReturnURL: req.ReturnURL},
		Description:  req.Description,
		Metadata:     req.Metadata,
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return Payment{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/payments", buf)
	if err != nil {
		return Payment{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", uuid.NewString())
	httpReq.SetBasicAuth(c.shopID, c.secretKey)

	var payment Payment
	if err := c.do(httpReq, &payment); err != nil {
		return Payment{}, fmt.Errorf("create payment: %w", err)
	}

	c.logger.Info("Payment created",
		zap.String("paymentID", payment.ID),
		zap.String("amount", payment.Amount.Value),
	)
	return payment, nil
}

// GetPayment fetches a payment by id over the authenticated API. The webhook
// handler uses it to verify incoming notifications before trusting them.
func (c *httpClient) GetPayment(ctx context.Context, id string) (Payment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v3/payments/"+url.PathEscape(id), nil)
	if err != nil {
		return Payment{}, err
	}
	httpReq.SetBasicAuth(c.shopID, c.secretKey)

	var payment Payment
	if err := c.do(httpReq, &payment); err != nil {
		return Payment{}, fmt.Errorf("get payment %s: %w", id, err)
	}
	return payment, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("yookassa %s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
