// Package store provides JSON file persistence for the shop data.
//
// Every collection lives in its own file under the data directory so the
// directory stays bind-mount compatible and editable by external tooling.
// Writes are atomic (temp file + rename) and each file is guarded by its own
// mutex, serializing read-modify-write cycles within the process.
package store

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	productsFile = "products.json"
	ordersFile   = "orders.json"
	pendingFile  = "pending.json"
	cartsFile    = "carts.json"
	adminsFile   = "admins.json"
	countersFile = "counters.json"
)

// Order statuses as persisted in orders.json.
const (
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
)

// Product is a single catalog entry.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
}

// CartItem is one line of a user's cart.
type CartItem struct {
	ProductID int `json:"product_id"`
	Qty       int `json:"qty"`
}

// OrderItem is a priced snapshot of a product at checkout time.
type OrderItem struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Qty       int    `json:"qty"`
}

// Client holds the customer details collected during checkout.
type Client struct {
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Patronymic string `json:"patronymic,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Order is a confirmed, paid order.
type Order struct {
	Number    int         `json:"number"`
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     int         `json:"total"`
	Client    Client      `json:"client"`
	Address   string      `json:"address,omitempty"`
	Delivery  string      `json:"delivery,omitempty"`
	PaymentID string      `json:"payment_id,omitempty"`
	Status    string      `json:"status"`
	Tracking  string      `json:"tracking,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// PendingOrder is a checkout awaiting payment confirmation.
type PendingOrder struct {
	ID        int         `json:"id"`
	Number    int         `json:"number"`
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     int         `json:"total"`
	Client    Client      `json:"client"`
	Address   string      `json:"address,omitempty"`
	Delivery  string      `json:"delivery,omitempty"`
	PaymentID string      `json:"payment_id,omitempty"`
	Reserved  bool        `json:"reserved,omitempty"`
	FromCart  bool        `json:"from_cart,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type counters struct {
	OrderNumber int `json:"order_number"`
}

// Store persists shop data as JSON files under a single directory.
type Store struct {
	dir string

	productsMu sync.Mutex
	ordersMu   sync.Mutex
	pendingMu  sync.Mutex
	cartsMu    sync.Mutex
	adminsMu   sync.Mutex
	countersMu sync.Mutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory the store operates on.
func (s *Store) Dir() string { return s.dir }
