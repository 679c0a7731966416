package shop

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shopbot/internal/config"
	"shopbot/internal/store"
)

// Sentinel errors callers branch on.
var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrOutOfStock     = errors.New("not enough stock")
)

// CartLine is a cart item resolved against the current catalog.
type CartLine struct {
	Product  store.Product
	Qty      int
	Subtotal int
}

// PromoteOutcome classifies what happened to a pending order on payment.
type PromoteOutcome int

const (
	// PromoteUnknown means no pending entry nor existing order matched.
	PromoteUnknown PromoteOutcome = iota
	// PromoteAlreadyProcessed means an order for this payment already exists.
	PromoteAlreadyProcessed
	// PromotePromoted means a new order was created from the pending entry.
	PromotePromoted
)

// Service is the storefront domain API shared by the bot commands, the
// checkout flow and the payment webhook.
type Service interface {
	Catalog() ([]store.Product, error)
	ProductCard(id int) (string, bool, error)
	AddProduct(name, description string, price, stock int) (store.Product, error)
	RemoveProduct(id int) (bool, error)
	SetStock(id, qty int) (store.Product, bool, error)

	AddToCart(userID int64, productID, qty int) error
	RemoveFromCart(userID int64, productID int) error
	CartLines(userID int64) ([]CartLine, int, error)
	ClearCart(userID int64) error

	NextOrderNumber() (int, error)
	ReserveItems(items []store.OrderItem) error
	ReleaseItems(items []store.OrderItem)
	SavePending(p store.PendingOrder) error
	PendingOrders() ([]store.PendingOrder, error)
	CancelPending(id int) error

	PromotePending(orderID int, paymentID string) (store.Order, []StockEvent, PromoteOutcome, error)
	OrdersFor(userID int64) ([]store.Order, error)
	MarkShipped(number int, tracking string) (store.Order, bool, error)
	MarkDelivered(number int) (store.Order, bool, error)

	FormatPrice(amount int) string
	IsAdmin(userID int64) bool
	AdminIDs() ([]int64, error)
}

// NewService creates the storefront service.
func NewService(logger *zap.Logger, cfg *config.Config, st *store.Store) Service {
	return &service{
		logger:    logger.Named("shop"),
		cfg:       cfg,
		store:     st,
		cards:     newCardCache(cfg.Shop.CardCacheSize),
		threshold: cfg.Shop.LowStockThreshold,
	}
}

type service struct {
	logger    *zap.Logger
	cfg       *config.Config
	store     *store.Store
	cards     *cardCache
	threshold int

	// mu serializes multi-step stock transitions (reserve, release,
	// pending promotion), the in-process equivalent of the original
	// deployment's interprocess file locks.
	mu sync.Mutex
}

// Catalog returns all products ordered by id.
func (s *service) Catalog() ([]store.Product, error) {
	return s.store.Products()
}

// AddProduct creates a catalog entry with a fresh id.
func (s *service) AddProduct(name, description string, price, stock int) (store.Product, error) {
	if price < 0 || stock < 0 {
		return store.Product{}, fmt.Errorf("price and stock must not be negative")
	}
	p, err := s.store.SaveProduct(store.Product{Name: name, Description: description, Price: price, Stock: stock})
	if err != nil {
		return store.Product{}, err
	}
	s.cards.invalidate(p.ID)
	s.logger.Info("Product added", zap.Int("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// RemoveProduct deletes a catalog entry.
func (s *service) RemoveProduct(id int) (bool, error) {
	removed, err := s.store.DeleteProduct(id)
	if removed {
		s.cards.invalidate(id)
		s.logger.Info("Product removed", zap.Int("id", id))
	}
	return removed, err
}

// SetStock sets the absolute stock of a product.
func (s *service) SetStock(id, qty int) (store.Product, bool, error) {
	p, ok, err := s.store.SetStock(id, qty)
	if ok {
		s.cards.invalidate(id)
	}
	return p, ok, err
}

// AddToCart adds qty of a product to the user's cart, capped by stock.
func (s *service) AddToCart(userID int64, productID, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	p, ok, err := s.store.Product(productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownProduct
	}

	if p.Stock <= 0 {
		return ErrOutOfStock
	}

	return s.store.UpdateCart(userID, func(items []store.CartItem) []store.CartItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Qty += qty
				if items[i].Qty > p.Stock {
					items[i].Qty = p.Stock
				}
				return items
			}
		}
		if qty > p.Stock {
			qty = p.Stock
		}
		return append(items, store.CartItem{ProductID: productID, Qty: qty})
	})
}

// RemoveFromCart drops a product from the user's cart.
func (s *service) RemoveFromCart(userID int64, productID int) error {
	return s.store.UpdateCart(userID, func(items []store.CartItem) []store.CartItem {
		kept := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		return kept
	})
}

// CartLines resolves the user's cart against the catalog. Items whose product
// vanished are pruned; quantities are capped at current stock. The prune runs
// inside the cart's read-modify-write cycle so it cannot race a concurrent
// cart update.
func (s *service) CartLines(userID int64) ([]CartLine, int, error) {
	var (
		lines   []CartLine
		total   int
		loadErr error
	)
	err := s.store.UpdateCart(userID, func(items []store.CartItem) []store.CartItem {
		kept := items[:0]
		for _, it := range items {
			p, ok, err := s.store.Product(it.ProductID)
			if err != nil {
				loadErr = err
				return items
			}
			if !ok || p.Stock <= 0 {
				continue
			}
			qty := it.Qty
			if qty > p.Stock {
				qty = p.Stock
			}
			lines = append(lines, CartLine{Product: p, Qty: qty, Subtotal: p.Price * qty})
			kept = append(kept, store.CartItem{ProductID: it.ProductID, Qty: qty})
			total += p.Price * qty
		}
		return kept
	})
	if err != nil {
		return nil, 0, err
	}
	if loadErr != nil {
		return nil, 0, loadErr
	}
	return lines, total, nil
}

// ClearCart empties the user's cart.
func (s *service) ClearCart(userID int64) error {
	return s.store.ClearCart(userID)
}

// NextOrderNumber hands out the next order number.
func (s *service) NextOrderNumber() (int, error) {
	return s.store.NextOrderNumber()
}

// ReserveItems decrements stock for every item, all or nothing.
func (s *service) ReserveItems(items []store.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range items {
		p, ok, err := s.store.Product(it.ProductID)
		if err == nil && (!ok || p.Stock < it.Qty) {
			err = ErrOutOfStock
			if !ok {
				err = ErrUnknownProduct
			}
		}
		if err == nil {
			_, _, _, err = s.store.DecrementStock(it.ProductID, it.Qty)
		}
		if err != nil {
			// Roll back what was already reserved.
			s.releaseLocked(items[:i])
			return fmt.Errorf("reserve %q: %w", it.Name, err)
		}
		s.cards.invalidate(it.ProductID)
	}
	return nil
}

// ReleaseItems returns reserved stock to the catalog.
func (s *service) ReleaseItems(items []store.OrderItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(items)
}

func (s *service) releaseLocked(items []store.OrderItem) {
	for _, it := range items {
		if _, _, err := s.store.IncrementStock(it.ProductID, it.Qty); err != nil {
			s.logger.Error("Failed to release reserved stock",
				zap.Int("productID", it.ProductID), zap.Error(err))
		}
		s.cards.invalidate(it.ProductID)
	}
}

// SavePending stores a checkout awaiting payment.
func (s *service) SavePending(p store.PendingOrder) error {
	return s.store.AddPending(p)
}

// PendingOrders lists checkouts awaiting payment.
func (s *service) PendingOrders() ([]store.PendingOrder, error) {
	return s.store.PendingOrders()
}

// CancelPending removes a pending order and releases its reservation.
func (s *service) CancelPending(id int) error {
	p, ok, err := s.store.PendingByID(id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if p.Reserved {
		s.ReleaseItems(p.Items)
	}
	return s.store.RemovePending(id)
}

// OrdersFor returns the user's confirmed orders, newest first.
func (s *service) OrdersFor(userID int64) ([]store.Order, error) {
	return s.store.OrdersByUser(userID)
}

// MarkShipped sets the order status to shipped with a tracking link.
func (s *service) MarkShipped(number int, tracking string) (store.Order, bool, error) {
	return s.store.UpdateOrder(number, func(o *store.Order) {
		o.Status = store.StatusShipped
		o.Tracking = tracking
	})
}

// MarkDelivered sets the order status to delivered.
func (s *service) MarkDelivered(number int) (store.Order, bool, error) {
	return s.store.UpdateOrder(number, func(o *store.Order) {
		o.Status = store.StatusDelivered
	})
}

// FormatPrice renders an amount in the configured currency.
func (s *service) FormatPrice(amount int) string {
	if s.cfg.Shop.Currency == "RUB" {
		return fmt.Sprintf("%d ₽", amount)
	}
	return fmt.Sprintf("%d %s", amount, s.cfg.Shop.Currency)
}

// IsAdmin reports whether the user is a shop admin (config or admins.json).
func (s *service) IsAdmin(userID int64) bool {
	admins, err := s.AdminIDs()
	if err != nil {
		s.logger.Error("Failed to load admins", zap.Error(err))
		return false
	}
	for _, id := range admins {
		if id == userID {
			return true
		}
	}
	return false
}

// AdminIDs merges config-level admins with admins.json, deduplicated.
func (s *service) AdminIDs() ([]int64, error) {
	stored, err := s.store.Admins()
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	var out []int64
	for _, id := range append(append([]int64{}, s.cfg.Telegram.AdminIDs...), stored...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
