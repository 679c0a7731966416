package shop

import (
	"time"

	"go.uber.org/zap"

	"shopbot/internal/store"
)

// StockEventKind classifies a stock level transition.
type StockEventKind int

const (
	// StockLow means the stock dropped to the low threshold or below.
	StockLow StockEventKind = iota
	// StockOut means the product ran out entirely.
	StockOut
)

// StockEvent is emitted when a paid order pushes a product's stock across the
// low or out-of-stock boundary.
type StockEvent struct {
	Kind    StockEventKind
	Product store.Product
}

// PromotePending turns a pending checkout into a confirmed order once its
// payment succeeded. The transition is idempotent per payment id: replayed
// notifications report PromoteAlreadyProcessed instead of creating a second
// order. Stock is decremented here unless the pending entry already reserved
// it at checkout time.
func (s *service) PromotePending(orderID int, paymentID string) (store.Order, []StockEvent, PromoteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, found, err := s.store.PendingByID(orderID)
	if err != nil {
		return store.Order{}, nil, PromoteUnknown, err
	}

	if !found {
		// A retried notification for an order we already created.
		if _, exists, err := s.store.OrderByPaymentID(paymentID); err != nil {
			return store.Order{}, nil, PromoteUnknown, err
		} else if exists {
			return store.Order{}, nil, PromoteAlreadyProcessed, nil
		}
		return store.Order{}, nil, PromoteUnknown, nil
	}

	pid := pending.PaymentID
	if pid == "" {
		pid = paymentID
	}
	if _, exists, err := s.store.OrderByPaymentID(pid); err != nil {
		return store.Order{}, nil, PromoteUnknown, err
	} else if exists {
		// Order exists, only the pending entry is stale.
		if err := s.store.RemovePending(orderID); err != nil {
			return store.Order{}, nil, PromoteUnknown, err
		}
		return store.Order{}, nil, PromoteAlreadyProcessed, nil
	}

	createdAt := pending.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	order := store.Order{
		Number:    pending.Number,
		UserID:    pending.UserID,
		Username:  pending.Username,
		Items:     pending.Items,
		Total:     pending.Total,
		Client:    pending.Client,
		Address:   pending.Address,
		Delivery:  pending.Delivery,
		PaymentID: pid,
		Status:    store.StatusProcessing,
		CreatedAt: createdAt,
	}
	if err := s.store.AppendOrder(order); err != nil {
		return store.Order{}, nil, PromoteUnknown, err
	}

	events, err := s.settleStock(pending)
	if err != nil {
		// The order exists; stock bookkeeping failing is logged, not fatal.
		s.logger.Error("Failed to settle stock after payment",
			zap.Int("orderNumber", order.Number), zap.Error(err))
	}

	if pending.FromCart {
		if err := s.store.ClearCart(pending.UserID); err != nil {
			s.logger.Error("Failed to clear cart after payment",
				zap.Int64("userID", pending.UserID), zap.Error(err))
		}
	}

	if err := s.store.RemovePending(orderID); err != nil {
		return store.Order{}, nil, PromoteUnknown, err
	}

	s.logger.Info("Pending order promoted",
		zap.Int("orderNumber", order.Number),
		zap.String("paymentID", pid),
		zap.Int("total", order.Total),
	)
	return order, events, PromotePromoted, nil
}

// settleStock decrements stock for a freshly paid order and collects the
// low/out-of-stock transitions. For reserved checkouts the stock was already
// taken, so only the current levels are inspected.
func (s *service) settleStock(pending store.PendingOrder) ([]StockEvent, error) {
	var events []StockEvent
	seen := make(map[int]bool)
	for _, it := range pending.Items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true

		if pending.Reserved {
			p, ok, err := s.store.Product(it.ProductID)
			if err != nil {
				return events, err
			}
			if !ok {
				continue
			}
			switch {
			case p.Stock == 0:
				events = append(events, StockEvent{Kind: StockOut, Product: p})
			case p.Stock <= s.threshold:
				events = append(events, StockEvent{Kind: StockLow, Product: p})
			}
			continue
		}

		qty := 0
		for _, other := range pending.Items {
			if other.ProductID == it.ProductID {
				qty += other.Qty
			}
		}
		p, prev, ok, err := s.store.DecrementStock(it.ProductID, qty)
		if err != nil {
			return events, err
		}
		if !ok {
			continue
		}
		s.cards.invalidate(it.ProductID)
		switch {
		case p.Stock == 0 && prev > 0:
			events = append(events, StockEvent{Kind: StockOut, Product: p})
		case p.Stock <= s.threshold && prev > s.threshold:
			events = append(events, StockEvent{Kind: StockLow, Product: p})
		}
	}
	return events, nil
}
