package store

// Orders returns all confirmed orders in insertion order.
func (s *Store) Orders() ([]Order, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	return s.loadOrders()
}

// OrdersByUser returns the user's orders, newest first.
func (s *Store) OrdersByUser(userID int64) ([]Order, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	orders, err := s.loadOrders()
	if err != nil {
		return nil, err
	}
	var out []Order
	for i := len(orders) - 1; i >= 0; i-- {
		if orders[i].UserID == userID {
			out = append(out, orders[i])
		}
	}
	return out, nil
}

// AppendOrder stores a confirmed order.
func (s *Store) AppendOrder(o Order) error {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	orders, err := s.loadOrders()
	if err != nil {
		return err
	}
	orders = append(orders, o)
	return s.writeJSON(ordersFile, orders)
}

// OrderByPaymentID finds an order created for the given payment.
func (s *Store) OrderByPaymentID(paymentID string) (Order, bool, error) {
	if paymentID == "" {
		return Order{}, false, nil
	}

	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	orders, err := s.loadOrders()
	if err != nil {
		return Order{}, false, err
	}
	for _, o := range orders {
		if o.PaymentID == paymentID {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}

// OrderByNumber finds an order by its customer-facing number.
func (s *Store) OrderByNumber(number int) (Order, bool, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	orders, err := s.loadOrders()
	if err != nil {
		return Order{}, false, err
	}
	for _, o := range orders {
		if o.Number == number {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}

// UpdateOrder applies fn to the order with the given number and persists the
// result. It reports whether the order was found.
func (s *Store) UpdateOrder(number int, fn func(*Order)) (Order, bool, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	orders, err := s.loadOrders()
	if err != nil {
		return Order{}, false, err
	}
	for i := range orders {
		if orders[i].Number != number {
			continue
		}
		fn(&orders[i])
		if err := s.writeJSON(ordersFile, orders); err != nil {
			return Order{}, false, err
		}
		return orders[i], true, nil
	}
	return Order{}, false, nil
}

// NextOrderNumber increments and persists the order counter. Numbers are
// unique and monotonic across restarts; abandoned checkouts leave gaps.
func (s *Store) NextOrderNumber() (int, error) {
	s.countersMu.Lock()
	defer s.countersMu.Unlock()

	var c counters
	if err := s.readJSON(countersFile, &c); err != nil {
		return 0, err
	}
	c.OrderNumber++
	if err := s.writeJSON(countersFile, c); err != nil {
		return 0, err
	}
	return c.OrderNumber, nil
}

func (s *Store) loadOrders() ([]Order, error) {
	var orders []Order
	if err := s.readJSON(ordersFile, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
