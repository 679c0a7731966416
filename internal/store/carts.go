package store

import "strconv"

// Carts are persisted as a map keyed by the Telegram user id.

// Cart returns the user's cart items, empty when there is none.
func (s *Store) Cart(userID int64) ([]CartItem, error) {
	s.cartsMu.Lock()
	defer s.cartsMu.Unlock()

	carts, err := s.loadCarts()
	if err != nil {
		return nil, err
	}
	return carts[cartKey(userID)], nil
}

// SaveCart replaces the user's cart.
func (s *Store) SaveCart(userID int64, items []CartItem) error {
	s.cartsMu.Lock()
	defer s.cartsMu.Unlock()

	carts, err := s.loadCarts()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		delete(carts, cartKey(userID))
	} else {
		carts[cartKey(userID)] = items
	}
	return s.writeJSON(cartsFile, carts)
}

// UpdateCart applies fn to the user's cart and persists the result. The
// whole read-modify-write cycle runs under the carts mutex so concurrent
// updates for the same user cannot lose writes. An empty result removes the
// cart.
func (s *Store) UpdateCart(userID int64, fn func(items []CartItem) []CartItem) error {
	s.cartsMu.Lock()
	defer s.cartsMu.Unlock()

	carts, err := s.loadCarts()
	if err != nil {
		return err
	}
	items := fn(carts[cartKey(userID)])
	if len(items) == 0 {
		delete(carts, cartKey(userID))
	} else {
		carts[cartKey(userID)] = items
	}
	return s.writeJSON(cartsFile, carts)
}

// ClearCart removes the user's cart entirely.
func (s *Store) ClearCart(userID int64) error {
	return s.SaveCart(userID, nil)
}

func (s *Store) loadCarts() (map[string][]CartItem, error) {
	carts := make(map[string][]CartItem)
	if err := s.readJSON(cartsFile, &carts); err != nil {
		return nil, err
	}
	return carts, nil
}

// JSON object keys must be strings.
func cartKey(userID int64) string { return strconv.FormatInt(userID, 10) }
