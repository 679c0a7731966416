package store

import "sort"

// Products returns all products sorted by id.
func (s *Store) Products() ([]Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	return s.loadProducts()
}

// Product looks up a product by id.
func (s *Store) Product(id int) (Product, bool, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	products, err := s.loadProducts()
	if err != nil {
		return Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

// SaveProduct inserts or replaces a product. A zero id assigns the next free one.
func (s *Store) SaveProduct(p Product) (Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	products, err := s.loadProducts()
	if err != nil {
		return Product{}, err
	}

	if p.ID == 0 {
		maxID := 0
		for _, existing := range products {
			if existing.ID > maxID {
				maxID = existing.ID
			}
		}
		p.ID = maxID + 1
	}

	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, p)
	}

	return p, s.writeJSON(productsFile, products)
}

// DeleteProduct removes a product by id; it reports whether one was removed.
func (s *Store) DeleteProduct(id int) (bool, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	products, err := s.loadProducts()
	if err != nil {
		return false, err
	}

	kept := products[:0]
	removed := false
	for _, p := range products {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return false, nil
	}
	return true, s.writeJSON(productsFile, kept)
}

// SetStock sets the absolute stock of a product.
func (s *Store) SetStock(id, qty int) (Product, bool, error) {
	if qty < 0 {
		qty = 0
	}
	return s.updateStock(id, func(int) int { return qty })
}

// DecrementStock subtracts qty from the product's stock, flooring at zero.
// The returned product carries the new stock; prev is the stock before.
func (s *Store) DecrementStock(id, qty int) (p Product, prev int, ok bool, err error) {
	p, ok, err = s.updateStock(id, func(cur int) int {
		prev = cur
		if cur < qty {
			return 0
		}
		return cur - qty
	})
	return p, prev, ok, err
}

// IncrementStock adds qty back to the product's stock, used when a
// reservation is released.
func (s *Store) IncrementStock(id, qty int) (Product, bool, error) {
	return s.updateStock(id, func(cur int) int { return cur + qty })
}

func (s *Store) updateStock(id int, next func(cur int) int) (Product, bool, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	products, err := s.loadProducts()
	if err != nil {
		return Product{}, false, err
	}
	for i := range products {
		if products[i].ID != id {
			continue
		}
		products[i].Stock = next(products[i].Stock)
		if products[i].Stock < 0 {
			products[i].Stock = 0
		}
		return products[i], true, s.writeJSON(productsFile, products)
	}
	return Product{}, false, nil
}

func (s *Store) loadProducts() ([]Product, error) {
	var products []Product
	if err := s.readJSON(productsFile, &products); err != nil {
		return nil, err
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
