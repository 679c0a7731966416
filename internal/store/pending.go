package store

// PendingOrders returns all checkouts awaiting payment.
func (s *Store) PendingOrders() ([]PendingOrder, error) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	return s.loadPending()
}

// PendingByID looks up a pending order by its id.
func (s *Store) PendingByID(id int) (PendingOrder, bool, error) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	pending, err := s.loadPending()
	if err != nil {
		return PendingOrder{}, false, err
	}
	for _, p := range pending {
		if p.ID == id {
			return p, true, nil
		}
	}
	return PendingOrder{}, false, nil
}

// AddPending appends a pending order, replacing any entry with the same id.
func (s *Store) AddPending(p PendingOrder) error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	pending, err := s.loadPending()
	if err != nil {
		return err
	}
	for i := range pending {
		if pending[i].ID == p.ID {
			pending[i] = p
			return s.writeJSON(pendingFile, pending)
		}
	}
	pending = append(pending, p)
	return s.writeJSON(pendingFile, pending)
}

// RemovePending deletes a pending order by id; missing ids are not an error.
func (s *Store) RemovePending(id int) error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	pending, err := s.loadPending()
	if err != nil {
		return err
	}
	kept := pending[:0]
	for _, p := range pending {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.writeJSON(pendingFile, kept)
}

func (s *Store) loadPending() ([]PendingOrder, error) {
	var pending []PendingOrder
	if err := s.readJSON(pendingFile, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}
