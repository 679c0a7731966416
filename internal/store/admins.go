package store

// Admins returns the admin user ids stored in admins.json. Config-level
// admins are merged in by the shop service.
func (s *Store) Admins() ([]int64, error) {
	s.adminsMu.Lock()
	defer s.adminsMu.Unlock()

	var admins []int64
	if err := s.readJSON(adminsFile, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// AddAdmin records an admin user id; duplicates are ignored.
func (s *Store) AddAdmin(userID int64) error {
	s.adminsMu.Lock()
	defer s.adminsMu.Unlock()

	var admins []int64
	if err := s.readJSON(adminsFile, &admins); err != nil {
		return err
	}
	for _, id := range admins {
		if id == userID {
			return nil
		}
	}
	admins = append(admins, userID)
	return s.writeJSON(adminsFile, admins)
}
