package memory

// Held reports how many session records the store retains, expired or not.
func (s *SessionStore) Held() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
