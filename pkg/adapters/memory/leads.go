package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
)

// LeadStore implements ports.LeadRepository in memory.
type LeadStore struct {
	leads  map[int64]domain.Lead
	nextID int64
	mu     sync.RWMutex
}

// NewLeadStore creates an empty in-memory lead repository.
func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make(map[int64]domain.Lead),
	}
}

// Save stores a copy of the lead and assigns it an id.
func (s *LeadStore) Save(ctx context.Context, lead *domain.Lead) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := *lead
	stored.ID = s.nextID
	stored.Name = lead.DisplayName()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.leads[stored.ID] = stored

	lead.ID = stored.ID
	lead.CreatedAt = stored.CreatedAt
	return stored.ID, nil
}

// Get returns a copy of the stored lead.
func (s *LeadStore) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	return &lead, nil
}

// All returns every stored lead ordered by id.
func (s *LeadStore) All() []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lead, 0, len(s.leads))
	for id := int64(1); id <= s.nextID; id++ {
		if lead, ok := s.leads[id]; ok {
			out = append(out, lead)
		}
	}
	return out
}
