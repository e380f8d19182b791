package store

import (
	"context"
	"sync"
	"time"

	"regdesk/internal/registrant/models"
	id "regdesk/pkg/domain"
	"regdesk/pkg/platform/sentinel"
)

// ErrNotFound is returned when no registrant matches a lookup.
var ErrNotFound = sentinel.ErrNotFound

// InMemory keeps registrants in process memory, in insertion order. It is the
// default store when no database is configured.
type InMemory struct {
	mu      sync.RWMutex
	records []*models.Registrant
	byID    map[id.RegistrantID]int
}

// NewInMemory creates an empty in-memory registrant store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID: make(map[id.RegistrantID]int),
	}
}

func (s *InMemory) Create(_ context.Context, r *models.Registrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[r.ID] = len(s.records)
	s.records = append(s.records, r.Clone())
	return nil
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Registrant, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, registrantID id.RegistrantID) (*models.Registrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx, ok := s.byID[registrantID]; ok {
		return s.records[idx].Clone(), nil
	}
	return nil, ErrNotFound
}

// CountByEmail returns how many registrants share the normalized email.
func (s *InMemory) CountByEmail(_ context.Context, email string) (int, error) {
	key := models.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if models.NormalizeEmail(r.Email) == key {
			n++
		}
	}
	return n, nil
}

// UpdatePaymentStatus sets the status on the most recently created registrant
// whose normalized email matches.
func (s *InMemory) UpdatePaymentStatus(_ context.Context, email string, status models.PaymentStatus, now time.Time) (*models.Registrant, error) {
	key := models.NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *models.Registrant
	for _, r := range s.records {
		if models.NormalizeEmail(r.Email) != key {
			continue
		}
		// later insertions win ties
		if target == nil || !r.CreatedAt.Before(target.CreatedAt) {
			target = r
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}
	target.SetPaymentStatus(status, now)
	return target.Clone(), nil
}
