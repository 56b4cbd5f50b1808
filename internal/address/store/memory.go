package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cepbook/internal/address/models"
	"cepbook/internal/sentinel"
	id "cepbook/pkg/domain"
)

// InMemory stores records in memory. Used by tests and when no persistence
// backend is configured.
type InMemory struct {
	mu      sync.RWMutex
	records []models.AddressRecord
}

// NewInMemory creates an in-memory record store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Create appends the record, rejecting duplicate IDs.
func (s *InMemory) Create(_ context.Context, record *models.AddressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == record.ID {
			return fmt.Errorf("record id already present: %w", sentinel.ErrInvalidInput)
		}
	}
	s.records = append(s.records, *record)
	return nil
}

// ListAll returns every record in insertion order.
func (s *InMemory) ListAll(_ context.Context) ([]models.AddressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AddressRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// GetByID scans for the record; absence is sentinel.ErrNotFound.
func (s *InMemory) GetByID(_ context.Context, recordID id.RecordID) (*models.AddressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == recordID {
			out := r
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// SearchByName filters by normalized substring match on the name.
func (s *InMemory) SearchByName(_ context.Context, query string) ([]models.AddressRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return matchByName(s.records, query), nil
}

// Delete removes the record if present.
func (s *InMemory) Delete(_ context.Context, recordID id.RecordID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == recordID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
