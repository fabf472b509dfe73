package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store with in-memory storage. Used in tests and
// when no Firestore project is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[string]*MerchantMapping
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mappings: make(map[string]*MerchantMapping),
	}
}

func mappingKey(userID, merchantName string) string {
	return userID + "/" + merchantName
}

// GetMerchantMapping returns the mapping for a merchant, or nil if absent.
func (s *MemoryStore) GetMerchantMapping(_ context.Context, userID, merchantName string) (*MerchantMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mappings[mappingKey(userID, merchantName)]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

// ListMerchantMappings returns the user's mappings sorted by confidence
// descending, most recently updated first within equal confidence.
func (s *MemoryStore) ListMerchantMappings(_ context.Context, userID string) ([]*MerchantMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*MerchantMapping
	for _, m := range s.mappings {
		if m.UserID != userID {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// UpsertMerchantMapping creates or replaces a mapping.
func (s *MemoryStore) UpsertMerchantMapping(_ context.Context, mapping *MerchantMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *mapping
	s.mappings[mappingKey(mapping.UserID, mapping.MerchantName)] = &copied
	return nil
}

// DeleteMerchantMapping removes a mapping, reporting whether it existed.
func (s *MemoryStore) DeleteMerchantMapping(_ context.Context, userID, merchantName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := mappingKey(userID, merchantName)
	if _, ok := s.mappings[key]; !ok {
		return false, nil
	}
	delete(s.mappings, key)
	return true, nil
}
