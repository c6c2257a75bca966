package prefs

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/wellnesslens/backend/internal/domain"
)

// MemoryStore is a thread-safe in-memory preference store holding one
// wellness profile per page context key. Profiles are stored and returned
// as detached copies so callers can't mutate stored state through a shared
// slice.
type MemoryStore struct {
	data  map[string]domain.UserProfile
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]domain.UserProfile),
	}
}

// Get retrieves the profile saved for a key. Returns ErrProfileNotFound
// when nothing has been saved; callers decide whether to apply defaults.
func (s *MemoryStore) Get(ctx context.Context, key string) (*domain.UserProfile, error) {
	s.mutex.RLock()
	stored, exists := s.data[key]
	s.mutex.RUnlock()

	if !exists {
		return nil, domain.ErrProfileNotFound
	}
	return copyProfile(&stored)
}

// Put saves a profile for a key, replacing any previous value.
func (s *MemoryStore) Put(ctx context.Context, key string, profile *domain.UserProfile) error {
	if profile == nil {
		return domain.ErrProfileNotFound
	}

	detached, err := copyProfile(profile)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[key] = *detached
	return nil
}

// Delete removes the profile for a key. Deleting a missing key is not an
// error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.data, key)
	return nil
}

// Size returns the number of saved profiles (for debugging/monitoring).
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Clear removes all saved profiles.
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]domain.UserProfile)
}

// copyProfile detaches a profile through a JSON round-trip, matching the
// serialization the extension's preference storage uses.
func copyProfile(profile *domain.UserProfile) (*domain.UserProfile, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	var copied domain.UserProfile
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}
