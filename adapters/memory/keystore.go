package memory

import (
	"context"
	"sync"
	"time"

	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
)

// KeyStore is an in-memory implementation of ports.KeyStore.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]apikey.Key // by ID
}

// NewKeyStore creates a new in-memory key store.
func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[string]apikey.Key)}
}

// GetByPrefix retrieves keys matching a lookup prefix.
func (s *KeyStore) GetByPrefix(ctx context.Context, prefix string) ([]apikey.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []apikey.Key
	for _, k := range s.keys {
		if k.Prefix == prefix {
			result = append(result, k)
		}
	}
	return result, nil
}

// GetByID retrieves a key by ID.
func (s *KeyStore) GetByID(ctx context.Context, id string) (apikey.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[id]
	if !ok {
		return apikey.Key{}, ErrNotFound
	}
	return k, nil
}

// Create stores a new key.
func (s *KeyStore) Create(ctx context.Context, k apikey.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[k.ID] = k
	return nil
}

// DeleteByUser removes the given keys belonging to a user.
func (s *KeyStore) DeleteByUser(ctx context.Context, userID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if k, ok := s.keys[id]; ok && k.UserID == userID {
			delete(s.keys, id)
		}
	}
	return nil
}

// ListByUser returns a user's keys, paged, newest first.
func (s *KeyStore) ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[apikey.Key], error) {
	cursor, err := asCursor(in)
	if err != nil {
		return paging.Page[apikey.Key]{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []entry
	for _, k := range s.keys {
		if k.UserID == userID {
			entries = append(entries, entry{key: sortKey(k.CreatedAt, k.ID), createdAt: k.CreatedAt, id: k.ID})
		}
	}

	ids, next, prev := pageEntries(entries, cursor)
	page := paging.Page[apikey.Key]{Next: next, Prev: prev}
	for _, id := range ids {
		page.Items = append(page.Items, s.keys[id])
	}
	return page, nil
}

// UpdateLastUsed updates the last used timestamp.
func (s *KeyStore) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.keys[id]; ok {
		k.LastUsed = &at
		s.keys[id] = k
	}
	return nil
}
