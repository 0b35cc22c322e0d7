package memory

import (
	"context"
	"sync"

	"github.com/artpar/launchpad/domain/account"
	"github.com/artpar/launchpad/domain/paging"
)

// AccountStore is an in-memory implementation of ports.AccountStore.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]account.Account // by ID
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]account.Account)}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, ErrNotFound
	}
	return a, nil
}

// GetByEmail retrieves an account by email.
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, ErrNotFound
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = a
	return nil
}

// Update modifies an existing account.
func (s *AccountStore) Update(ctx context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return ErrNotFound
	}
	s.accounts[a.ID] = a
	return nil
}

// Delete removes an account.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

// List returns accounts, paged, newest first.
func (s *AccountStore) List(ctx context.Context, in paging.Instruction) (paging.Page[account.Account], error) {
	cursor, err := asCursor(in)
	if err != nil {
		return paging.Page[account.Account]{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []entry
	for _, a := range s.accounts {
		entries = append(entries, entry{key: sortKey(a.CreatedAt, a.ID), createdAt: a.CreatedAt, id: a.ID})
	}

	ids, next, prev := pageEntries(entries, cursor)
	page := paging.Page[account.Account]{Next: next, Prev: prev}
	for _, id := range ids {
		page.Items = append(page.Items, s.accounts[id])
	}
	return page, nil
}

// Count returns the total account count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}
