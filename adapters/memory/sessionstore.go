package memory

import (
	"context"
	"sync"
	"time"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/domain/session"
)

// SessionStore is an in-memory implementation of ports.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session.Session // by ID
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]session.Session)}
}

// GetBySignature retrieves a session by its signature token.
func (s *SessionStore) GetBySignature(ctx context.Context, signature string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.Signature == signature {
			return sess, nil
		}
	}
	return session.Session{}, ErrNotFound
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	return nil
}

// DeleteByUser removes the given sessions belonging to a user.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if sess, ok := s.sessions[id]; ok && sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// ListByUser returns a user's sessions, paged, newest first.
func (s *SessionStore) ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[session.Session], error) {
	cursor, err := asCursor(in)
	if err != nil {
		return paging.Page[session.Session]{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []entry
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			entries = append(entries, entry{key: sortKey(sess.IssuedAt, sess.ID), createdAt: sess.IssuedAt, id: sess.ID})
		}
	}

	ids, next, prev := pageEntries(entries, cursor)
	page := paging.Page[session.Session]{Next: next, Prev: prev}
	for _, id := range ids {
		page.Items = append(page.Items, s.sessions[id])
	}
	return page, nil
}

// Touch updates the last seen timestamp.
func (s *SessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.LastSeen = &at
		s.sessions[id] = sess
	}
	return nil
}
