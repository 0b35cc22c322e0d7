package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/domain/session"
	"github.com/artpar/launchpad/ports"
	"github.com/rs/zerolog"
)

// ErrInvalidSession is returned when a session signature does not resolve
// to a live session.
var ErrInvalidSession = errors.New("invalid session")

// SessionService manages authenticated sessions.
type SessionService struct {
	sessions ports.SessionStore
	clock    ports.Clock
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewSessionService creates a new session service. A non-positive ttl falls
// back to the domain default.
func NewSessionService(sessions ports.SessionStore, clock ports.Clock, ttl time.Duration, logger zerolog.Logger) *SessionService {
	return &SessionService{sessions: sessions, clock: clock, ttl: ttl, logger: logger}
}

// Issue creates and stores a session for a user. The returned session
// carries the signature to hand to the client.
func (s *SessionService) Issue(ctx context.Context, userID, userAgent string) (session.Session, error) {
	sess := session.Issue(userID, userAgent, s.ttl, s.clock.Now().UTC())
	if err := s.sessions.Create(ctx, sess); err != nil {
		return session.Session{}, fmt.Errorf("store session: %w", err)
	}
	s.logger.Info().Str("session_id", sess.ID).Str("user_id", userID).Msg("session issued")
	return sess, nil
}

// List returns a page of the user's sessions.
func (s *SessionService) List(ctx context.Context, userID string, in paging.Instruction) (paging.Page[session.Session], error) {
	return s.sessions.ListByUser(ctx, userID, in)
}

// BulkDelete revokes the user's sessions with the given IDs.
func (s *SessionService) BulkDelete(ctx context.Context, userID string, ids []string) error {
	if err := s.sessions.DeleteByUser(ctx, userID, ids); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Int("count", len(ids)).Msg("sessions revoked")
	return nil
}

// Authenticate resolves a session signature to its live session. Unknown
// and expired signatures yield ErrInvalidSession.
func (s *SessionService) Authenticate(ctx context.Context, signature string) (session.Session, error) {
	sess, err := s.sessions.GetBySignature(ctx, signature)
	if err != nil {
		return session.Session{}, ErrInvalidSession
	}

	now := s.clock.Now()
	if session.Expired(sess, now) {
		s.logger.Debug().Str("session_id", sess.ID).Msg("session expired")
		return session.Session{}, ErrInvalidSession
	}

	if err := s.sessions.Touch(ctx, sess.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("touch session failed")
	}
	return sess, nil
}
