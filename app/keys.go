// Package app contains application services wiring domain logic to ports.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/ports"
	"github.com/rs/zerolog"
)

// ErrInvalidKey is returned when a presented API key fails authentication
// for any reason. The reason is logged, not exposed.
var ErrInvalidKey = errors.New("invalid api key")

// KeyService manages API keys.
type KeyService struct {
	keys   ports.KeyStore
	clock  ports.Clock
	prefix string
	logger zerolog.Logger
}

// NewKeyService creates a new key service. prefix is prepended to every
// generated raw key.
func NewKeyService(keys ports.KeyStore, clock ports.Clock, prefix string, logger zerolog.Logger) *KeyService {
	return &KeyService{keys: keys, clock: clock, prefix: prefix, logger: logger}
}

// Create generates and stores a new key for a user. The returned raw secret
// is shown to the user exactly once; only its hash is persisted.
func (s *KeyService) Create(ctx context.Context, userID, name string, expiresAt *time.Time) (apikey.Key, string, error) {
	raw, k := apikey.Generate(s.prefix)
	k = k.WithUserID(userID).WithName(name)
	k.CreatedAt = s.clock.Now().UTC()
	if expiresAt != nil {
		k = k.WithExpiry(*expiresAt)
	}

	if err := s.keys.Create(ctx, k); err != nil {
		return apikey.Key{}, "", fmt.Errorf("store key: %w", err)
	}

	s.logger.Info().Str("key_id", k.ID).Str("user_id", userID).Msg("api key created")
	return k, raw, nil
}

// List returns a page of the user's keys.
func (s *KeyService) List(ctx context.Context, userID string, in paging.Instruction) (paging.Page[apikey.Key], error) {
	return s.keys.ListByUser(ctx, userID, in)
}

// BulkDelete removes the user's keys with the given IDs. IDs owned by
// someone else are ignored.
func (s *KeyService) BulkDelete(ctx context.Context, userID string, ids []string) error {
	if err := s.keys.DeleteByUser(ctx, userID, ids); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Int("count", len(ids)).Msg("api keys deleted")
	return nil
}

// Authenticate resolves a raw key to its stored record. Expired, revoked,
// unknown and malformed keys all yield ErrInvalidKey.
func (s *KeyService) Authenticate(ctx context.Context, raw string) (apikey.Key, error) {
	if len(raw) < apikey.PrefixLen {
		return apikey.Key{}, ErrInvalidKey
	}

	candidates, err := s.keys.GetByPrefix(ctx, raw[:apikey.PrefixLen])
	if err != nil {
		return apikey.Key{}, fmt.Errorf("lookup key: %w", err)
	}

	now := s.clock.Now()
	for _, k := range candidates {
		if !k.Matches(raw) {
			continue
		}
		result := apikey.Validate(k, now)
		if !result.Valid {
			s.logger.Debug().Str("key_id", k.ID).Str("reason", result.Reason).Msg("key rejected")
			return apikey.Key{}, ErrInvalidKey
		}
		if err := s.keys.UpdateLastUsed(ctx, k.ID, now); err != nil {
			s.logger.Warn().Err(err).Str("key_id", k.ID).Msg("update last used failed")
		}
		return k, nil
	}
	return apikey.Key{}, ErrInvalidKey
}
