// Package apikey provides API key value types and pure validation
// functions. This package has NO dependencies on I/O or storage.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PrefixLen is the number of leading raw-key characters stored in clear for
// lookup.
const PrefixLen = 12

// Key represents an API key (immutable value type). The raw secret is shown
// to the user exactly once, at creation; only its bcrypt hash is stored.
type Key struct {
	ID        string
	UserID    string
	Hash      []byte     // bcrypt hash of the full raw key
	Prefix    string     // first PrefixLen chars for lookup
	Name      string
	ExpiresAt *time.Time // nil = never expires
	RevokedAt *time.Time // nil = not revoked
	CreatedAt time.Time
	LastUsed  *time.Time
}

// ValidationResult represents the outcome of key validation (value type).
type ValidationResult struct {
	Valid  bool
	Key    Key    // populated only if Valid
	Reason string // populated only if !Valid
}

// Reasons for validation failure.
const (
	ReasonNotFound  = "key_not_found"
	ReasonExpired   = "key_expired"
	ReasonRevoked   = "key_revoked"
	ReasonBadFormat = "invalid_format"
)

// Generate creates a new API key with the given prefix. It returns the raw
// key (to give to the user) and the Key struct (to store). The raw key is
// prefix + 64 hex chars.
func Generate(prefix string) (rawKey string, k Key) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	rawKey = prefix + hex.EncodeToString(randomBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt failed: %v", err))
	}

	idBytes := make([]byte, 8)
	rand.Read(idBytes)

	k = Key{
		ID:        "key_" + hex.EncodeToString(idBytes),
		Hash:      hash,
		Prefix:    rawKey[:PrefixLen],
		CreatedAt: time.Now().UTC(),
	}
	return rawKey, k
}

// WithUserID returns a copy of the key with the UserID set.
func (k Key) WithUserID(userID string) Key {
	k.UserID = userID
	return k
}

// WithName returns a copy of the key with the Name set.
func (k Key) WithName(name string) Key {
	k.Name = name
	return k
}

// WithExpiry returns a copy of the key expiring at the given time.
func (k Key) WithExpiry(at time.Time) Key {
	k.ExpiresAt = &at
	return k
}

// Validate checks if a key is usable at the given time.
// This is a PURE function - no side effects, deterministic.
func Validate(k Key, now time.Time) ValidationResult {
	if k.RevokedAt != nil {
		return ValidationResult{Valid: false, Reason: ReasonRevoked}
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return ValidationResult{Valid: false, Reason: ReasonExpired}
	}
	return ValidationResult{Valid: true, Key: k}
}

// Matches reports whether a raw key corresponds to this stored key.
func (k Key) Matches(rawKey string) bool {
	return bcrypt.CompareHashAndPassword(k.Hash, []byte(rawKey)) == nil
}
