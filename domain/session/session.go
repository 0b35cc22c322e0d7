// Package session provides session value types and pure expiry checks.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Session represents one authenticated browser or device session.
type Session struct {
	ID        string
	UserID    string
	Signature string // opaque lookup token handed to the client
	UserAgent string
	IssuedAt  time.Time
	ExpiresAt time.Time
	LastSeen  *time.Time
}

// DefaultTTL is the session lifetime when config supplies none.
const DefaultTTL = 30 * 24 * time.Hour

// Issue creates a new session for a user. The signature is random and is
// the only copy handed to the client.
func Issue(userID, userAgent string, ttl time.Duration, now time.Time) Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Session{
		ID:        "sess_" + randomHex(8),
		UserID:    userID,
		Signature: randomHex(32),
		UserAgent: userAgent,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session has expired at the given time.
// This is a PURE function.
func Expired(s Session, now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}
