// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/launchpad/domain/account"
	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/domain/session"
)

// ErrNotFound is returned by stores when a record does not exist. Adapters
// re-export it so callers can match without knowing the backend.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Identity is the verified identity extracted from a bearer token.
type Identity struct {
	UserID string
	Email  string
	Role   account.Role
}

// TokenVerifier verifies bearer tokens issued by the identity provider.
// Verification is a boolean outcome: a token is either valid, yielding an
// identity, or it is not.
type TokenVerifier interface {
	Verify(tokenString string) (Identity, bool)
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------
//
// List operations take a paging instruction and return a page carrying the
// instructions for adjacent pages. Each backend defines its own instruction
// variant (paging.Cursor or paging.Key); callers treat it opaquely.

// AccountStore persists user accounts.
type AccountStore interface {
	// Get retrieves an account by ID.
	Get(ctx context.Context, id string) (account.Account, error)

	// GetByEmail retrieves an account by email.
	GetByEmail(ctx context.Context, email string) (account.Account, error)

	// Create stores a new account.
	Create(ctx context.Context, a account.Account) error

	// Update modifies an existing account.
	Update(ctx context.Context, a account.Account) error

	// Delete removes an account.
	Delete(ctx context.Context, id string) error

	// List returns accounts, paged.
	List(ctx context.Context, in paging.Instruction) (paging.Page[account.Account], error)

	// Count returns the total account count.
	Count(ctx context.Context) (int, error)
}

// KeyStore persists API keys.
type KeyStore interface {
	// GetByPrefix retrieves keys matching a lookup prefix (for validation).
	GetByPrefix(ctx context.Context, prefix string) ([]apikey.Key, error)

	// GetByID retrieves a key by ID.
	GetByID(ctx context.Context, id string) (apikey.Key, error)

	// Create stores a new key.
	Create(ctx context.Context, k apikey.Key) error

	// DeleteByUser removes the given keys belonging to a user. IDs not
	// owned by the user are ignored.
	DeleteByUser(ctx context.Context, userID string, ids []string) error

	// ListByUser returns a user's keys, paged, newest first.
	ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[apikey.Key], error)

	// UpdateLastUsed updates the last used timestamp.
	UpdateLastUsed(ctx context.Context, id string, at time.Time) error
}

// SessionStore persists sessions.
type SessionStore interface {
	// GetBySignature retrieves a session by its signature token.
	GetBySignature(ctx context.Context, signature string) (session.Session, error)

	// Create stores a new session.
	Create(ctx context.Context, s session.Session) error

	// DeleteByUser removes the given sessions belonging to a user.
	DeleteByUser(ctx context.Context, userID string, ids []string) error

	// ListByUser returns a user's sessions, paged, newest first.
	ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[session.Session], error)

	// Touch updates the last seen timestamp.
	Touch(ctx context.Context, id string, at time.Time) error
}
