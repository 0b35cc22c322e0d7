package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/domain/session"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// SessionStore implements ports.SessionStore on the shared table.
type SessionStore struct {
	*Store
}

// NewSessionStore creates a DynamoDB session store.
func NewSessionStore(s *Store) *SessionStore {
	return &SessionStore{Store: s}
}

type sessionItem struct {
	PK       string `dynamodbav:"pk"`
	SK       string `dynamodbav:"sk"`
	Listing  string `dynamodbav:"gsi1pk"`
	ListSort string `dynamodbav:"gsi1sk"`
	Lookup   string `dynamodbav:"gsi2pk"`
	LookSort string `dynamodbav:"gsi2sk"`

	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"user_id"`
	Signature string `dynamodbav:"signature"`
	UserAgent string `dynamodbav:"user_agent"`
	IssuedAt  int64  `dynamodbav:"issued_at"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
	LastSeen  *int64 `dynamodbav:"last_seen,omitempty"`
}

func newSessionItem(sess session.Session) sessionItem {
	return sessionItem{
		PK:       "USER#" + sess.UserID,
		SK:       "SESSION#" + sortStamp(sess.IssuedAt) + "#" + sess.ID,
		Listing:  "SIG#" + sess.Signature,
		ListSort: "A",
		Lookup:   "SESSIONID#" + sess.ID,
		LookSort: "A",

		ID:        sess.ID,
		UserID:    sess.UserID,
		Signature: sess.Signature,
		UserAgent: sess.UserAgent,
		IssuedAt:  sess.IssuedAt.UnixNano(),
		ExpiresAt: sess.ExpiresAt.UnixNano(),
		LastSeen:  nanosOrNil(sess.LastSeen),
	}
}

func (i sessionItem) toSession() session.Session {
	return session.Session{
		ID:        i.ID,
		UserID:    i.UserID,
		Signature: i.Signature,
		UserAgent: i.UserAgent,
		IssuedAt:  time.Unix(0, i.IssuedAt).UTC(),
		ExpiresAt: time.Unix(0, i.ExpiresAt).UTC(),
		LastSeen:  timeOrNil(i.LastSeen),
	}
}

func unmarshalSession(attrs map[string]types.AttributeValue) (sessionItem, error) {
	var item sessionItem
	if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
		return sessionItem{}, fmt.Errorf("unmarshal session item: %w", err)
	}
	return item, nil
}

// GetBySignature retrieves a session by its signature token.
func (s *SessionStore) GetBySignature(ctx context.Context, signature string) (session.Session, error) {
	attrs, err := s.lookupOne(ctx, indexListing, "gsi1pk", "SIG#"+signature)
	if err != nil {
		return session.Session{}, err
	}
	item, err := unmarshalSession(attrs)
	if err != nil {
		return session.Session{}, err
	}
	return item.toSession(), nil
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, sess session.Session) error {
	return s.putItem(ctx, newSessionItem(sess))
}

// DeleteByUser removes the given sessions belonging to a user.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string, ids []string) error {
	for _, id := range ids {
		attrs, err := s.lookupOne(ctx, indexLookup, "gsi2pk", "SESSIONID#"+id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		item, err := unmarshalSession(attrs)
		if err != nil {
			return err
		}
		if item.UserID != userID {
			continue
		}
		if err := s.deleteItem(ctx, item.PK, item.SK); err != nil {
			return err
		}
	}
	return nil
}

// ListByUser returns a user's sessions, paged, newest first.
func (s *SessionStore) ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[session.Session], error) {
	k, err := asKey(in)
	if err != nil {
		return paging.Page[session.Session]{}, err
	}

	attrs, next, prev, err := s.queryPage(ctx, userPartition("USER#"+userID, "SESSION#"), k)
	if err != nil {
		return paging.Page[session.Session]{}, err
	}

	sessions := make([]session.Session, 0, len(attrs))
	for _, a := range attrs {
		item, err := unmarshalSession(a)
		if err != nil {
			return paging.Page[session.Session]{}, err
		}
		sessions = append(sessions, item.toSession())
	}
	return paging.Page[session.Session]{Items: sessions, Next: next, Prev: prev}, nil
}

// Touch updates the last seen timestamp.
func (s *SessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	attrs, err := s.lookupOne(ctx, indexLookup, "gsi2pk", "SESSIONID#"+id)
	if err != nil {
		return err
	}
	item, err := unmarshalSession(attrs)
	if err != nil {
		return err
	}
	n := at.UnixNano()
	item.LastSeen = &n
	return s.putItem(ctx, item)
}
