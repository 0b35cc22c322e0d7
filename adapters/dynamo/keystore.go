package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/launchpad/domain/apikey"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyStore implements ports.KeyStore on the shared table.
type KeyStore struct {
	*Store
}

// NewKeyStore creates a DynamoDB key store.
func NewKeyStore(s *Store) *KeyStore {
	return &KeyStore{Store: s}
}

type keyItem struct {
	PK       string `dynamodbav:"pk"`
	SK       string `dynamodbav:"sk"`
	Listing  string `dynamodbav:"gsi1pk"`
	ListSort string `dynamodbav:"gsi1sk"`
	Lookup   string `dynamodbav:"gsi2pk"`
	LookSort string `dynamodbav:"gsi2sk"`

	ID        string `dynamodbav:"id"`
	UserID    string `dynamodbav:"user_id"`
	Hash      []byte `dynamodbav:"hash"`
	Prefix    string `dynamodbav:"prefix"`
	Name      string `dynamodbav:"name"`
	ExpiresAt *int64 `dynamodbav:"expires_at,omitempty"`
	RevokedAt *int64 `dynamodbav:"revoked_at,omitempty"`
	CreatedAt int64  `dynamodbav:"created_at"`
	LastUsed  *int64 `dynamodbav:"last_used,omitempty"`
}

func newKeyItem(k apikey.Key) keyItem {
	return keyItem{
		PK:       "USER#" + k.UserID,
		SK:       "KEY#" + sortStamp(k.CreatedAt) + "#" + k.ID,
		Listing:  "PREFIX#" + k.Prefix,
		ListSort: k.ID,
		Lookup:   "KEYID#" + k.ID,
		LookSort: "A",

		ID:        k.ID,
		UserID:    k.UserID,
		Hash:      k.Hash,
		Prefix:    k.Prefix,
		Name:      k.Name,
		ExpiresAt: nanosOrNil(k.ExpiresAt),
		RevokedAt: nanosOrNil(k.RevokedAt),
		CreatedAt: k.CreatedAt.UnixNano(),
		LastUsed:  nanosOrNil(k.LastUsed),
	}
}

func (i keyItem) toKey() apikey.Key {
	return apikey.Key{
		ID:        i.ID,
		UserID:    i.UserID,
		Hash:      i.Hash,
		Prefix:    i.Prefix,
		Name:      i.Name,
		ExpiresAt: timeOrNil(i.ExpiresAt),
		RevokedAt: timeOrNil(i.RevokedAt),
		CreatedAt: time.Unix(0, i.CreatedAt).UTC(),
		LastUsed:  timeOrNil(i.LastUsed),
	}
}

func unmarshalKey(attrs map[string]types.AttributeValue) (keyItem, error) {
	var item keyItem
	if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
		return keyItem{}, fmt.Errorf("unmarshal key item: %w", err)
	}
	return item, nil
}

// GetByPrefix retrieves keys matching a lookup prefix.
func (s *KeyStore) GetByPrefix(ctx context.Context, prefix string) ([]apikey.Key, error) {
	attrs, err := s.lookupAll(ctx, indexListing, "gsi1pk", "PREFIX#"+prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]apikey.Key, 0, len(attrs))
	for _, a := range attrs {
		item, err := unmarshalKey(a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, item.toKey())
	}
	return keys, nil
}

// GetByID retrieves a key by ID.
func (s *KeyStore) GetByID(ctx context.Context, id string) (apikey.Key, error) {
	attrs, err := s.lookupOne(ctx, indexLookup, "gsi2pk", "KEYID#"+id)
	if err != nil {
		return apikey.Key{}, err
	}
	item, err := unmarshalKey(attrs)
	if err != nil {
		return apikey.Key{}, err
	}
	return item.toKey(), nil
}

// Create stores a new key.
func (s *KeyStore) Create(ctx context.Context, k apikey.Key) error {
	return s.putItem(ctx, newKeyItem(k))
}

// DeleteByUser removes the given keys belonging to a user. Keys owned by
// someone else, or missing entirely, are skipped.
func (s *KeyStore) DeleteByUser(ctx context.Context, userID string, ids []string) error {
	for _, id := range ids {
		attrs, err := s.lookupOne(ctx, indexLookup, "gsi2pk", "KEYID#"+id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		item, err := unmarshalKey(attrs)
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

// ListByUser returns a user's keys, paged, newest first.
func (s *KeyStore) ListByUser(ctx context.Context, userID string, in paging.Instruction) (paging.Page[apikey.Key], error) {
	k, err := asKey(in)
	if err != nil {
		return paging.Page[apikey.Key]{}, err
	}

	attrs, next, prev, err := s.queryPage(ctx, userPartition("USER#"+userID, "KEY#"), k)
	if err != nil {
		return paging.Page[apikey.Key]{}, err
	}

	keys := make([]apikey.Key, 0, len(attrs))
	for _, a := range attrs {
		item, err := unmarshalKey(a)
		if err != nil {
			return paging.Page[apikey.Key]{}, err
		}
		keys = append(keys, item.toKey())
	}
	return paging.Page[apikey.Key]{Items: keys, Next: next, Prev: prev}, nil
}

// UpdateLastUsed updates the last used timestamp.
func (s *KeyStore) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	attrs, err := s.lookupOne(ctx, indexLookup, "gsi2pk", "KEYID#"+id)
	if err != nil {
		return err
	}
	item, err := unmarshalKey(attrs)
	if err != nil {
		return err
	}
	n := at.UnixNano()
	item.LastUsed = &n
	return s.putItem(ctx, item)
}
