package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/launchpad/domain/account"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AccountStore implements ports.AccountStore on the shared table. Accounts
// hang off the listing index under a single partition so they can be paged
// newest first.
type AccountStore struct {
	*Store
}

// NewAccountStore creates a DynamoDB account store.
func NewAccountStore(s *Store) *AccountStore {
	return &AccountStore{Store: s}
}

const accountListing = "ACCOUNT"

type accountItem struct {
	PK       string `dynamodbav:"pk"`
	SK       string `dynamodbav:"sk"`
	Listing  string `dynamodbav:"gsi1pk"`
	ListSort string `dynamodbav:"gsi1sk"`
	Lookup   string `dynamodbav:"gsi2pk"`
	LookSort string `dynamodbav:"gsi2sk"`

	ID        string `dynamodbav:"id"`
	Email     string `dynamodbav:"email"`
	Name      string `dynamodbav:"name"`
	Role      string `dynamodbav:"role"`
	Status    string `dynamodbav:"status"`
	CreatedAt int64  `dynamodbav:"created_at"`
	UpdatedAt int64  `dynamodbav:"updated_at"`
}

func newAccountItem(a account.Account) accountItem {
	return accountItem{
		PK:       "ACCOUNT#" + a.ID,
		SK:       "A",
		Listing:  accountListing,
		ListSort: sortStamp(a.CreatedAt) + "#" + a.ID,
		Lookup:   "EMAIL#" + a.Email,
		LookSort: "A",

		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		Status:    a.Status,
		CreatedAt: a.CreatedAt.UnixNano(),
		UpdatedAt: a.UpdatedAt.UnixNano(),
	}
}

func (i accountItem) toAccount() account.Account {
	return account.Account{
		ID:        i.ID,
		Email:     i.Email,
		Name:      i.Name,
		Role:      account.Role(i.Role),
		Status:    i.Status,
		CreatedAt: time.Unix(0, i.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, i.UpdatedAt).UTC(),
	}
}

func unmarshalAccount(attrs map[string]types.AttributeValue) (accountItem, error) {
	var item accountItem
	if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
		return accountItem{}, fmt.Errorf("unmarshal account item: %w", err)
	}
	return item, nil
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (account.Account, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: "ACCOUNT#" + id},
			"sk": &types.AttributeValueMemberS{Value: "A"},
		},
	})
	if err != nil {
		return account.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return account.Account{}, ErrNotFound
	}
	item, err := unmarshalAccount(out.Item)
	if err != nil {
		return account.Account{}, err
	}
	return item.toAccount(), nil
}

// GetByEmail retrieves an account by email.
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	attrs, err := s.lookupOne(ctx, indexLookup, "gsi2pk", "EMAIL#"+email)
	if err != nil {
		return account.Account{}, err
	}
	item, err := unmarshalAccount(attrs)
	if err != nil {
		return account.Account{}, err
	}
	return item.toAccount(), nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a account.Account) error {
	return s.putItem(ctx, newAccountItem(a))
}

// Update modifies an existing account. The original creation timestamp
// drives the listing sort key, so it is preserved from the caller's value.
func (s *AccountStore) Update(ctx context.Context, a account.Account) error {
	attrs, err := attributevalue.MarshalMap(newAccountItem(a))
	if err != nil {
		return fmt.Errorf("marshal account item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                attrs,
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	return err
}

// Delete removes an account.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: "ACCOUNT#" + id},
			"sk": &types.AttributeValueMemberS{Value: "A"},
		},
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if isConditionFailed(err) {
		return ErrNotFound
	}
	return err
}

// List returns accounts, paged, newest first.
func (s *AccountStore) List(ctx context.Context, in paging.Instruction) (paging.Page[account.Account], error) {
	k, err := asKey(in)
	if err != nil {
		return paging.Page[account.Account]{}, err
	}

	attrs, next, prev, err := s.queryPage(ctx, listingPartition(accountListing), k)
	if err != nil {
		return paging.Page[account.Account]{}, err
	}

	accounts := make([]account.Account, 0, len(attrs))
	for _, a := range attrs {
		item, err := unmarshalAccount(a)
		if err != nil {
			return paging.Page[account.Account]{}, err
		}
		accounts = append(accounts, item.toAccount())
	}
	return paging.Page[account.Account]{Items: accounts, Next: next, Prev: prev}, nil
}

// Count returns the total account count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	return s.countPartition(ctx, indexListing, "gsi1pk", accountListing)
}

func isConditionFailed(err error) bool {
	var cond *types.ConditionalCheckFailedException
	return errors.As(err, &cond)
}
