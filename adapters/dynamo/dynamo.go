// Package dynamo provides DynamoDB implementations of storage ports using a
// single-table layout.
//
// Paging is key-style: list calls take and return paging.Key instructions
// carrying the table's last evaluated key. The key maps round-trip through
// the wire as plain JSON objects.
//
// Item layout:
//
//	accounts:  pk=ACCOUNT#<id>         sk=A
//	api keys:  pk=USER#<userID>        sk=KEY#<created>#<id>
//	sessions:  pk=USER#<userID>        sk=SESSION#<issued>#<id>
//
// gsi1 serves listings and prefix lookups, gsi2 direct lookups by
// identifier (key ID, session signature, account email).
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/ports"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = ports.ErrNotFound

// Secondary index names.
const (
	indexListing = "gsi1"
	indexLookup  = "gsi2"
)

// Client is the subset of the DynamoDB API the stores use.
type Client interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store holds the shared table configuration.
type Store struct {
	client Client
	table  string
}

// New creates a store bound to a table.
func New(client Client, table string) *Store {
	return &Store{client: client, table: table}
}

// asKey narrows an instruction to the key variant this backend understands.
// A nil instruction means the first page.
func asKey(in paging.Instruction) (paging.Key, error) {
	switch v := in.(type) {
	case nil:
		return paging.Key{Limit: paging.DefaultLimit}, nil
	case paging.Key:
		if v.Limit <= 0 {
			v.Limit = paging.DefaultLimit
		}
		return v, nil
	default:
		return paging.Key{}, errors.New("dynamo: unsupported paging instruction")
	}
}

// startKey converts the wire form of a last evaluated key back into
// DynamoDB attribute values.
func startKey(k paging.Key) (map[string]types.AttributeValue, error) {
	if len(k.LastEvaluatedKey) == 0 {
		return nil, nil
	}
	attrs, err := attributevalue.MarshalMap(k.LastEvaluatedKey)
	if err != nil {
		return nil, fmt.Errorf("marshal start key: %w", err)
	}
	return attrs, nil
}

// lastKey converts a DynamoDB last evaluated key into its wire form.
func lastKey(attrs map[string]types.AttributeValue) (map[string]any, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := attributevalue.UnmarshalMap(attrs, &out); err != nil {
		return nil, fmt.Errorf("unmarshal last key: %w", err)
	}
	return out, nil
}

// pageQuery describes one paged listing: a key condition, the index it runs
// on (empty for the table itself), and the attributes that form a paging
// boundary key for that index.
type pageQuery struct {
	index    string
	keyCond  string
	values   map[string]types.AttributeValue
	keyAttrs []string
}

// userPartition pages a user's items on the main table.
func userPartition(pk, skPrefix string) pageQuery {
	return pageQuery{
		keyCond: "pk = :pk AND begins_with(sk, :sk)",
		values: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
			":sk": &types.AttributeValueMemberS{Value: skPrefix},
		},
		keyAttrs: []string{"pk", "sk"},
	}
}

// listingPartition pages items on the listing index.
func listingPartition(pk string) pageQuery {
	return pageQuery{
		index:   indexListing,
		keyCond: "gsi1pk = :pk",
		values: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		keyAttrs: []string{"pk", "sk", "gsi1pk", "gsi1sk"},
	}
}

// queryPage runs one paged query and wraps the result into next/prev
// instructions. Items arrive newest first for the forward (next) direction;
// the prev direction scans ascending from the boundary and is reversed back
// into display order here.
func (s *Store) queryPage(ctx context.Context, q pageQuery, k paging.Key) ([]map[string]types.AttributeValue, paging.Instruction, paging.Instruction, error) {
	backward := k.ScanIndexForward != nil && *k.ScanIndexForward

	exclusive, err := startKey(k)
	if err != nil {
		return nil, nil, nil, err
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String(q.keyCond),
		ExpressionAttributeValues: q.values,
		Limit:                     aws.Int32(int32(k.Limit)),
		ScanIndexForward:          aws.Bool(backward),
		ExclusiveStartKey:         exclusive,
	}
	if q.index != "" {
		in.IndexName = aws.String(q.index)
	}
	out, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("query page: %w", err)
	}

	items := out.Items
	more, err := lastKey(out.LastEvaluatedKey)
	if err != nil {
		return nil, nil, nil, err
	}

	var next, prev paging.Instruction
	forward := true
	if backward {
		// Ascending from the boundary: reverse into display order.
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		if len(items) > 0 {
			// The boundary row itself still exists below this page.
			nextKey, err := itemKey(items[len(items)-1], q.keyAttrs)
			if err != nil {
				return nil, nil, nil, err
			}
			next = paging.Key{LastEvaluatedKey: nextKey, Limit: k.Limit}
		}
		if more != nil {
			prev = paging.Key{LastEvaluatedKey: more, Limit: k.Limit, ScanIndexForward: &forward}
		}
	} else {
		if more != nil {
			next = paging.Key{LastEvaluatedKey: more, Limit: k.Limit}
		}
		if exclusive != nil && len(items) > 0 {
			prevKey, err := itemKey(items[0], q.keyAttrs)
			if err != nil {
				return nil, nil, nil, err
			}
			prev = paging.Key{LastEvaluatedKey: prevKey, Limit: k.Limit, ScanIndexForward: &forward}
		}
	}
	return items, next, prev, nil
}

// itemKey extracts an item's key attributes in wire form, for use as a
// paging boundary.
func itemKey(item map[string]types.AttributeValue, attrs []string) (map[string]any, error) {
	key := map[string]types.AttributeValue{}
	for _, name := range attrs {
		attr, ok := item[name]
		if !ok {
			return nil, fmt.Errorf("item missing key attribute %s", name)
		}
		key[name] = attr
	}
	return lastKey(key)
}

// lookupOne queries a secondary index for a single item by partition key.
func (s *Store) lookupOne(ctx context.Context, index, keyAttr, value string) (map[string]types.AttributeValue, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(keyAttr + " = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: value},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", value, err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}
	return out.Items[0], nil
}

// lookupAll queries a secondary index for every item under a partition key.
func (s *Store) lookupAll(ctx context.Context, index, keyAttr, value string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var exclusive map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String(keyAttr + " = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: value},
			},
			ExclusiveStartKey: exclusive,
		})
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", value, err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		exclusive = out.LastEvaluatedKey
	}
}

// countPartition counts the items under a listing index partition key.
func (s *Store) countPartition(ctx context.Context, index, keyAttr, value string) (int, error) {
	total := 0
	var exclusive map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String(keyAttr + " = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: value},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: exclusive,
		})
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", value, err)
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		exclusive = out.LastEvaluatedKey
	}
}

func (s *Store) deleteItem(ctx context.Context, pk, sk string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
			"sk": &types.AttributeValueMemberS{Value: sk},
		},
	})
	return err
}

func (s *Store) putItem(ctx context.Context, item any) error {
	attrs, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      attrs,
	})
	return err
}

// sortStamp renders a timestamp as a fixed-width sort key component so that
// lexicographic order matches chronological order.
func sortStamp(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

func nanosOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	n := t.UnixNano()
	return &n
}

func timeOrNil(n *int64) *time.Time {
	if n == nil {
		return nil
	}
	t := time.Unix(0, *n).UTC()
	return &t
}
