package dynamo

import (
	"context"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient is an in-memory stand-in for the DynamoDB API, good enough for
// the query shapes the stores issue.
type fakeClient struct {
	items []map[string]types.AttributeValue
}

func sval(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func sameKey(a, b map[string]types.AttributeValue) bool {
	return sval(a["pk"]) == sval(b["pk"]) && sval(a["sk"]) == sval(b["sk"])
}

func keyAttrsOf(item map[string]types.AttributeValue, index *string) map[string]types.AttributeValue {
	names := []string{"pk", "sk"}
	if index != nil {
		names = append(names, *index+"pk", *index+"sk")
	}
	key := map[string]types.AttributeValue{}
	for _, n := range names {
		if av, ok := item[n]; ok {
			key[n] = av
		}
	}
	return key
}

func (f *fakeClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	pkAttr, skAttr := "pk", "sk"
	if in.IndexName != nil {
		pkAttr = *in.IndexName + "pk"
		skAttr = *in.IndexName + "sk"
	}
	wantPK := sval(in.ExpressionAttributeValues[":pk"])
	var skPrefix string
	if av, ok := in.ExpressionAttributeValues[":sk"]; ok {
		skPrefix = sval(av)
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if sval(item[pkAttr]) != wantPK {
			continue
		}
		if skPrefix != "" && !strings.HasPrefix(sval(item[skAttr]), skPrefix) {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool {
		return sval(matched[i][skAttr]) < sval(matched[j][skAttr])
	})
	if in.ScanIndexForward != nil && !*in.ScanIndexForward {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	start := 0
	if len(in.ExclusiveStartKey) > 0 {
		for i, item := range matched {
			if sameKey(item, in.ExclusiveStartKey) {
				start = i + 1
				break
			}
		}
	}
	matched = matched[start:]

	var last map[string]types.AttributeValue
	if in.Limit != nil && len(matched) > int(*in.Limit) {
		matched = matched[:int(*in.Limit)]
		last = keyAttrsOf(matched[len(matched)-1], in.IndexName)
	}

	out := &dynamodb.QueryOutput{
		Count:            int32(len(matched)),
		LastEvaluatedKey: last,
	}
	if in.Select != types.SelectCount {
		out.Items = matched
	}
	return out, nil
}

func (f *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	for _, item := range f.items {
		if sameKey(item, in.Key) {
			return &dynamodb.GetItemOutput{Item: item}, nil
		}
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	for i, item := range f.items {
		if sameKey(item, in.Item) {
			f.items[i] = in.Item
			return &dynamodb.PutItemOutput{}, nil
		}
	}
	if in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	for i, item := range f.items {
		if sameKey(item, in.Key) {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return &dynamodb.DeleteItemOutput{}, nil
		}
	}
	if in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	return &dynamodb.DeleteItemOutput{}, nil
}
