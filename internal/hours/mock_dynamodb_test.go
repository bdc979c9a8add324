package hours

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory table keyed by pk/sk that understands the
// two condition expressions the store issues.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	err         error // returned by every call when set
	putCalls    int
	getCalls    int
	updateCalls int
}

func newSimpleMock() *simpleMock {
	return &simpleMock{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func itemKey(attrs map[string]types.AttributeValue) (string, error) {
	pk, ok := attrs["pk"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing pk")
	}
	sk, ok := attrs["sk"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing sk")
	}
	return pk.Value + "#" + sk.Value, nil
}

func copyItem(in map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.err != nil {
		return nil, m.err
	}
	k, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(#pk)" {
		if _, ok := m.table[k]; ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.table[k] = copyItem(params.Item)
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: copyItem(item)}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.err != nil {
		return nil, m.err
	}
	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if params.ConditionExpression != nil {
		cond := *params.ConditionExpression
		if strings.Contains(cond, "attribute_exists(#pk)") && !ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
		if strings.Contains(cond, "#ttl > :now") && !unexpired(item, params.ExpressionAttributeValues[":now"]) {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if !ok {
		item = copyItem(params.Key)
	} else {
		item = copyItem(item)
	}
	// only "SET #hours = :hours" and "SET #prompted = :prompted" are issued
	for _, attr := range []string{"hours", "prompted"} {
		if v, ok := params.ExpressionAttributeValues[":"+attr]; ok {
			item[attr] = v
		}
	}
	m.table[k] = item
	return &dyn.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

// unexpired evaluates "#ttl > :now" on numeric attributes.
func unexpired(item map[string]types.AttributeValue, now types.AttributeValue) bool {
	ttl, ok := item["ttl"].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	n, ok := now.(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	a, errA := strconv.ParseInt(ttl.Value, 10, 64)
	b, errB := strconv.ParseInt(n.Value, 10, 64)
	return errA == nil && errB == nil && a > b
}
