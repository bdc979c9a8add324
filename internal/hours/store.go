package hours

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-autotracker/internal/aws"
)

// DefaultTTL is how long a day's record lives before the Finalizer picks it up.
const DefaultTTL = 8 * time.Hour

// ConfirmCondition only matches a record that exists and has not expired.
// DynamoDB sweeps expired items lazily, so existence alone is not enough.
const ConfirmCondition = "attribute_exists(#pk) AND #ttl > :now"

// Store encapsulates the conditional operations on the actions table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration // lifetime of a record from creation to expiry
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// ttlWindow: record lifetime (a non-positive value uses DefaultTTL).
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	if ttlWindow <= 0 {
		ttlWindow = DefaultTTL
	}
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

func key(date time.Time) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: Key(date)},
		"sk": &types.AttributeValueMemberS{Value: SortKeyVoid},
	}
}

// Create writes the day's record with the given default hours and an expiry
// of now+ttlWindow. Returns ErrConditionFailed if the day already has a record.
func (s *Store) Create(ctx context.Context, date time.Time, hours float64) (*Record, error) {
	rec := Record{
		PK:    Key(date),
		SK:    SortKeyVoid,
		Hours: hours,
		TTL:   s.nowFunc().Add(s.ttlWindow),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      awsString("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": "pk"},
	})
	if err != nil {
		return nil, classify("create", err)
	}
	return &rec, nil
}

// Confirm overwrites hours on the day's existing record. The ttl is left
// untouched so the record still expires at its original deadline.
// Returns ErrConditionFailed when no live record exists: never created,
// already deleted, or past its ttl but not yet swept by DynamoDB. The update
// never creates a record.
func (s *Store) Confirm(ctx context.Context, date time.Time, hours float64) (*Record, error) {
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              key(date),
		UpdateExpression: awsString("SET #hours = :hours"),
		ExpressionAttributeNames: map[string]string{
			"#hours": "hours",
			"#pk":    "pk",
			"#ttl":   "ttl",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hours": &types.AttributeValueMemberN{Value: strconv.FormatFloat(hours, 'f', -1, 64)},
			":now":   &types.AttributeValueMemberN{Value: strconv.FormatInt(s.nowFunc().Unix(), 10)},
		},
		ConditionExpression: awsString(ConfirmCondition),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, classify("confirm", err)
	}
	return unmarshalRecord(out.Attributes)
}

// MarkPrompted records the chat message that carried the day's question.
// Returns ErrConditionFailed when the record no longer exists.
func (s *Store) MarkPrompted(ctx context.Context, date time.Time, messageTS string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              key(date),
		UpdateExpression: awsString("SET #prompted = :prompted"),
		ExpressionAttributeNames: map[string]string{
			"#prompted": "prompted",
			"#pk":       "pk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prompted": &types.AttributeValueMemberS{Value: messageTS},
		},
		ConditionExpression: awsString("attribute_exists(#pk)"),
	})
	if err != nil {
		return classify("mark prompted", err)
	}
	return nil
}

// Get retrieves the day's record. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, date time.Time) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            key(date),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, classify("get", err)
	}
	return unmarshalRecord(out.Item)
}

// unmarshalRecord returns (nil, nil) for an empty item.
func unmarshalRecord(item map[string]types.AttributeValue) (*Record, error) {
	if len(item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
