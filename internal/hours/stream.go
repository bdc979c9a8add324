package hours

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

var ErrInvalidImage = errors.New("invalid stream image")

// FromStreamImage decodes the old image of a stream record. pk and hours are
// required; ttl is optional.
func FromStreamImage(image map[string]events.DynamoDBAttributeValue) (Record, error) {
	var rec Record

	pk, ok := image["pk"]
	if !ok || pk.DataType() != events.DataTypeString {
		return rec, fmt.Errorf("%w: missing string pk", ErrInvalidImage)
	}
	rec.PK = pk.String()
	if _, ok := DateFromKey(rec.PK); !ok {
		return rec, fmt.Errorf("%w: no date in key %q", ErrInvalidImage, rec.PK)
	}

	if sk, ok := image["sk"]; ok && sk.DataType() == events.DataTypeString {
		rec.SK = sk.String()
	}

	h, ok := image["hours"]
	if !ok || h.DataType() != events.DataTypeNumber {
		return rec, fmt.Errorf("%w: missing numeric hours", ErrInvalidImage)
	}
	hours, err := strconv.ParseFloat(h.Number(), 64)
	if err != nil {
		return rec, fmt.Errorf("%w: hours %q: %v", ErrInvalidImage, h.Number(), err)
	}
	rec.Hours = hours

	if ttl, ok := image["ttl"]; ok && ttl.DataType() == events.DataTypeNumber {
		if secs, err := strconv.ParseInt(ttl.Number(), 10, 64); err == nil {
			rec.TTL = time.Unix(secs, 0)
		}
	}

	return rec, nil
}
