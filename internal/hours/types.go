package hours

import (
	"strings"
	"time"

	"github.com/imrishuroy/go-autotracker/internal/validation"
)

const (
	// KeyPrefix namespaces the date in the partition key.
	KeyPrefix = "timestamp|"
	// SortKeyVoid fills the sort key of the composite primary key; only one
	// record per partition key is ever written.
	SortKeyVoid = "void"
)

// Record is the PendingHoursRecord persisted in the actions table, one per calendar day.
type Record struct {
	PK       string    `dynamodbav:"pk"`                 // "timestamp|YYYY-MM-DD"
	SK       string    `dynamodbav:"sk"`                 // always "void"
	Hours    float64   `dynamodbav:"hours"`              // pending or confirmed value
	TTL      time.Time `dynamodbav:"ttl,unixtime"`       // set once at creation
	Prompted string    `dynamodbav:"prompted,omitempty"` // chat message ts once the question was posted
}

// Date returns the calendar date encoded in the record key.
func (r Record) Date() (time.Time, bool) {
	return DateFromKey(r.PK)
}

// Key builds the partition key for the calendar date of t in t's location.
func Key(t time.Time) string {
	return KeyPrefix + t.Format(validation.DateLayout)
}

// DateFromKey extracts the calendar date from a partition key as midnight UTC.
// It reports false for keys without a "|" separator or with an invalid date.
func DateFromKey(pk string) (time.Time, bool) {
	parts := strings.Split(pk, "|")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	d, err := time.Parse(validation.DateLayout, parts[1])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
