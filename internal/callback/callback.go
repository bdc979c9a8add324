// Package callback decodes Slack interactive-message callbacks.
//
// Slack posts them as application/x-www-form-urlencoded with a single
// "payload" field holding the JSON document.
package callback

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/imrishuroy/go-autotracker/internal/validation"
)

const payloadField = "payload"

var (
	ErrMalformedPayload = errors.New("callback: malformed payload")
	ErrNoAction         = errors.New("callback: no action present")
	ErrInvalidHours     = errors.New("callback: invalid hours")
)

// Selection is what the user picked.
type Selection struct {
	Hours    float64
	Date     time.Time // prompt date carried in the button value
	HasDate  bool
	ActionID string
	UserID   string
}

// Decode parses a raw form body into an interaction callback.
func Decode(body []byte) (*slack.InteractionCallback, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: form: %v", ErrMalformedPayload, err)
	}
	payload := values.Get(payloadField)
	if payload == "" {
		return nil, fmt.Errorf("%w: no %s field", ErrMalformedPayload, payloadField)
	}

	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrMalformedPayload, err)
	}
	return &cb, nil
}

// Encode is the inverse of Decode.
func Encode(cb *slack.InteractionCallback) ([]byte, error) {
	payload, err := json.Marshal(cb)
	if err != nil {
		return nil, fmt.Errorf("marshal callback: %w", err)
	}
	return []byte(url.Values{payloadField: {string(payload)}}.Encode()), nil
}

// Select reads the first block action. Its label is the hour count; its
// value, when it is an ISO date, is the day the prompt was created for.
func Select(cb *slack.InteractionCallback) (Selection, error) {
	if cb == nil || len(cb.ActionCallback.BlockActions) == 0 {
		return Selection{}, ErrNoAction
	}
	action := cb.ActionCallback.BlockActions[0]

	hours, err := ParseHours(action.Text.Text)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{
		Hours:    hours,
		ActionID: action.ActionID,
		UserID:   cb.User.ID,
	}
	if d, err := time.Parse(validation.DateLayout, action.Value); err == nil {
		sel.Date = d
		sel.HasDate = true
	}
	return sel, nil
}

// ParseHours parses a button label as an hour count between 0 and 24.
func ParseHours(label string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(label), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHours, label)
	}
	if h < 0 || h > validation.MaxHours {
		return 0, fmt.Errorf("%w: %v out of range", ErrInvalidHours, h)
	}
	return h, nil
}
