// Package prompt asks the configured Slack user how many hours to log today
// and creates the day's pending record.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/imrishuroy/go-autotracker/internal/hours"
	"github.com/imrishuroy/go-autotracker/internal/validation"
)

// BlockID identifies the actions block holding the hour buttons.
const BlockID = "hours"

var ErrUserNotFound = errors.New("prompt: slack user not found")

// UpstreamError wraps a failed Slack call. The invocation fails and the
// scheduler's retry policy applies.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("slack %s: %v", e.Op, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ChatAPI is the part of *slack.Client the initiator uses.
type ChatAPI interface {
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// RecordStore holds the day's pending record. *hours.Store satisfies it.
type RecordStore interface {
	Create(ctx context.Context, date time.Time, defaultHours float64) (*hours.Record, error)
	Get(ctx context.Context, date time.Time) (*hours.Record, error)
	MarkPrompted(ctx context.Context, date time.Time, messageTS string) error
}

// Options configures an Initiator.
type Options struct {
	DisplayName string
	Question    string
	Hours       validation.HoursOptions
	Location    *time.Location
}

// Result describes one run.
type Result struct {
	Date      time.Time
	UserID    string
	Skipped   bool // the day was already prompted
	MessageTS string
}

type Initiator struct {
	chat    ChatAPI
	store   RecordStore
	opts    Options
	log     zerolog.Logger
	nowFunc func() time.Time
}

func NewInitiator(chat ChatAPI, store RecordStore, opts Options, log zerolog.Logger) *Initiator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Initiator{
		chat:    chat,
		store:   store,
		opts:    opts,
		log:     log,
		nowFunc: time.Now,
	}
}

// Run resolves the user, creates today's record with the default hours and
// posts the question. The record is created before posting and marked once
// the message is sent, so a redelivered schedule event neither prompts twice
// nor loses the prompt when the previous post failed.
func (in *Initiator) Run(ctx context.Context) (Result, error) {
	now := in.nowFunc().In(in.opts.Location)
	res := Result{Date: now}

	user, err := in.findUser(ctx)
	if err != nil {
		return res, err
	}
	res.UserID = user.ID

	rec, err := in.store.Create(ctx, now, in.opts.Hours.Default)
	if errors.Is(err, hours.ErrConditionFailed) {
		rec, err = in.store.Get(ctx, now)
		if err != nil {
			return res, fmt.Errorf("get record: %w", err)
		}
		if rec == nil || rec.Prompted != "" {
			// prompted already, or expired between the two calls
			in.log.Info().Str("key", hours.Key(now)).Msg("day already prompted, not prompting again")
			res.Skipped = true
			return res, nil
		}
		in.log.Info().Str("key", rec.PK).Msg("record exists without a prompt, posting again")
	} else if err != nil {
		return res, fmt.Errorf("create record: %w", err)
	}

	blocks := BuildBlocks(in.opts.Question, in.opts.Hours.Values(), now)
	_, ts, err := in.chat.PostMessageContext(ctx, user.ID,
		slack.MsgOptionText(in.opts.Question, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return res, &UpstreamError{Op: "chat.postMessage", Err: err}
	}
	res.MessageTS = ts

	if err := in.store.MarkPrompted(ctx, now, ts); err != nil {
		// the message is out; a retry here would post it twice
		in.log.Warn().Err(err).Str("key", rec.PK).Msg("mark record prompted")
	}

	in.log.Info().
		Str("user", user.ID).
		Str("key", rec.PK).
		Float64("hours", rec.Hours).
		Time("expires", rec.TTL).
		Msg("prompt sent")
	return res, nil
}

func (in *Initiator) findUser(ctx context.Context) (*slack.User, error) {
	users, err := in.chat.GetUsersContext(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "users.list", Err: err}
	}
	for i := range users {
		p := users[i].Profile
		if strings.EqualFold(p.DisplayName, in.opts.DisplayName) ||
			strings.EqualFold(p.DisplayNameNormalized, in.opts.DisplayName) {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUserNotFound, in.opts.DisplayName)
}

// BuildBlocks renders the question and one button per hour value. Each
// button's value is the prompt date so a click after midnight still updates
// the right record.
func BuildBlocks(question string, values []float64, date time.Time) []slack.Block {
	day := date.Format(validation.DateLayout)

	buttons := make([]slack.BlockElement, 0, len(values))
	for _, v := range values {
		label := FormatHours(v)
		buttons = append(buttons, slack.NewButtonBlockElement(
			BlockID+"-"+label,
			day,
			slack.NewTextBlockObject(slack.PlainTextType, label, false, false),
		))
	}

	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.PlainTextType, question, false, false), nil, nil),
		slack.NewActionBlock(BlockID, buttons...),
	}
}

// FormatHours renders an hour value without trailing zeros.
func FormatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
