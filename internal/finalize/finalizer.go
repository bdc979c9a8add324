// Package finalize registers expired hour records with the time tracker.
package finalize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/go-autotracker/internal/harvest"
	"github.com/imrishuroy/go-autotracker/internal/hours"
	"github.com/imrishuroy/go-autotracker/internal/validation"
)

const (
	MetricRegistered = "EntriesRegistered"
	MetricFailed     = "EntriesFailed"

	DefaultConcurrency = 8
)

// Reporter publishes failure reports. *aws.Publisher satisfies it.
type Reporter interface {
	PublishJSON(ctx context.Context, v any, attributes map[string]string) error
}

// Counter publishes batch counters. *aws.Metrics satisfies it.
type Counter interface {
	Count(ctx context.Context, counters map[string]int) error
}

// Failure is one record that could not be registered.
type Failure struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Key       string    `json:"key,omitempty"`
	Hours     float64   `json:"hours,omitempty"`
	Error     string    `json:"error"`
	Retryable bool      `json:"retryable"`
	At        time.Time `json:"at"`
}

// Summary is the outcome of one stream batch.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
	Failures  []Failure
}

type Options struct {
	Project     string
	Task        string
	Concurrency int
}

type Finalizer struct {
	tracker  TimeTracker
	reporter Reporter
	counter  Counter
	opts     Options
	log      zerolog.Logger
	nowFunc  func() time.Time
}

// NewFinalizer wires a Finalizer. reporter and counter may be nil.
func NewFinalizer(tracker TimeTracker, reporter Reporter, counter Counter, opts Options, log zerolog.Logger) *Finalizer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Finalizer{
		tracker:  tracker,
		reporter: reporter,
		counter:  counter,
		opts:     opts,
		log:      log,
		nowFunc:  time.Now,
	}
}

type item struct {
	eventID string
	rec     hours.Record
}

// Handle processes a stream batch. Only REMOVE events are registered. The
// returned error is non-nil only when the batch could not start (user or
// assignment lookup failed); per-item failures are reported in the Summary.
func (f *Finalizer) Handle(ctx context.Context, ev events.DynamoDBEvent) (Summary, error) {
	var (
		sum   Summary
		items []item
	)

	for _, r := range ev.Records {
		if !strings.EqualFold(r.EventName, string(events.DynamoDBOperationTypeRemove)) {
			continue
		}
		sum.Processed++

		rec, err := hours.FromStreamImage(r.Change.OldImage)
		if err != nil {
			sum.Failures = append(sum.Failures, f.failure(r.EventID, rec, err))
			continue
		}
		items = append(items, item{eventID: r.EventID, rec: rec})
	}

	if len(items) > 0 {
		if err := f.register(ctx, items, &sum); err != nil {
			return sum, err
		}
	}

	sum.Failed = len(sum.Failures)
	f.report(ctx, sum)
	return sum, nil
}

func (f *Finalizer) register(ctx context.Context, items []item, sum *Summary) error {
	me, err := f.tracker.Me(ctx)
	if err != nil {
		return fmt.Errorf("resolve harvest user: %w", err)
	}
	assignments, err := f.tracker.ProjectAssignments(ctx)
	if err != nil {
		return fmt.Errorf("list project assignments: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)

	for _, it := range items {
		it := it
		g.Go(func() error {
			entry, err := f.registerOne(gctx, me, assignments, it.rec)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sum.Failures = append(sum.Failures, f.failure(it.eventID, it.rec, err))
				return nil
			}
			sum.Succeeded++
			f.log.Info().
				Str("event_id", it.eventID).
				Str("key", it.rec.PK).
				Int64("entry_id", entry.ID).
				Float64("hours", entry.Hours).
				Msg("time entry registered")
			return nil
		})
	}
	// items never return an error so the group context is not cancelled early
	return g.Wait()
}

func (f *Finalizer) registerOne(ctx context.Context, me *harvest.Me, assignments []harvest.ProjectAssignment, rec hours.Record) (*harvest.TimeEntry, error) {
	projectID, taskID, err := harvest.FindAssignment(assignments, f.opts.Project, f.opts.Task)
	if err != nil {
		return nil, err
	}

	date, ok := hours.DateFromKey(rec.PK)
	if !ok {
		return nil, fmt.Errorf("%w: no date in key %q", hours.ErrInvalidImage, rec.PK)
	}

	return f.tracker.CreateTimeEntry(ctx, harvest.CreateTimeEntryRequest{
		UserID:    me.ID,
		ProjectID: projectID,
		TaskID:    taskID,
		SpentDate: date.Format(validation.DateLayout),
		Hours:     rec.Hours,
	})
}

func (f *Finalizer) failure(eventID string, rec hours.Record, err error) Failure {
	var apiErr *harvest.APIError
	retryable := errors.As(err, &apiErr) && apiErr.Retryable()

	f.log.Error().
		Err(err).
		Str("event_id", eventID).
		Str("key", rec.PK).
		Float64("hours", rec.Hours).
		Msg("time entry not registered")

	return Failure{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Key:       rec.PK,
		Hours:     rec.Hours,
		Error:     err.Error(),
		Retryable: retryable,
		At:        f.nowFunc().UTC(),
	}
}

func (f *Finalizer) report(ctx context.Context, sum Summary) {
	if f.reporter != nil {
		for _, fl := range sum.Failures {
			if err := f.reporter.PublishJSON(ctx, fl, map[string]string{"key": fl.Key}); err != nil {
				f.log.Warn().Err(err).Str("failure_id", fl.ID).Msg("publish failure report")
			}
		}
	}

	if f.counter != nil && sum.Processed > 0 {
		err := f.counter.Count(ctx, map[string]int{
			MetricRegistered: sum.Succeeded,
			MetricFailed:     sum.Failed,
		})
		if err != nil {
			f.log.Warn().Err(err).Msg("publish metrics")
		}
	}

	f.log.Info().
		Int("processed", sum.Processed).
		Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).
		Msg("batch finalized")
}
