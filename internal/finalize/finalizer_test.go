package finalize

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-autotracker/internal/harvest"
)

type fakeReporter struct {
	mu       sync.Mutex
	messages []any
	err      error
}

func (r *fakeReporter) PublishJSON(ctx context.Context, v any, attributes map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, v)
	return r.err
}

type fakeCounter struct {
	counters map[string]int
	err      error
}

func (c *fakeCounter) Count(ctx context.Context, counters map[string]int) error {
	c.counters = counters
	return c.err
}

func removeEvent(id, pk, hours string) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventID:   id,
		EventName: "REMOVE",
		Change: events.DynamoDBStreamRecord{
			OldImage: map[string]events.DynamoDBAttributeValue{
				"pk":    events.NewStringAttribute(pk),
				"sk":    events.NewStringAttribute("void"),
				"hours": events.NewNumberAttribute(hours),
				"ttl":   events.NewNumberAttribute("1645982037"),
			},
		},
	}
}

func assignments(project, task string) []harvest.ProjectAssignment {
	return []harvest.ProjectAssignment{{
		ID:      1,
		Project: harvest.Project{ID: 100, Name: project},
		TaskAssignments: []harvest.TaskAssignment{
			{ID: 2, Task: harvest.Task{ID: 200, Name: task}},
		},
	}}
}

func newTestFinalizer(tracker TimeTracker, r Reporter, c Counter, project string) *Finalizer {
	return NewFinalizer(tracker, r, c, Options{Project: project, Task: "Development", Concurrency: 2}, zerolog.Nop())
}

func TestHandle_RegistersRemovedRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := NewMockTimeTracker(ctrl)

	tracker.EXPECT().Me(gomock.Any()).Return(&harvest.Me{ID: 7}, nil).Times(1)
	tracker.EXPECT().ProjectAssignments(gomock.Any()).Return(assignments("Acme", "Development"), nil).Times(1)
	tracker.EXPECT().CreateTimeEntry(gomock.Any(), harvest.CreateTimeEntryRequest{
		UserID: 7, ProjectID: 100, TaskID: 200, SpentDate: "2022-02-27", Hours: 6,
	}).Return(&harvest.TimeEntry{ID: 1, SpentDate: "2022-02-27", Hours: 6}, nil)
	tracker.EXPECT().CreateTimeEntry(gomock.Any(), harvest.CreateTimeEntryRequest{
		UserID: 7, ProjectID: 100, TaskID: 200, SpentDate: "2022-02-28", Hours: 8,
	}).Return(&harvest.TimeEntry{ID: 2, SpentDate: "2022-02-28", Hours: 8}, nil)

	counter := &fakeCounter{}
	ev := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		removeEvent("e1", "timestamp|2022-02-27", "6"),
		{EventID: "e-insert", EventName: "INSERT"},
		removeEvent("e2", "timestamp|2022-02-28", "8"),
	}}

	sum, err := newTestFinalizer(tracker, &fakeReporter{}, counter, "acme").Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, map[string]int{MetricRegistered: 2, MetricFailed: 0}, counter.counters)
}

func TestHandle_ProjectNotFoundIsReportedPerItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := NewMockTimeTracker(ctrl)

	tracker.EXPECT().Me(gomock.Any()).Return(&harvest.Me{ID: 7}, nil)
	tracker.EXPECT().ProjectAssignments(gomock.Any()).Return(assignments("Acme", "Development"), nil)
	tracker.EXPECT().CreateTimeEntry(gomock.Any(), gomock.Any()).Times(0)

	reporter := &fakeReporter{}
	counter := &fakeCounter{}
	ev := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		removeEvent("e1", "timestamp|2022-02-27", "6"),
	}}

	sum, err := newTestFinalizer(tracker, reporter, counter, "Other").Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, "e1", sum.Failures[0].EventID)
	assert.False(t, sum.Failures[0].Retryable)
	assert.Contains(t, sum.Failures[0].Error, harvest.ErrProjectNotFound.Error())

	require.Len(t, reporter.messages, 1)
	assert.Equal(t, map[string]int{MetricRegistered: 0, MetricFailed: 1}, counter.counters)
}

// Assignments are fetched once per batch against a static project and task,
// so a not-found match fails every item alike (see the test above). The
// per-item failure here is an upstream error on one entry; the batch must
// still register the other.
func TestHandle_MixedBatchJoinsAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := NewMockTimeTracker(ctrl)

	tracker.EXPECT().Me(gomock.Any()).Return(&harvest.Me{ID: 7}, nil)
	tracker.EXPECT().ProjectAssignments(gomock.Any()).Return(assignments("Acme", "Development"), nil)
	tracker.EXPECT().CreateTimeEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req harvest.CreateTimeEntryRequest) (*harvest.TimeEntry, error) {
			if req.SpentDate == "2022-02-28" {
				return nil, &harvest.APIError{Method: "POST", Path: "/time_entries", StatusCode: 503}
			}
			return &harvest.TimeEntry{ID: 1, SpentDate: req.SpentDate, Hours: req.Hours}, nil
		}).Times(2)

	ev := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		removeEvent("e1", "timestamp|2022-02-27", "6"),
		removeEvent("e2", "timestamp|2022-02-28", "8"),
		{EventID: "e3", EventName: "remove", Change: events.DynamoDBStreamRecord{}},
	}}

	sum, err := newTestFinalizer(tracker, nil, nil, "Acme").Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Processed)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 2, sum.Failed)

	byEvent := map[string]Failure{}
	for _, f := range sum.Failures {
		byEvent[f.EventID] = f
	}
	assert.True(t, byEvent["e2"].Retryable)
	assert.Contains(t, byEvent["e3"].Error, "invalid stream image")
}

func TestHandle_LookupFailureFailsInvocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := NewMockTimeTracker(ctrl)

	boom := &harvest.APIError{Method: "GET", Path: "/users/me", StatusCode: 401}
	tracker.EXPECT().Me(gomock.Any()).Return(nil, boom)

	ev := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		removeEvent("e1", "timestamp|2022-02-27", "6"),
	}}

	_, err := newTestFinalizer(tracker, nil, nil, "Acme").Handle(context.Background(), ev)
	var apiErr *harvest.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestHandle_NoRemovalsSkipsTracker(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := NewMockTimeTracker(ctrl)
	counter := &fakeCounter{}

	ev := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		{EventID: "e1", EventName: "INSERT"},
		{EventID: "e2", EventName: "MODIFY"},
	}}

	sum, err := newTestFinalizer(tracker, nil, counter, "Acme").Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Nil(t, counter.counters)
}

func TestHandle_ReportingErrorsAreNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := NewMockTimeTracker(ctrl)

	tracker.EXPECT().Me(gomock.Any()).Return(&harvest.Me{ID: 7}, nil)
	tracker.EXPECT().ProjectAssignments(gomock.Any()).Return(assignments("Acme", "Development"), nil)

	reporter := &fakeReporter{err: errors.New("sqs down")}
	counter := &fakeCounter{err: errors.New("cloudwatch down")}
	ev := events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		removeEvent("e1", "timestamp|2022-02-27", "6"),
	}}

	sum, err := newTestFinalizer(tracker, reporter, counter, "Missing").Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
}
