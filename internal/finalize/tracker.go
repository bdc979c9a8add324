package finalize

import (
	"context"

	"github.com/imrishuroy/go-autotracker/internal/harvest"
)

//go:generate mockgen -source=tracker.go -destination=mock_tracker_test.go -package=finalize

// TimeTracker is the part of the Harvest client the finalizer needs.
type TimeTracker interface {
	Me(ctx context.Context) (*harvest.Me, error)
	ProjectAssignments(ctx context.Context) ([]harvest.ProjectAssignment, error)
	CreateTimeEntry(ctx context.Context, req harvest.CreateTimeEntryRequest) (*harvest.TimeEntry, error)
}
