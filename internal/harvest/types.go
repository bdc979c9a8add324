package harvest

type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Task struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TaskAssignment struct {
	ID   int64 `json:"id"`
	Task Task  `json:"task"`
}

type ProjectAssignment struct {
	ID              int64            `json:"id"`
	Project         Project          `json:"project"`
	TaskAssignments []TaskAssignment `json:"task_assignments"`
}

// Me is the authenticated user.
type Me struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type projectAssignmentsPage struct {
	ProjectAssignments []ProjectAssignment `json:"project_assignments"`
	NextPage           *int                `json:"next_page"`
}

// CreateTimeEntryRequest is the body of POST /time_entries.
type CreateTimeEntryRequest struct {
	UserID    int64   `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	ProjectID int64   `json:"project_id" validate:"required,gt=0"`
	TaskID    int64   `json:"task_id" validate:"required,gt=0"`
	SpentDate string  `json:"spent_date" validate:"required,isodate"`
	Hours     float64 `json:"hours" validate:"gte=0,lte=24"`
	Notes     string  `json:"notes,omitempty"`
}

// TimeEntry is the subset of the created entry we log.
type TimeEntry struct {
	ID        int64   `json:"id"`
	SpentDate string  `json:"spent_date"`
	Hours     float64 `json:"hours"`
	IsRunning bool    `json:"is_running"`
}
