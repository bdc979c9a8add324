package harvest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProjectNotFound = errors.New("harvest: project not found")
	ErrTaskNotFound    = errors.New("harvest: task not found")
)

// FindAssignment returns the project and task ids whose names match
// projectName and taskName exactly, ignoring case.
func FindAssignment(assignments []ProjectAssignment, projectName, taskName string) (projectID, taskID int64, err error) {
	for _, pa := range assignments {
		if !strings.EqualFold(pa.Project.Name, projectName) {
			continue
		}
		for _, ta := range pa.TaskAssignments {
			if strings.EqualFold(ta.Task.Name, taskName) {
				return pa.Project.ID, ta.Task.ID, nil
			}
		}
		return 0, 0, fmt.Errorf("%w: %q in project %q", ErrTaskNotFound, taskName, pa.Project.Name)
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrProjectNotFound, projectName)
}
