package services

import "taskflow/internal/models"

// Допустимые переходы статусов. Every pair is allowed and no status is
// terminal: completed or cancelled tasks can be reopened.
var TaskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusPending:    {models.StatusInProgress: true, models.StatusCompleted: true, models.StatusCancelled: true},
	models.StatusInProgress: {models.StatusPending: true, models.StatusCompleted: true, models.StatusCancelled: true},
	models.StatusCompleted:  {models.StatusPending: true, models.StatusInProgress: true, models.StatusCancelled: true},
	models.StatusCancelled:  {models.StatusPending: true, models.StatusInProgress: true, models.StatusCompleted: true},
}

func canTransition(current, to models.TaskStatus) bool {
	if current == to {
		return true
	}
	nexts, ok := TaskTransitions[current]
	if !ok {
		// unknown stored value, let it move to any valid status
		return to.Valid()
	}
	return nexts[to]
}
