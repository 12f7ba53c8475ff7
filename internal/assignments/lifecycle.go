package assignments

import (
	"fmt"
	"time"
)

// transitions is the explicit table of caller-requested status changes.
// The automatic active→overdue correction is not in the table; it is applied
// by WithDerivedStatus before any transition check. Overdue assignments can
// still be worked, so they share the active row.
var transitions = map[Status][]Status{
	StatusActive:     {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusOverdue:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// WithDerivedStatus returns the assignment with the automatic overdue
// correction applied: an active assignment whose deadline has passed reads as
// overdue. Pure function; callers decide whether to persist the result.
func WithDerivedStatus(a Assignment, now time.Time) Assignment {
	if a.Status == StatusActive && now.After(a.Deadline) {
		a.Status = StatusOverdue
	}
	return a
}

// ValidateTransition reports whether a caller may move an assignment from
// one status to another. Terminal states never transition.
func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, from, to)
}
