package assignments

import (
	"testing"
	"time"
)

func TestWithDerivedStatusOverdue(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	a := Assignment{Status: StatusActive, Deadline: now.Add(-time.Hour)}
	if got := WithDerivedStatus(a, now).Status; got != StatusOverdue {
		t.Fatalf("past-deadline active = %s, want overdue", got)
	}

	a = Assignment{Status: StatusActive, Deadline: now.Add(time.Hour)}
	if got := WithDerivedStatus(a, now).Status; got != StatusActive {
		t.Fatalf("future-deadline active = %s, want active", got)
	}
}

func TestWithDerivedStatusOnlyRewritesActive(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	for _, status := range []Status{StatusInProgress, StatusCompleted, StatusCancelled, StatusOverdue} {
		a := Assignment{Status: status, Deadline: past}
		if got := WithDerivedStatus(a, now).Status; got != status {
			t.Fatalf("%s with past deadline rewritten to %s", status, got)
		}
	}
}

func TestValidateTransitionTable(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusActive, StatusInProgress},
		{StatusActive, StatusCompleted},
		{StatusActive, StatusCancelled},
		{StatusOverdue, StatusInProgress},
		{StatusOverdue, StatusCompleted},
		{StatusOverdue, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
	}
	for _, tc := range allowed {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Fatalf("%s -> %s rejected: %v", tc.from, tc.to, err)
		}
	}

	rejected := []struct{ from, to Status }{
		{StatusCompleted, StatusInProgress},
		{StatusCompleted, StatusActive},
		{StatusCancelled, StatusInProgress},
		{StatusCancelled, StatusCompleted},
		{StatusInProgress, StatusActive},
		{StatusActive, StatusOverdue},
	}
	for _, tc := range rejected {
		if err := ValidateTransition(tc.from, tc.to); err == nil {
			t.Fatalf("%s -> %s accepted, want error", tc.from, tc.to)
		}
	}
}

func TestValidateTransitionSameStatusIsNoop(t *testing.T) {
	for _, status := range []Status{StatusActive, StatusInProgress, StatusCompleted, StatusCancelled, StatusOverdue} {
		if err := ValidateTransition(status, status); err != nil {
			t.Fatalf("%s -> %s rejected: %v", status, status, err)
		}
	}
}
