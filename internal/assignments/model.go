package assignments

import (
	"time"

	"patta-backend/internal/extract"
)

// Status is the assignment lifecycle state.
type Status string

const (
	StatusActive     Status = "active"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusOverdue    Status = "overdue"
)

// ParseStatus maps a raw string onto the closed status set.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusActive, StatusInProgress, StatusCompleted, StatusCancelled, StatusOverdue:
		return Status(raw), true
	}
	return "", false
}

// Priority orders assignments by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority maps a raw string onto the closed priority set.
func ParsePriority(raw string) (Priority, bool) {
	switch Priority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(raw), true
	}
	return "", false
}

// Area describes where the field verification takes place.
type Area struct {
	District    string               `json:"district"`
	Villages    []string             `json:"villages,omitempty"`
	Coordinates *extract.Coordinates `json:"coordinates,omitempty"`
}

// Attachment is one file uploaded with a verification report.
type Attachment struct {
	FileName  string `json:"fileName"`
	FilePath  string `json:"filePath"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Report is the structured verification report an NGO submits. Submitting a
// report always forces the assignment to completed.
type Report struct {
	Summary         string       `json:"summary"`
	Findings        []string     `json:"findings,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Challenges      []string     `json:"challenges,omitempty"`
	VillagesVisited []string     `json:"villagesVisited,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	SubmittedAt     time.Time    `json:"submittedAt"`
}

// Feedback is the ministry's review of a completed assignment.
type Feedback struct {
	Rating   int       `json:"rating"`
	Comments string    `json:"comments,omitempty"`
	GivenBy  string    `json:"givenBy"`
	GivenAt  time.Time `json:"givenAt"`
}

// Assignment is one unit of field verification work given to an NGO.
type Assignment struct {
	ID              string
	AssignedTo      string
	AssignedBy      string
	Title           string
	Description     string
	Area            Area
	Instructions    string
	Objectives      []string
	Deliverables    []string
	Deadline        time.Time
	Priority        Priority
	Status          Status
	Progress        int
	Report          *Report
	CompletionNotes string
	CompletedAt     *time.Time
	Feedback        *Feedback
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MonthCount is one bucket of the monthly creation counts, keyed YYYY-MM.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Stats is the ministry overview of all assignments.
type Stats struct {
	Total      int              `json:"total"`
	Active     int              `json:"active"`
	InProgress int              `json:"inProgress"`
	Completed  int              `json:"completed"`
	Cancelled  int              `json:"cancelled"`
	Overdue    int              `json:"overdue"`
	ByPriority map[Priority]int `json:"priorityDistribution"`
	Monthly    []MonthCount     `json:"monthlyCreated"`
}

// AssigneeStats summarizes one NGO's workload.
type AssigneeStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}
