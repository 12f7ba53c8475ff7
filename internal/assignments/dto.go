package assignments

import (
	"time"

	"patta-backend/internal/extract"
)

type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type areaRequest struct {
	District    string              `json:"district" binding:"required"`
	Villages    []string            `json:"villages"`
	Coordinates *coordinatesRequest `json:"coordinates"`
}

type createRequest struct {
	AssignedTo   string      `json:"assignedTo" binding:"required"`
	Title        string      `json:"title" binding:"required"`
	Description  string      `json:"description"`
	Area         areaRequest `json:"area" binding:"required"`
	Instructions string      `json:"instructions" binding:"required"`
	Objectives   []string    `json:"objectives"`
	Deliverables []string    `json:"expectedDeliverables"`
	Deadline     time.Time   `json:"deadline" binding:"required"`
	Priority     string      `json:"priority"`
}

type statusRequest struct {
	Status          string `json:"status" binding:"required"`
	Progress        *int   `json:"progress"`
	CompletionNotes string `json:"completionNotes"`
}

type feedbackRequest struct {
	Rating   int    `json:"rating" binding:"required"`
	Comments string `json:"comments"`
}

// AssignmentView is the wire representation of an assignment.
type AssignmentView struct {
	ID              string     `json:"id"`
	AssignedTo      string     `json:"assignedTo"`
	AssignedBy      string     `json:"assignedBy"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Area            Area       `json:"area"`
	Instructions    string     `json:"instructions"`
	Objectives      []string   `json:"objectives,omitempty"`
	Deliverables    []string   `json:"expectedDeliverables,omitempty"`
	Deadline        time.Time  `json:"deadline"`
	Priority        Priority   `json:"priority"`
	Status          Status     `json:"status"`
	Progress        int        `json:"progress"`
	Report          *Report    `json:"report,omitempty"`
	CompletionNotes string     `json:"completionNotes,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Feedback        *Feedback  `json:"feedback,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type listResponse struct {
	Assignments []AssignmentView `json:"assignments"`
	Pagination  pageInfo         `json:"pagination"`
}

type myAssignmentsResponse struct {
	Assignments []AssignmentView `json:"assignments"`
	Stats       AssigneeStats    `json:"stats"`
	Pagination  pageInfo         `json:"pagination"`
}

type pageInfo struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

func toView(a Assignment) AssignmentView {
	return AssignmentView{
		ID:              a.ID,
		AssignedTo:      a.AssignedTo,
		AssignedBy:      a.AssignedBy,
		Title:           a.Title,
		Description:     a.Description,
		Area:            a.Area,
		Instructions:    a.Instructions,
		Objectives:      a.Objectives,
		Deliverables:    a.Deliverables,
		Deadline:        a.Deadline,
		Priority:        a.Priority,
		Status:          a.Status,
		Progress:        a.Progress,
		Report:          a.Report,
		CompletionNotes: a.CompletionNotes,
		CompletedAt:     a.CompletedAt,
		Feedback:        a.Feedback,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toViews(items []Assignment) []AssignmentView {
	out := make([]AssignmentView, 0, len(items))
	for _, a := range items {
		out = append(out, toView(a))
	}
	return out
}

func (r areaRequest) area() Area {
	area := Area{District: r.District, Villages: r.Villages}
	if c := r.Coordinates; c != nil && c.Latitude != nil && c.Longitude != nil {
		area.Coordinates = &extract.Coordinates{Latitude: *c.Latitude, Longitude: *c.Longitude}
	}
	return area
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		limit = 10
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}
