package pattas

import (
	"time"

	"patta-backend/internal/extract"
)

// PattaView is the wire representation of a record.
type PattaView struct {
	ID            string               `json:"id"`
	ClaimantName  string               `json:"claimantName"`
	District      string               `json:"district"`
	Village       string               `json:"village"`
	State         string               `json:"state"`
	LandArea      *float64             `json:"landArea,omitempty"`
	ApprovalDate  *time.Time           `json:"approvalDate,omitempty"`
	Coordinates   *extract.Coordinates `json:"coordinates,omitempty"`
	ExtractedData extract.PattaData    `json:"extractedData"`
	IsVerified    bool                 `json:"isVerified"`
	FileName      string               `json:"fileName,omitempty"`
	UploadedBy    string               `json:"uploadedBy"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type listResponse struct {
	Pattas     []PattaView `json:"pattas"`
	Pagination pageInfo    `json:"pagination"`
}

type pageInfo struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// batchResult is one entry of the multi-upload aggregate. Per-file failure
// never aborts sibling files.
type batchResult struct {
	FileName string     `json:"fileName"`
	Status   string     `json:"status"`
	Patta    *PattaView `json:"patta,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type manualAddRequest struct {
	ClaimantName string              `json:"claimantName" binding:"required"`
	District     string              `json:"district"`
	Village      string              `json:"village"`
	State        string              `json:"state"`
	LandArea     *float64            `json:"landArea"`
	ApprovalDate *string             `json:"approvalDate"`
	Coordinates  *coordinatesRequest `json:"coordinates"`
}

type updateRequest struct {
	ClaimantName *string             `json:"claimantName"`
	District     *string             `json:"district"`
	Village      *string             `json:"village"`
	State        *string             `json:"state"`
	LandArea     *float64            `json:"landArea"`
	ApprovalDate *string             `json:"approvalDate"`
	Coordinates  *coordinatesRequest `json:"coordinates"`
	IsVerified   *bool               `json:"isVerified"`
}

func toView(patta Patta) PattaView {
	return PattaView{
		ID:            patta.ID,
		ClaimantName:  patta.ClaimantName,
		District:      patta.District,
		Village:       patta.Village,
		State:         patta.State,
		LandArea:      patta.LandArea,
		ApprovalDate:  patta.ApprovalDate,
		Coordinates:   patta.Coordinates,
		ExtractedData: patta.ExtractedData,
		IsVerified:    patta.IsVerified,
		FileName:      patta.FileName,
		UploadedBy:    patta.UploadedBy,
		CreatedAt:     patta.CreatedAt,
		UpdatedAt:     patta.UpdatedAt,
	}
}

func toViews(pattas []Patta) []PattaView {
	out := make([]PattaView, 0, len(pattas))
	for _, patta := range pattas {
		out = append(out, toView(patta))
	}
	return out
}

func parseCoordinates(req *coordinatesRequest) *extract.Coordinates {
	if req == nil || req.Latitude == nil || req.Longitude == nil {
		return nil
	}
	return &extract.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
}

func parseDate(raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, *raw); err == nil {
			return &t, true
		}
	}
	return nil, false
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
