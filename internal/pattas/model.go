package pattas

import (
	"time"

	"patta-backend/internal/extract"
)

// Patta is one Forest Rights Act land-title record. The normalized top-level
// fields mirror the extractor output; ExtractedData keeps the full extraction
// result including confidence metadata.
type Patta struct {
	ID            string
	ClaimantName  string
	District      string
	Village       string
	State         string
	LandArea      *float64
	ApprovalDate  *time.Time
	Coordinates   *extract.Coordinates
	ExtractedData extract.PattaData
	IsVerified    bool
	FilePath      string
	FileName      string
	UploadedBy    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MapPoint is the coordinates-only projection served to the mapping UI.
type MapPoint struct {
	ID           string  `json:"id"`
	ClaimantName string  `json:"claimantName"`
	District     string  `json:"district"`
	Village      string  `json:"village"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	IsVerified   bool    `json:"isVerified"`
}

// DistrictCount is one bucket of the district-wise distribution.
type DistrictCount struct {
	District string `json:"district"`
	Count    int    `json:"count"`
}

// MonthCount is one bucket of the monthly upload counts, keyed YYYY-MM.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Stats is the ministry overview of the patta store.
type Stats struct {
	Total      int             `json:"total"`
	Verified   int             `json:"verified"`
	Pending    int             `json:"pending"`
	ByDistrict []DistrictCount `json:"districtDistribution"`
	Monthly    []MonthCount    `json:"monthlyUploads"`
}
