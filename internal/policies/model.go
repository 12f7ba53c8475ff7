package policies

import "time"

// Categories is the closed set of policy document categories.
var Categories = []string{
	"Land Rights",
	"Forest Conservation",
	"Tribal Welfare",
	"Environmental",
	"Legal Framework",
	"General",
}

const DefaultCategory = "General"

// ValidCategory reports whether a category belongs to the closed set.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Policy is one distributed policy document. Deletion is soft: inactive
// policies stay on disk and in the table but drop out of listings.
type Policy struct {
	ID            string
	Name          string
	Description   string
	Category      string
	PolicyNumber  string
	FilePath      string
	FileName      string
	FileSize      int64
	MimeType      string
	UploadedBy    string
	IsActive      bool
	DownloadCount int
	ViewCount     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CategoryCount is one bucket of the per-category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats is the ministry overview of the policy library.
type Stats struct {
	Total          int             `json:"total"`
	Active         int             `json:"active"`
	TotalViews     int             `json:"totalViews"`
	TotalDownloads int             `json:"totalDownloads"`
	ByCategory     []CategoryCount `json:"categoryDistribution"`
}
