package policies

import "time"

// PolicyView is the wire representation of a policy. The storage path is
// never exposed; clients fetch the document through view/download.
type PolicyView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	PolicyNumber  string    `json:"policyNumber"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	MimeType      string    `json:"mimeType"`
	UploadedBy    string    `json:"uploadedBy"`
	DownloadCount int       `json:"downloadCount"`
	ViewCount     int       `json:"viewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type listResponse struct {
	Policies   []PolicyView `json:"policies"`
	Pagination pageInfo     `json:"pagination"`
}

type pageInfo struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

func toView(p Policy) PolicyView {
	return PolicyView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		PolicyNumber:  p.PolicyNumber,
		FileName:      p.FileName,
		FileSize:      p.FileSize,
		MimeType:      p.MimeType,
		UploadedBy:    p.UploadedBy,
		DownloadCount: p.DownloadCount,
		ViewCount:     p.ViewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toViews(items []Policy) []PolicyView {
	out := make([]PolicyView, 0, len(items))
	for _, p := range items {
		out = append(out, toView(p))
	}
	return out
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
