package extract

import "time"

// Coordinates is a validated latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Metadata describes one extraction run.
type Metadata struct {
	ExtractedAt     time.Time `json:"extractedAt"`
	ExtractedFields []string  `json:"extractedFields"`
	Confidence      int       `json:"confidence"`
}

// PattaData is the structured best-effort output of the field extractor.
// Text fields that could not be recovered hold their sentinel value, never
// the empty string.
type PattaData struct {
	ClaimantName   string       `json:"claimantName"`
	District       string       `json:"district"`
	Village        string       `json:"village"`
	State          string       `json:"state"`
	LandArea       *float64     `json:"landArea,omitempty"`
	ApprovalDate   *time.Time   `json:"approvalDate,omitempty"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	Error          string       `json:"error,omitempty"`
	ExtractionNote string       `json:"extractionNote,omitempty"`
	Metadata       Metadata     `json:"extractionMetadata"`
}

// RawFields holds cleaned-but-unvalidated field candidates. Both the
// extractor and the manual-entry path feed this through Validate so the
// acceptance thresholds and confidence scoring stay consistent.
type RawFields struct {
	ClaimantName string
	District     string
	Village      string
	State        string
	LandArea     *float64
	ApprovalDate *time.Time
	Coordinates  *Coordinates
}

// Sentinel values for fields the extractor could not recover.
const (
	SentinelName     = "Name extraction required"
	SentinelDistrict = "District required"
	SentinelVillage  = "Village required"
	SentinelState    = "State required"
)

const (
	maxNameLen     = 100
	maxLocationLen = 50
)
