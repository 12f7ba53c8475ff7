package extract

import (
	"math"
	"strings"
	"time"
)

const scoredFieldCount = 6

// Validate applies the acceptance thresholds to cleaned field candidates and
// produces the final record with sentinels, confidence and metadata. Manual
// entry routes through this same pass so confidence stays comparable with
// extracted records.
func Validate(raw RawFields) PattaData {
	data := PattaData{}

	if name := strings.TrimSpace(raw.ClaimantName); len([]rune(name)) > 2 {
		data.ClaimantName = truncate(name, maxNameLen)
	} else {
		data.ClaimantName = SentinelName
	}

	data.District = validateLocation(raw.District, SentinelDistrict)
	data.Village = validateLocation(raw.Village, SentinelVillage)
	data.State = validateLocation(raw.State, SentinelState)

	if raw.LandArea != nil {
		area := *raw.LandArea
		if !math.IsNaN(area) && !math.IsInf(area, 0) && area > 0 {
			data.LandArea = &area
		}
	}

	if raw.ApprovalDate != nil && !raw.ApprovalDate.IsZero() {
		d := *raw.ApprovalDate
		data.ApprovalDate = &d
	}

	// Coordinates are all-or-nothing: reject the pair if either component
	// is out of range.
	if c := raw.Coordinates; c != nil {
		if math.Abs(c.Latitude) <= 90 && math.Abs(c.Longitude) <= 180 {
			data.Coordinates = &Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
		}
	}

	data.Metadata = Metadata{
		ExtractedAt:     time.Now().UTC(),
		ExtractedFields: extractedFields(data),
		Confidence:      Confidence(data),
	}

	return data
}

// Confidence is the share of the six scored fields holding a non-sentinel
// value, as a rounded integer percentage. Coordinates never count. The
// denominator is fixed at six regardless of document type.
func Confidence(data PattaData) int {
	count := 0
	for _, v := range []string{data.ClaimantName, data.District, data.Village, data.State} {
		if !IsSentinel(v) {
			count++
		}
	}
	if data.LandArea != nil {
		count++
	}
	if data.ApprovalDate != nil {
		count++
	}
	return int(math.Round(float64(count) / scoredFieldCount * 100))
}

// IsSentinel reports whether a text field holds an extraction-failure
// placeholder rather than a recovered value.
func IsSentinel(value string) bool {
	return strings.Contains(strings.ToLower(value), "required")
}

func validateLocation(value, sentinel string) string {
	value = strings.TrimSpace(value)
	if len([]rune(value)) > 1 {
		return truncate(value, maxLocationLen)
	}
	return sentinel
}

func extractedFields(data PattaData) []string {
	var fields []string
	if !IsSentinel(data.ClaimantName) {
		fields = append(fields, fieldClaimantName)
	}
	if !IsSentinel(data.District) {
		fields = append(fields, fieldDistrict)
	}
	if !IsSentinel(data.Village) {
		fields = append(fields, fieldVillage)
	}
	if !IsSentinel(data.State) {
		fields = append(fields, fieldState)
	}
	if data.LandArea != nil {
		fields = append(fields, fieldLandArea)
	}
	if data.ApprovalDate != nil {
		fields = append(fields, fieldApprovalDate)
	}
	if data.Coordinates != nil {
		fields = append(fields, "coordinates")
	}
	return fields
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
