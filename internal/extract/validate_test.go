package extract

import (
	"strings"
	"testing"
	"time"
)

func TestValidateShortValuesBecomeSentinels(t *testing.T) {
	data := Validate(RawFields{
		ClaimantName: "Ra",
		District:     "R",
		Village:      "Ab",
		State:        "",
	})

	if data.ClaimantName != SentinelName {
		t.Fatalf("claimantName = %q", data.ClaimantName)
	}
	if data.District != SentinelDistrict {
		t.Fatalf("district = %q", data.District)
	}
	if data.Village != "Ab" {
		t.Fatalf("village = %q, two characters should pass", data.Village)
	}
	if data.State != SentinelState {
		t.Fatalf("state = %q", data.State)
	}
}

func TestValidateTruncatesLongValues(t *testing.T) {
	data := Validate(RawFields{
		ClaimantName: strings.Repeat("a", 150),
		District:     strings.Repeat("b", 80),
	})

	if got := len([]rune(data.ClaimantName)); got != 100 {
		t.Fatalf("claimantName length = %d, want 100", got)
	}
	if got := len([]rune(data.District)); got != 50 {
		t.Fatalf("district length = %d, want 50", got)
	}
}

func TestValidateRejectsNonPositiveLandArea(t *testing.T) {
	zero := 0.0
	negative := -1.5

	if data := Validate(RawFields{LandArea: &zero}); data.LandArea != nil {
		t.Fatalf("zero land area accepted: %v", *data.LandArea)
	}
	if data := Validate(RawFields{LandArea: &negative}); data.LandArea != nil {
		t.Fatalf("negative land area accepted: %v", *data.LandArea)
	}
}

func TestValidateCoordinatesAllOrNothing(t *testing.T) {
	data := Validate(RawFields{
		Coordinates: &Coordinates{Latitude: 91, Longitude: 10},
	})
	if data.Coordinates != nil {
		t.Fatalf("out-of-range pair accepted: %+v", data.Coordinates)
	}

	data = Validate(RawFields{
		Coordinates: &Coordinates{Latitude: 45, Longitude: 120},
	})
	if data.Coordinates == nil || data.Coordinates.Latitude != 45 || data.Coordinates.Longitude != 120 {
		t.Fatalf("in-range pair mangled: %+v", data.Coordinates)
	}
}

func TestConfidenceCountsSixFields(t *testing.T) {
	area := 2.5
	date := time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC)

	full := Validate(RawFields{
		ClaimantName: "Ram Kumar",
		District:     "Raipur",
		Village:      "Abhanpur",
		State:        "Chhattisgarh",
		LandArea:     &area,
		ApprovalDate: &date,
	})
	if full.Metadata.Confidence != 100 {
		t.Fatalf("confidence = %d, want 100", full.Metadata.Confidence)
	}

	// Coordinates never count toward the score.
	withCoords := Validate(RawFields{
		ClaimantName: "Ram Kumar",
		Coordinates:  &Coordinates{Latitude: 20, Longitude: 80},
	})
	if withCoords.Metadata.Confidence != 17 {
		t.Fatalf("confidence = %d, want 17", withCoords.Metadata.Confidence)
	}
}

func TestIsSentinel(t *testing.T) {
	if !IsSentinel(SentinelName) || !IsSentinel("Manual entry REQUIRED") {
		t.Fatal("sentinel values not recognized")
	}
	if IsSentinel("Ram Kumar") {
		t.Fatal("real value flagged as sentinel")
	}
}

func TestValidateMetadataListsExtractedFields(t *testing.T) {
	area := 1.0
	data := Validate(RawFields{
		ClaimantName: "Ram Kumar",
		District:     "Raipur",
		LandArea:     &area,
	})

	want := map[string]bool{"claimantName": true, "district": true, "landArea": true}
	if len(data.Metadata.ExtractedFields) != len(want) {
		t.Fatalf("extractedFields = %v", data.Metadata.ExtractedFields)
	}
	for _, f := range data.Metadata.ExtractedFields {
		if !want[f] {
			t.Fatalf("unexpected field %q in %v", f, data.Metadata.ExtractedFields)
		}
	}
}
