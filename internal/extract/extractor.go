package extract

import (
	"context"
	"io"
	"time"

	"patta-backend/internal/shared/storage/object"
	"patta-backend/internal/shared/telemetry"
)

// ExtractPattaData reads a stored document, extracts text and runs the field
// rules over it. It never returns an error: when the document cannot be read
// or processed the caller receives a structurally valid record with every
// text field set to its manual-entry sentinel and an error note attached.
func ExtractPattaData(ctx context.Context, store object.ObjectStore, storageKey, mimeType, fileName string) PattaData {
	body, err := store.Open(ctx, storageKey)
	if err != nil {
		return failureRecord(err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return failureRecord(err)
	}

	text, err := TextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return failureRecord(err)
	}

	return ExtractFields(text)
}

func failureRecord(cause error) PattaData {
	telemetry.Warn("extract.failed", map[string]any{"error": cause.Error()})
	return PattaData{
		ClaimantName:   SentinelName,
		District:       SentinelDistrict,
		Village:        SentinelVillage,
		State:          SentinelState,
		Error:          "Failed to extract data from document",
		ExtractionNote: "Please verify extracted information",
		Metadata: Metadata{
			ExtractedAt: time.Now().UTC(),
			Confidence:  0,
		},
	}
}
