package extract

import (
	"context"
	"strings"
	"testing"

	localstore "patta-backend/internal/shared/storage/object/local"
)

func TestExtractPattaDataFromStoredText(t *testing.T) {
	store := localstore.New(t.TempDir())
	key, _, mimeType, err := store.Save(context.Background(), "pattas", "patta.txt",
		strings.NewReader("Name: Ram Kumar Singh, District: Bastar"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	data := ExtractPattaData(context.Background(), store, key, mimeType, "patta.txt")

	if data.ClaimantName != "Ram Kumar Singh" {
		t.Fatalf("claimantName = %q", data.ClaimantName)
	}
	if data.District != "Bastar" {
		t.Fatalf("district = %q", data.District)
	}
}

func TestExtractPattaDataMissingDocumentNeverErrors(t *testing.T) {
	store := localstore.New(t.TempDir())

	data := ExtractPattaData(context.Background(), store, "pattas/does-not-exist.pdf", "application/pdf", "x.pdf")

	if data.ClaimantName != SentinelName || data.District != SentinelDistrict ||
		data.Village != SentinelVillage || data.State != SentinelState {
		t.Fatalf("expected sentinel record, got %+v", data)
	}
	if data.Error == "" {
		t.Fatal("expected error note on failure record")
	}
	if data.Metadata.Confidence != 0 {
		t.Fatalf("confidence = %d, want 0", data.Metadata.Confidence)
	}
}
