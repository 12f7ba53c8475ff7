package policies

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	localstore "patta-backend/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryRepo(), localstore.New(t.TempDir()))
}

func uploadPolicy(t *testing.T, svc *Service, name, category string) Policy {
	t.Helper()
	p, err := svc.Upload(context.Background(), "ministry-1", UploadInput{
		Name:     name,
		Category: category,
		FileName: "policy.txt",
		Body:     strings.NewReader("policy text"),
	})
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}
	return p
}

func TestUploadAssignsSequentialPolicyNumbers(t *testing.T) {
	svc := newTestService(t)
	year := time.Now().UTC().Year()

	first := uploadPolicy(t, svc, "Community Forest Rights", "Land Rights")
	second := uploadPolicy(t, svc, "Van Dhan Guidelines", "Tribal Welfare")

	if want := fmt.Sprintf("POL-%d-0001", year); first.PolicyNumber != want {
		t.Fatalf("policyNumber = %s, want %s", first.PolicyNumber, want)
	}
	if want := fmt.Sprintf("POL-%d-0002", year); second.PolicyNumber != want {
		t.Fatalf("policyNumber = %s, want %s", second.PolicyNumber, want)
	}
	if !first.IsActive {
		t.Fatal("fresh upload inactive")
	}
}

func TestUploadRejectsUnknownCategory(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upload(context.Background(), "ministry-1", UploadInput{
		Name:     "Misfiled",
		Category: "Mining",
		FileName: "policy.txt",
		Body:     strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("unknown category accepted")
	}

	p := uploadPolicy(t, svc, "Uncategorized", "")
	if p.Category != DefaultCategory {
		t.Fatalf("category = %s, want %s", p.Category, DefaultCategory)
	}
}

func TestViewAndDownloadBumpCounters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p := uploadPolicy(t, svc, "Community Forest Rights", "Land Rights")

	_, body, err := svc.OpenForView(ctx, p.ID)
	if err != nil {
		t.Fatalf("open for view: %v", err)
	}
	content, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(content) != "policy text" {
		t.Fatalf("body = %q", content)
	}

	if _, body, err = svc.OpenForDownload(ctx, p.ID); err != nil {
		t.Fatalf("open for download: %v", err)
	}
	body.Close()

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ViewCount != 1 || got.DownloadCount != 1 {
		t.Fatalf("views = %d, downloads = %d", got.ViewCount, got.DownloadCount)
	}
}

func TestDeactivateHidesPolicy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p := uploadPolicy(t, svc, "Community Forest Rights", "Land Rights")

	if err := svc.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	// Idempotent.
	if err := svc.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("second deactivate: %v", err)
	}

	items, total, err := svc.List(ctx, Filter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("inactive policy still listed: total=%d", total)
	}

	if _, _, err := svc.OpenForView(ctx, p.ID); err != ErrNotFound {
		t.Fatalf("view of inactive policy err = %v, want ErrNotFound", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Active != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
