package doctors

import (
	"context"
	"errors"
	"testing"

	"triage-backend/internal/cache"
)

func TestRouteOncePerAnalysis(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	kase, err := svc.Route(ctx, "analysis-1", "doc-1", "google:pat")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if kase.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", kase.Status)
	}

	if _, err := svc.Route(ctx, "analysis-1", "doc-1", "google:pat"); !errors.Is(err, ErrAlreadyRouted) {
		t.Fatalf("expected ErrAlreadyRouted, got %v", err)
	}
}

func TestRouteUnknownDoctor(t *testing.T) {
	svc, _ := seededService(t)
	if _, err := svc.Route(context.Background(), "analysis-1", "doc-missing", "google:pat"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewScopedToOwningDoctor(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Seed(Doctor{ID: "doc-1", Email: "chen@clinic.example", FullName: "Dr. Chen"})
	repo.Seed(Doctor{ID: "doc-2", Email: "ruiz@clinic.example", FullName: "Dr. Ruiz"})
	svc := NewService(repo, cache.NewMemoryStore())
	ctx := context.Background()

	kase, err := svc.Route(ctx, "analysis-1", "doc-1", "google:pat")
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	if _, err := svc.Review(ctx, kase.ID, "doc-2", "looks fine"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign doctor, got %v", err)
	}

	reviewed, err := svc.Review(ctx, kase.ID, "doc-1", "looks fine")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != StatusReviewed || reviewed.ReviewNote != "looks fine" {
		t.Fatalf("unexpected case after review: %+v", reviewed)
	}
}

func TestCaseStatusUnroutedIsEmpty(t *testing.T) {
	svc, _ := seededService(t)
	status, doctorName, err := svc.CaseStatus(context.Background(), "analysis-unknown")
	if err != nil {
		t.Fatalf("case status: %v", err)
	}
	if status != "" || doctorName != "" {
		t.Fatalf("expected empty routing state, got %q %q", status, doctorName)
	}
}

func TestCaseStatusRouted(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()
	if _, err := svc.Route(ctx, "analysis-1", "doc-1", "google:pat"); err != nil {
		t.Fatalf("route: %v", err)
	}

	status, doctorName, err := svc.CaseStatus(ctx, "analysis-1")
	if err != nil {
		t.Fatalf("case status: %v", err)
	}
	if status != StatusPending || doctorName != "Dr. Chen" {
		t.Fatalf("expected pending/Dr. Chen, got %q %q", status, doctorName)
	}
}
