package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"triage-backend/internal/shared/storage/object"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")
	ctx := context.Background()

	n, err := store.Save(ctx, "image-upload", "ab12/1-scan.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != int64(len("png-bytes")) {
		t.Fatalf("expected %d bytes, got %d", len("png-bytes"), n)
	}

	rc, err := store.Open(ctx, "image-upload", "ab12/1-scan.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestOpenMissingObject(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")

	_, err := store.Open(context.Background(), "image-upload", "nope/missing.png")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")

	if _, err := store.Save(context.Background(), "image-upload", "../../etc/passwd", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := store.Open(context.Background(), "..", "x"); err == nil {
		t.Fatalf("expected bucket traversal rejection")
	}
}

func TestPublicURLKeepsKeySlashes(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080/")

	got := store.PublicURL("image-upload", "ab12/1-my scan.png")
	want := "http://localhost:8080/files/image-upload/ab12/1-my%20scan.png"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
