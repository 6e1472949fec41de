package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"triage-backend/internal/inference"
)

type stubStore struct {
	saves int
}

func (s *stubStore) Save(ctx context.Context, bucket, key, contentType string, r io.Reader) (int64, error) {
	s.saves++
	return io.Copy(io.Discard, r)
}

func (s *stubStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (s *stubStore) PublicURL(bucket, key string) string {
	return "http://files.test/" + bucket + "/" + key
}

type stubClient struct {
	calls    int
	payloads []inference.Payload
	result   inference.Result
	err      error
}

func (c *stubClient) Analyze(ctx context.Context, payload inference.Payload) (inference.Result, error) {
	c.calls++
	c.payloads = append(c.payloads, payload)
	return c.result, c.err
}

func analysisResult(final string) inference.Result {
	raw := []byte(`{"analysis":{"final_analysis":"` + final + `"}}`)
	return inference.ParseResult(raw)
}

func newTestService(client *stubClient) (*Service, *stubStore) {
	store := &stubStore{}
	return NewService(NewDraftStore(), store, client), store
}

func TestSubmitEmptyQuestionNeverCallsInference(t *testing.T) {
	client := &stubClient{result: analysisResult("ok")}
	svc, _ := newTestService(client)

	for _, q := range []string{"", "   ", "\n\t "} {
		_, err := svc.Submit(context.Background(), "user-1", q)
		if !errors.Is(err, ErrEmptyQuestion) {
			t.Fatalf("question %q: expected ErrEmptyQuestion, got %v", q, err)
		}
	}
	if client.calls != 0 {
		t.Fatalf("expected no inference calls, got %d", client.calls)
	}
}

func TestSubmitBuildsPayload(t *testing.T) {
	client := &stubClient{result: analysisResult("Recommend rest and hydration.")}
	svc, _ := newTestService(client)
	ctx := context.Background()

	if _, _, err := svc.AttachFile(ctx, "user-1", "rash.png", "image/png", strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("attach image: %v", err)
	}
	svc.Drafts.RecordKeyDown("user-1", "a", 100)
	svc.Drafts.RecordKeyUp("user-1", "a", 160)

	outcome, err := svc.Submit(ctx, "user-1", "  I have a rash  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.SubmissionID == "" {
		t.Fatalf("expected submission id")
	}

	if len(client.payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(client.payloads))
	}
	p := client.payloads[0]
	if p.Question != "I have a rash" {
		t.Fatalf("expected trimmed question, got %q", p.Question)
	}
	if p.Image == "" || !strings.Contains(p.Image, "image.upload") {
		t.Fatalf("expected image URL, got %q", p.Image)
	}
	if p.Audio != "" {
		t.Fatalf("expected empty audio, got %q", p.Audio)
	}
	if len(p.Typing.Keystrokes) != 1 || p.Typing.Keystrokes[0].Key != "a" {
		t.Fatalf("expected keystrokes in payload, got %+v", p.Typing.Keystrokes)
	}
}

func TestSubmitClearsDraftOnSuccess(t *testing.T) {
	client := &stubClient{result: analysisResult("ok")}
	svc, _ := newTestService(client)
	ctx := context.Background()

	if _, _, err := svc.AttachFile(ctx, "user-1", "rash.png", "image/png", strings.NewReader("x")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := svc.Submit(ctx, "user-1", "question"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	image, audio, keystrokes := svc.Drafts.Snapshot("user-1")
	if image != "" || audio != "" || len(keystrokes) != 0 {
		t.Fatalf("expected fresh draft after success, got image=%q audio=%q keys=%d", image, audio, len(keystrokes))
	}
}

func TestSubmitKeepsDraftOnTransportError(t *testing.T) {
	client := &stubClient{err: inference.ErrUnavailable}
	svc, _ := newTestService(client)
	ctx := context.Background()

	if _, _, err := svc.AttachFile(ctx, "user-1", "cough.wav", "audio/wav", strings.NewReader("x")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := svc.Submit(ctx, "user-1", "question"); !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	_, audio, _ := svc.Drafts.Snapshot("user-1")
	if audio == "" {
		t.Fatalf("expected audio attachment to survive a failed submit")
	}

	// The in-flight mark is released, so a retry goes through.
	client.err = nil
	client.result = analysisResult("ok")
	if _, err := svc.Submit(ctx, "user-1", "question"); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}

func TestSubmitKeepsDraftOnInBandError(t *testing.T) {
	client := &stubClient{result: inference.ParseResult([]byte(`{"error":"image could not be processed"}`))}
	svc, _ := newTestService(client)
	ctx := context.Background()

	outcome, err := svc.Submit(ctx, "user-1", "question")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Result.Kind != inference.KindError {
		t.Fatalf("expected error kind, got %s", outcome.Result.Kind)
	}
	if outcome.SubmissionID != "" {
		t.Fatalf("expected no submission id for error result")
	}
}

func TestAttachRejectsSecondImageBeforeUpload(t *testing.T) {
	client := &stubClient{}
	svc, store := newTestService(client)
	ctx := context.Background()

	first, _, err := svc.AttachFile(ctx, "user-1", "one.png", "image/png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("attach first: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("expected 1 save, got %d", store.saves)
	}

	_, _, err = svc.AttachFile(ctx, "user-1", "two.png", "image/png", strings.NewReader("y"))
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("rejected duplicate must not be stored, saves=%d", store.saves)
	}

	image, _, _ := svc.Drafts.Snapshot("user-1")
	if image != first {
		t.Fatalf("expected first attachment kept, got %q", image)
	}
}

func TestAttachAllowsOneImageAndOneAudio(t *testing.T) {
	client := &stubClient{}
	svc, _ := newTestService(client)
	ctx := context.Background()

	if _, cat, err := svc.AttachFile(ctx, "user-1", "a.png", "image/png", strings.NewReader("x")); err != nil || cat != CategoryImage {
		t.Fatalf("attach image: cat=%q err=%v", cat, err)
	}
	if _, cat, err := svc.AttachFile(ctx, "user-1", "b.wav", "audio/wav", strings.NewReader("x")); err != nil || cat != CategoryAudio {
		t.Fatalf("attach audio: cat=%q err=%v", cat, err)
	}
}

func TestAttachRejectsUnsupportedType(t *testing.T) {
	client := &stubClient{}
	svc, store := newTestService(client)

	_, _, err := svc.AttachFile(context.Background(), "user-1", "doc.pdf", "application/pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("unsupported upload must not be stored")
	}
}
