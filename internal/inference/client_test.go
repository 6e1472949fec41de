package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, "test-key", 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestAnalyzePostsPayloadToChatEndpoint(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload Payload
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"analysis":{"final_analysis":"ok"}}`))
	})

	up := int64(160)
	payload := Payload{
		Question: "I have a headache",
		Image:    "http://files.test/image.upload/x.png",
		Typing:   Typing{Keystrokes: []Keystroke{{Key: "a", TimeDown: 100, TimeUp: &up}}},
	}
	res, err := client.Analyze(context.Background(), payload)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if gotPath != "/api/external/chat" {
		t.Fatalf("expected /api/external/chat, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotPayload.Question != payload.Question || gotPayload.Image != payload.Image {
		t.Fatalf("payload mismatch: %+v", gotPayload)
	}
	if gotPayload.Audio != "" {
		t.Fatalf("expected empty audio field present on the wire, got %q", gotPayload.Audio)
	}
	if len(gotPayload.Typing.Keystrokes) != 1 || gotPayload.Typing.Keystrokes[0].TimeUp == nil {
		t.Fatalf("keystrokes not carried: %+v", gotPayload.Typing)
	}
	if res.Kind != KindAnalysis {
		t.Fatalf("expected analysis kind, got %s", res.Kind)
	}
}

func TestAnalyzeBodyErrorIsResultNotError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error":"audio file unreadable"}`))
	})

	res, err := client.Analyze(context.Background(), Payload{Question: "q"})
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if res.Kind != KindError || res.Err != "audio file unreadable" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAnalyzeServerErrorWithGarbageBodyIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	})

	_, err := client.Analyze(context.Background(), Payload{Question: "q"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAnalyzeConnectFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client, err := NewHTTPClient(srv.URL, "", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Analyze(context.Background(), Payload{Question: "q"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewHTTPClientRequiresURL(t *testing.T) {
	if _, err := NewHTTPClient("", "", 0); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
