package intake

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"triage-backend/internal/inference"
	"triage-backend/internal/shared/metrics"
	"triage-backend/internal/shared/storage/object"
	"triage-backend/internal/shared/telemetry"
)

type Service struct {
	Drafts *DraftStore
	Store  object.ObjectStore
	Client inference.Client
}

func NewService(drafts *DraftStore, store object.ObjectStore, client inference.Client) *Service {
	return &Service{Drafts: drafts, Store: store, Client: client}
}

// AttachFile validates, stores, and records one attachment. The duplicate
// check runs before any bytes are written so a rejected upload leaves the
// existing attachment untouched.
func (s *Service) AttachFile(ctx context.Context, userID, fileName, contentType string, r io.Reader) (url, category string, err error) {
	category, bucket, ok := categoryFor(contentType)
	if !ok {
		return "", "", ErrUnsupportedType
	}
	if s.Drafts.HasAttachment(userID, category) {
		return "", category, ErrSlotTaken
	}
	url, err = storeAttachment(ctx, s.Store, bucket, userID, fileName, contentType, r)
	if err != nil {
		return "", category, err
	}
	if err := s.Drafts.SetAttachment(userID, category, url); err != nil {
		return "", category, err
	}
	return url, category, nil
}

// SubmitOutcome is the result of one submission attempt. SubmissionID is the
// idempotency token the client passes along when persisting the result.
type SubmitOutcome struct {
	SubmissionID string
	Result       inference.Result
}

// Submit sends the question plus the draft's attachments and keystroke
// timings for analysis. An empty question never reaches the wire. The draft
// survives a failed or error-bearing attempt so the user can retry; it is
// discarded only on success.
func (s *Service) Submit(ctx context.Context, userID, question string) (SubmitOutcome, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return SubmitOutcome{}, ErrEmptyQuestion
	}
	if !s.Drafts.BeginSubmit(userID) {
		return SubmitOutcome{}, ErrSubmitInFlight
	}

	imageURL, audioURL, keystrokes := s.Drafts.Snapshot(userID)
	payload := inference.Payload{
		Question: question,
		Image:    imageURL,
		Audio:    audioURL,
		Typing:   inference.Typing{Keystrokes: keystrokes},
	}

	metrics.IncSubmissionStarted()
	started := time.Now()
	result, err := s.Client.Analyze(ctx, payload)
	metrics.ObserveSubmissionDurationMs(float64(time.Since(started)) / float64(time.Millisecond))
	if err != nil {
		metrics.IncSubmissionFailed()
		s.Drafts.EndSubmit(userID, false)
		if errors.Is(err, inference.ErrUnavailable) {
			telemetry.Warn("intake.submit.unavailable", map[string]any{"user_id": userID})
		}
		return SubmitOutcome{}, err
	}
	metrics.IncSubmissionCompleted()
	if result.Kind == inference.KindError {
		s.Drafts.EndSubmit(userID, false)
		return SubmitOutcome{Result: result}, nil
	}

	s.Drafts.EndSubmit(userID, true)
	return SubmitOutcome{
		SubmissionID: uuid.NewString(),
		Result:       result,
	}, nil
}
