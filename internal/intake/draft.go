package intake

import (
	"sync"

	"triage-backend/internal/inference"
)

// Draft is the per-user working state of a submission that has not been sent
// yet. At most one image and one audio attachment may be present.
type Draft struct {
	ImageURL   string
	AudioURL   string
	keystrokes *Recorder
	submitting bool
}

// DraftStore holds one draft per user.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]*Draft)}
}

func (s *DraftStore) get(userID string) *Draft {
	d, ok := s.drafts[userID]
	if !ok {
		d = &Draft{keystrokes: NewRecorder()}
		s.drafts[userID] = d
	}
	return d
}

// RecordKeyDown appends a key-down timing to the user's draft.
func (s *DraftStore) RecordKeyDown(userID, key string, at int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(userID).keystrokes.KeyDown(key, at)
}

// RecordKeyUp closes the matching key-down in the user's draft.
func (s *DraftStore) RecordKeyUp(userID, key string, at int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(userID).keystrokes.KeyUp(key, at)
}

// SetAttachment records an uploaded attachment URL. It fails when the slot
// for that category is already taken.
func (s *DraftStore) SetAttachment(userID, category, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(userID)
	switch category {
	case CategoryImage:
		if d.ImageURL != "" {
			return ErrSlotTaken
		}
		d.ImageURL = url
	case CategoryAudio:
		if d.AudioURL != "" {
			return ErrSlotTaken
		}
		d.AudioURL = url
	default:
		return ErrUnsupportedType
	}
	return nil
}

// HasAttachment reports whether the category slot is already filled. Used to
// reject a duplicate before any bytes are stored.
func (s *DraftStore) HasAttachment(userID, category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(userID)
	switch category {
	case CategoryImage:
		return d.ImageURL != ""
	case CategoryAudio:
		return d.AudioURL != ""
	}
	return false
}

// Snapshot returns the draft's attachments and keystrokes for submission.
func (s *DraftStore) Snapshot(userID string) (imageURL, audioURL string, keystrokes []inference.Keystroke) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(userID)
	return d.ImageURL, d.AudioURL, d.keystrokes.Samples()
}

// BeginSubmit marks the draft as in flight. It reports false when a
// submission is already running for this user.
func (s *DraftStore) BeginSubmit(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.get(userID)
	if d.submitting {
		return false
	}
	d.submitting = true
	return true
}

// EndSubmit clears the in-flight mark. When reset is true the whole draft is
// discarded, ready for the next submission.
func (s *DraftStore) EndSubmit(userID string, reset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reset {
		delete(s.drafts, userID)
		return
	}
	s.get(userID).submitting = false
}
