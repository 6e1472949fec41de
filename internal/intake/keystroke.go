package intake

import "triage-backend/internal/inference"

// sample is one in-progress or completed key press.
type sample struct {
	key      string
	timeDown int64
	timeUp   *int64
}

// Recorder accumulates keystroke timings for one draft. Completed and
// in-progress samples keep their key-down insertion order. Timestamps are
// milliseconds since the Unix epoch.
type Recorder struct {
	samples []sample
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// KeyDown opens a new sample for key.
func (r *Recorder) KeyDown(key string, at int64) {
	r.samples = append(r.samples, sample{key: key, timeDown: at})
}

// KeyUp closes the most recent open sample for key. A key-up with no
// matching key-down is dropped.
func (r *Recorder) KeyUp(key string, at int64) {
	for i := len(r.samples) - 1; i >= 0; i-- {
		if r.samples[i].key == key && r.samples[i].timeUp == nil {
			t := at
			r.samples[i].timeUp = &t
			return
		}
	}
}

// Samples returns a copy of the recorded keystrokes in insertion order.
// Open samples are included with a nil timeUp.
func (r *Recorder) Samples() []inference.Keystroke {
	out := make([]inference.Keystroke, 0, len(r.samples))
	for _, s := range r.samples {
		ks := inference.Keystroke{Key: s.key, TimeDown: s.timeDown}
		if s.timeUp != nil {
			t := *s.timeUp
			ks.TimeUp = &t
		}
		out = append(out, ks)
	}
	return out
}

func (r *Recorder) Len() int { return len(r.samples) }

// Reset discards all samples.
func (r *Recorder) Reset() {
	r.samples = r.samples[:0]
}
