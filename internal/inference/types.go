package inference

import (
	"bytes"
	"encoding/json"
)

// Keystroke is one completed key press/release pair, in the wire shape the
// inference service expects. TimeUp is null for a press still open at
// submission time.
type Keystroke struct {
	Key      string `json:"key"`
	TimeDown int64  `json:"timeDown"`
	TimeUp   *int64 `json:"timeUp"`
}

// Typing carries the keystroke-timing series in submission order.
type Typing struct {
	Keystrokes []Keystroke `json:"keystrokes"`
}

// Payload is the triage submission sent to the inference service. It is
// constructed fresh per submission and never mutated after send.
type Payload struct {
	Question string `json:"question"`
	Image    string `json:"image"`
	Audio    string `json:"audio"`
	Typing   Typing `json:"typing"`
}

// ResultKind discriminates the shapes the inference service responds with.
type ResultKind string

const (
	// KindError is a response carrying an explicit error field.
	KindError ResultKind = "error"
	// KindPlain is a bare text response with no structured analysis.
	KindPlain ResultKind = "plain"
	// KindAnalysis is a structured analysis response.
	KindAnalysis ResultKind = "analysis"
)

// Result is the parsed inference response as an explicit tagged variant so
// callers can branch on Kind instead of probing optional fields. Raw always
// holds the exact response body for export round-tripping.
type Result struct {
	Kind     ResultKind      `json:"kind"`
	Err      string          `json:"error,omitempty"`
	Response string          `json:"response,omitempty"`
	Analysis *Analysis       `json:"analysis,omitempty"`
	Status   string          `json:"status,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// Analysis is the structured portion of a response. Every field is optional
// and untrusted; renderers skip what is absent.
type Analysis struct {
	FinalAnalysis    string                     `json:"final_analysis,omitempty"`
	InitialDiagnosis string                     `json:"initial_diagnosis,omitempty"`
	VectorDBResults  string                     `json:"vectordb_results,omitempty"`
	AudioAnalysis    map[string]json.RawMessage `json:"audio_analysis,omitempty"`
	ImageAnalysis    map[string]json.RawMessage `json:"image_analysis,omitempty"`
	TypingAnalysis   json.RawMessage            `json:"typing_analysis,omitempty"`
}

type wireResponse struct {
	Error    string    `json:"error"`
	Response string    `json:"response"`
	Analysis *Analysis `json:"analysis"`
	Status   string    `json:"status"`
}

// ParseResult classifies a raw response body into a tagged Result. Malformed
// bodies come back as KindError with a generic message rather than an error;
// the service's output is untrusted by contract.
func ParseResult(raw []byte) Result {
	stored := json.RawMessage(bytes.TrimSpace(raw))

	var wire wireResponse
	if err := json.Unmarshal(stored, &wire); err != nil {
		return Result{Kind: KindError, Err: "unrecognized inference response", Raw: stored}
	}

	switch {
	case wire.Error != "":
		return Result{Kind: KindError, Err: wire.Error, Raw: stored}
	case wire.Analysis != nil:
		return Result{Kind: KindAnalysis, Analysis: wire.Analysis, Status: wire.Status, Raw: stored}
	case wire.Response != "":
		return Result{Kind: KindPlain, Response: wire.Response, Status: wire.Status, Raw: stored}
	default:
		return Result{Kind: KindError, Err: "empty inference response", Raw: stored}
	}
}

// ParseStored rebuilds a Result from a persisted analysis_data payload.
func ParseStored(raw json.RawMessage) Result {
	return ParseResult(raw)
}
