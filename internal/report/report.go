// Package report turns a raw inference result into the renderable structures
// the client shows: labeled text sections, a similar-conditions table, and a
// directed flow graph of the reasoning chain.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"triage-backend/internal/inference"
)

// Section is one labeled block of the textual report. Either Text or Bullets
// is set, never both.
type Section struct {
	Label   string   `json:"label"`
	Text    string   `json:"text,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

// ConditionRow is one parsed condition/symptoms/treatment triple.
type ConditionRow struct {
	Condition string `json:"condition"`
	Symptoms  string `json:"symptoms"`
	Treatment string `json:"treatment"`
}

// Report is the full renderable view of one analysis.
type Report struct {
	Sections   []Section      `json:"sections"`
	Conditions []ConditionRow `json:"conditions,omitempty"`
	Flow       Graph          `json:"flow"`
}

// Build renders a tagged inference result. Absent fields produce no section;
// a KindError result renders as a single error section so callers never get
// an empty report.
func Build(result inference.Result) Report {
	switch result.Kind {
	case inference.KindPlain:
		r := Report{
			Sections: []Section{{Label: "Response", Text: result.Response}},
		}
		r.Flow = buildFlow(nil, nil, "")
		return r
	case inference.KindAnalysis:
		return buildAnalysis(result.Analysis)
	default:
		return Report{
			Sections: []Section{{Label: "Error", Text: result.Err}},
		}
	}
}

func buildAnalysis(a *inference.Analysis) Report {
	var r Report
	if a == nil {
		return r
	}

	if a.InitialDiagnosis != "" {
		r.Sections = append(r.Sections, sectionFromText("Initial Diagnosis", a.InitialDiagnosis))
	}

	r.Conditions = ParseVectorDB(a.VectorDBResults)
	if len(r.Conditions) > 0 {
		r.Sections = append(r.Sections, Section{
			Label: "Similar Conditions",
			Text:  fmt.Sprintf("%d similar condition(s) found", len(r.Conditions)),
		})
	}

	r.Sections = append(r.Sections, modalitySections("Audio Analysis", a.AudioAnalysis)...)
	r.Sections = append(r.Sections, modalitySections("Image Analysis", a.ImageAnalysis)...)
	if len(a.TypingAnalysis) > 0 && !bytesNull(a.TypingAnalysis) {
		r.Sections = append(r.Sections, Section{
			Label: "Typing Analysis",
			Text:  compactJSON(a.TypingAnalysis),
		})
	}

	if a.FinalAnalysis != "" {
		r.Sections = append(r.Sections, sectionFromText("Final Analysis", a.FinalAnalysis))
	}

	r.Flow = buildFlow(a, r.Conditions, a.FinalAnalysis)
	return r
}

// sectionFromText reformats multi-sentence text as a bulleted list, one
// bullet per sentence.
func sectionFromText(label, text string) Section {
	sentences := SplitSentences(text)
	if len(sentences) > 1 {
		return Section{Label: label, Bullets: sentences}
	}
	return Section{Label: label, Text: strings.TrimSpace(text)}
}

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// SplitSentences splits text on sentence boundaries, keeping terminators.
func SplitSentences(text string) []string {
	matches := sentencePattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// modalitySections renders per-sub-model outputs, ordered by sub-model name
// for stable output.
func modalitySections(label string, models map[string]json.RawMessage) []Section {
	if len(models) == 0 {
		return nil
	}
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Section, 0, len(names))
	for _, name := range names {
		raw := models[name]
		if len(raw) == 0 || bytesNull(raw) {
			continue
		}
		out = append(out, Section{
			Label: fmt.Sprintf("%s (%s)", label, name),
			Text:  compactJSON(raw),
		})
	}
	return out
}

func compactJSON(raw json.RawMessage) string {
	// Plain strings render without quotes; everything else stays JSON.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func bytesNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
