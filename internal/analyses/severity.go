package analyses

import (
	"encoding/json"
	"strings"

	"triage-backend/internal/inference"
)

// Severity labels shown in the history sidebar.
const (
	SeverityHigh     = "high"
	SeverityModerate = "moderate"
	SeverityLow      = "low"
)

var (
	highSeverityTerms     = []string{"emergency", "urgent", "severe", "immediately", "call 911"}
	moderateSeverityTerms = []string{"moderate", "monitor", "worsen", "persist", "follow up"}
)

// severityOf grades a stored result by scanning its final analysis text.
// Keyword-based; absent or plain results grade low.
func severityOf(data json.RawMessage) string {
	result := inference.ParseStored(data)
	if result.Analysis == nil {
		return SeverityLow
	}
	text := strings.ToLower(result.Analysis.FinalAnalysis)
	for _, term := range highSeverityTerms {
		if strings.Contains(text, term) {
			return SeverityHigh
		}
	}
	for _, term := range moderateSeverityTerms {
		if strings.Contains(text, term) {
			return SeverityModerate
		}
	}
	return SeverityLow
}
