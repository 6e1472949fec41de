package analyses

import (
	"encoding/json"
	"time"
)

// Record is one persisted analysis. Data holds the inference response body
// verbatim so exports round-trip exactly.
type Record struct {
	ID             string          `json:"id"`
	UserID         string          `json:"-"`
	Name           string          `json:"name"`
	Data           json.RawMessage `json:"data"`
	IdempotencyKey string          `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// HistoryEntry is the sidebar view of one record.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Condition  string    `json:"condition"`
	Severity   string    `json:"severity"`
	Status     string    `json:"status,omitempty"`
	DoctorName string    `json:"doctorName,omitempty"`
}
