package doctors

import "time"

// Review statuses for a routed case.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
)

type Doctor struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Specialty string    `json:"specialty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Case links one analysis record to the doctor it was routed to. An analysis
// can be routed at most once.
type Case struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysisId"`
	DoctorID   string    `json:"doctorId"`
	PatientID  string    `json:"patientId"`
	Status     string    `json:"status"`
	ReviewNote string    `json:"reviewNote,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
