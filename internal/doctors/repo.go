package doctors

import "context"

var (
	ErrNotFound      = errNotFound{}
	ErrAlreadyRouted = errAlreadyRouted{}
)

type errNotFound struct{}

func (errNotFound) Error() string { return "doctor not found" }

type errAlreadyRouted struct{}

func (errAlreadyRouted) Error() string { return "analysis already routed" }

type Repo interface {
	List(ctx context.Context) ([]Doctor, error)
	GetByID(ctx context.Context, doctorID string) (Doctor, error)
	GetByEmail(ctx context.Context, email string) (Doctor, error)

	CreateCase(ctx context.Context, kase Case) (Case, error)
	CasesByDoctor(ctx context.Context, doctorID string) ([]Case, error)
	CaseByAnalysisID(ctx context.Context, analysisID string) (Case, error)
	UpdateReview(ctx context.Context, caseID, doctorID, status, note string) (Case, error)
}
