package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"triage-backend/internal/cache"
	"triage-backend/internal/doctors"
	"triage-backend/internal/inference"
	"triage-backend/internal/shared/telemetry"
)

const (
	idempotencyTTL    = 24 * time.Hour
	conditionTitleMax = 80
	defaultRecordName = "Consultation"
)

// RoutingLookup is the slice of the doctor registry this service needs.
type RoutingLookup interface {
	CaseStatus(ctx context.Context, analysisID string) (status, doctorName string, err error)
	Route(ctx context.Context, analysisID, doctorID, patientID string) (doctors.Case, error)
}

type Service struct {
	Repo    Repo
	Idem    cache.IdempotencyStore
	Routing RoutingLookup
}

func NewService(repo Repo, idem cache.IdempotencyStore, routing RoutingLookup) *Service {
	return &Service{Repo: repo, Idem: idem, Routing: routing}
}

var errNotPersistable = errors.New("error results are not persisted")

// PersistOnce stores a result at most once. A submission token dedupes
// authoritatively through the repo's unique key; without one, an existing
// record with identical final_analysis text is adopted instead of inserting
// a twin.
func (s *Service) PersistOnce(ctx context.Context, userID string, result inference.Result, idemKey string) (Record, bool, error) {
	if result.Kind == inference.KindError {
		return Record{}, false, errNotPersistable
	}

	rec := Record{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           recordName(result),
		Data:           result.Raw,
		IdempotencyKey: idemKey,
	}

	if idemKey != "" {
		if s.Idem != nil {
			first, err := s.Idem.MarkOnce(ctx, idemKey, idempotencyTTL)
			if err != nil {
				telemetry.Warn("analyses.idempotency_store_failed", map[string]any{"error": err.Error()})
			} else if !first {
				telemetry.Info("analyses.persist.duplicate_token", map[string]any{"user_id": userID})
			}
		}
		return s.Repo.Create(ctx, rec)
	}

	if fa := finalAnalysisOf(result); fa != "" {
		existing, err := s.Repo.FindByFinalAnalysis(ctx, userID, fa)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Record{}, false, err
		}
	}
	return s.Repo.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Record, error) {
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

// History lists the user's records newest first, decorated with routing
// state when the registry knows about them.
func (s *Service) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	records, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entry := HistoryEntry{
			ID:        rec.ID,
			Date:      rec.CreatedAt,
			Condition: rec.Name,
			Severity:  severityOf(rec.Data),
		}
		if s.Routing != nil {
			status, doctorName, err := s.Routing.CaseStatus(ctx, rec.ID)
			if err != nil {
				telemetry.Warn("analyses.history.case_lookup_failed", map[string]any{"error": err.Error()})
			} else {
				entry.Status = status
				entry.DoctorName = doctorName
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// ExportName builds the download file name for a record.
func ExportName(rec Record) string {
	return "analysis-" + rec.CreatedAt.UTC().Format("20060102-150405") + ".json"
}

// RouteToDoctor sends a record to a doctor after confirming the caller owns
// it.
func (s *Service) RouteToDoctor(ctx context.Context, userID, analysisID, doctorID string) (doctors.Case, error) {
	if s.Routing == nil {
		return doctors.Case{}, errors.New("routing not configured")
	}
	if _, err := s.Repo.GetByID(ctx, userID, analysisID); err != nil {
		return doctors.Case{}, err
	}
	return s.Routing.Route(ctx, analysisID, doctorID, userID)
}

// recordName titles a record from its content. Structured results use the
// first sentence of the final analysis.
func recordName(result inference.Result) string {
	text := finalAnalysisOf(result)
	if text == "" && result.Kind == inference.KindPlain {
		text = result.Response
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return defaultRecordName
	}
	if i := strings.IndexAny(text, ".!?"); i > 0 {
		text = text[:i+1]
	}
	if len(text) > conditionTitleMax {
		text = strings.TrimSpace(text[:conditionTitleMax-3]) + "..."
	}
	return text
}

func finalAnalysisOf(result inference.Result) string {
	if result.Analysis == nil {
		return ""
	}
	return result.Analysis.FinalAnalysis
}
