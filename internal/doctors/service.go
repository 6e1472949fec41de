package doctors

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"triage-backend/internal/cache"
	"triage-backend/internal/shared/telemetry"
)

type Service struct {
	Repo  Repo
	Roles cache.RoleStore
}

func NewService(repo Repo, roles cache.RoleStore) *Service {
	return &Service{Repo: repo, Roles: roles}
}

// ResolveRole returns the user's role, consulting the shared role store first
// and falling back to the doctor registry. The resolved role is cached so
// repeated guard checks do not hit the registry.
func (s *Service) ResolveRole(ctx context.Context, userID, email string) (string, error) {
	if s == nil || s.Repo == nil {
		return "", errors.New("doctors service not configured")
	}
	if s.Roles != nil {
		if role, err := s.Roles.GetRole(ctx, userID); err == nil {
			return role, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			telemetry.Warn("doctors.role_cache_read_failed", map[string]any{"error": err.Error()})
		}
	}

	role := cache.RolePatient
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		role = cache.RoleDoctor
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if s.Roles != nil {
		if err := s.Roles.SetRole(ctx, userID, role); err != nil {
			telemetry.Warn("doctors.role_cache_write_failed", map[string]any{"error": err.Error()})
		}
	}
	return role, nil
}

func (s *Service) List(ctx context.Context) ([]Doctor, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("doctors service not configured")
	}
	return s.Repo.List(ctx)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Doctor, error) {
	if s == nil || s.Repo == nil {
		return Doctor{}, errors.New("doctors service not configured")
	}
	return s.Repo.GetByEmail(ctx, email)
}

// Route assigns an analysis to a doctor. Each analysis is routed at most
// once; a second attempt returns ErrAlreadyRouted.
func (s *Service) Route(ctx context.Context, analysisID, doctorID, patientID string) (Case, error) {
	if s == nil || s.Repo == nil {
		return Case{}, errors.New("doctors service not configured")
	}
	if strings.TrimSpace(doctorID) == "" {
		return Case{}, errors.New("doctor id is required")
	}
	if _, err := s.Repo.GetByID(ctx, doctorID); err != nil {
		return Case{}, err
	}
	return s.Repo.CreateCase(ctx, Case{
		ID:         uuid.NewString(),
		AnalysisID: analysisID,
		DoctorID:   doctorID,
		PatientID:  patientID,
	})
}

func (s *Service) CasesFor(ctx context.Context, doctorID string) ([]Case, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("doctors service not configured")
	}
	return s.Repo.CasesByDoctor(ctx, doctorID)
}

func (s *Service) Review(ctx context.Context, caseID, doctorID, note string) (Case, error) {
	if s == nil || s.Repo == nil {
		return Case{}, errors.New("doctors service not configured")
	}
	return s.Repo.UpdateReview(ctx, caseID, doctorID, StatusReviewed, note)
}

// CaseStatus reports the routing state of one analysis for history listings.
// An unrouted analysis returns empty status with no error.
func (s *Service) CaseStatus(ctx context.Context, analysisID string) (status, doctorName string, err error) {
	if s == nil || s.Repo == nil {
		return "", "", errors.New("doctors service not configured")
	}
	kase, err := s.Repo.CaseByAnalysisID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	doc, err := s.Repo.GetByID(ctx, kase.DoctorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return kase.Status, "", nil
		}
		return "", "", err
	}
	return kase.Status, doc.FullName, nil
}
