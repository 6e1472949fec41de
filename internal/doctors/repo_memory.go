package doctors

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	doctors map[string]Doctor
	cases   map[string]Case
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		doctors: make(map[string]Doctor),
		cases:   make(map[string]Case),
	}
}

// Seed registers a doctor, for dev mode and tests.
func (r *MemoryRepo) Seed(doc Doctor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	r.doctors[doc.ID] = doc
}

func (r *MemoryRepo) List(ctx context.Context) ([]Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Doctor, 0, len(r.doctors))
	for _, doc := range r.doctors {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, doctorID string) (Doctor, error) {
	if err := ctx.Err(); err != nil {
		return Doctor{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.doctors[doctorID]
	if !ok {
		return Doctor{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (Doctor, error) {
	if err := ctx.Err(); err != nil {
		return Doctor{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.doctors {
		if strings.EqualFold(doc.Email, email) {
			return doc, nil
		}
	}
	return Doctor{}, ErrNotFound
}

func (r *MemoryRepo) CreateCase(ctx context.Context, kase Case) (Case, error) {
	if err := ctx.Err(); err != nil {
		return Case{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cases {
		if existing.AnalysisID == kase.AnalysisID {
			return Case{}, ErrAlreadyRouted
		}
	}
	now := time.Now().UTC()
	kase.Status = StatusPending
	kase.CreatedAt = now
	kase.UpdatedAt = now
	r.cases[kase.ID] = kase
	return kase, nil
}

func (r *MemoryRepo) CasesByDoctor(ctx context.Context, doctorID string) ([]Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Case
	for _, kase := range r.cases {
		if kase.DoctorID == doctorID {
			out = append(out, kase)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) CaseByAnalysisID(ctx context.Context, analysisID string) (Case, error) {
	if err := ctx.Err(); err != nil {
		return Case{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, kase := range r.cases {
		if kase.AnalysisID == analysisID {
			return kase, nil
		}
	}
	return Case{}, ErrNotFound
}

func (r *MemoryRepo) UpdateReview(ctx context.Context, caseID, doctorID, status, note string) (Case, error) {
	if err := ctx.Err(); err != nil {
		return Case{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kase, ok := r.cases[caseID]
	if !ok || kase.DoctorID != doctorID {
		return Case{}, ErrNotFound
	}
	kase.Status = status
	kase.ReviewNote = note
	kase.UpdatedAt = time.Now().UTC()
	r.cases[caseID] = kase
	return kase, nil
}
