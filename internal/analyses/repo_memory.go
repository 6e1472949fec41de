package analyses

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"triage-backend/internal/inference"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]Record)}
}

func (r *MemoryRepo) Create(ctx context.Context, rec Record) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.IdempotencyKey != "" {
		for _, existing := range r.records {
			if existing.UserID == rec.UserID && existing.IdempotencyKey == rec.IdempotencyKey {
				return existing, false, nil
			}
		}
	}
	rec.CreatedAt = time.Now().UTC()
	r.records[rec.ID] = rec
	return rec, true, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Record
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.UserID != userID {
		return ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *MemoryRepo) FindByFinalAnalysis(ctx context.Context, userID, finalAnalysis string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best Record
	found := false
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		if storedFinalAnalysis(rec.Data) != finalAnalysis {
			continue
		}
		if !found || rec.CreatedAt.After(best.CreatedAt) {
			best = rec
			found = true
		}
	}
	if !found {
		return Record{}, ErrNotFound
	}
	return best, nil
}

func storedFinalAnalysis(data json.RawMessage) string {
	result := inference.ParseStored(data)
	if result.Analysis == nil {
		return ""
	}
	return result.Analysis.FinalAnalysis
}
