package analyses

import "context"

type Repo interface {
	// Create inserts a record. When the record carries an idempotency key and
	// a record with that key already exists for the user, the existing record
	// is returned with created=false.
	Create(ctx context.Context, rec Record) (Record, bool, error)
	GetByID(ctx context.Context, userID, id string) (Record, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	Delete(ctx context.Context, userID, id string) error
	// FindByFinalAnalysis matches on the final_analysis text inside the
	// stored payload, newest first.
	FindByFinalAnalysis(ctx context.Context, userID, finalAnalysis string) (Record, error)
}
