package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

// Create inserts the record. The partial unique index on
// (user_id, idempotency_key) absorbs duplicate keyed inserts; on conflict the
// existing record is fetched and returned instead.
func (r *PGRepo) Create(ctx context.Context, rec Record) (Record, bool, error) {
	const query = `
INSERT INTO analysis_records (id, user_id, name, analysis_data, idempotency_key, created_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (user_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING
RETURNING id, user_id, name, analysis_data, idempotency_key, created_at`
	row := r.DB.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.Name, []byte(rec.Data), nullableString(rec.IdempotencyKey))
	created, err := scanRecord(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, err
	}

	existing, err := r.getByKey(ctx, rec.UserID, rec.IdempotencyKey)
	if err != nil {
		return Record{}, false, err
	}
	return existing, false, nil
}

func (r *PGRepo) getByKey(ctx context.Context, userID, key string) (Record, error) {
	const query = `
SELECT id, user_id, name, analysis_data, idempotency_key, created_at
FROM analysis_records
WHERE user_id = $1 AND idempotency_key = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, key)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Record, error) {
	const query = `
SELECT id, user_id, name, analysis_data, idempotency_key, created_at
FROM analysis_records
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	const query = `
SELECT id, user_id, name, analysis_data, idempotency_key, created_at
FROM analysis_records
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `
DELETE FROM analysis_records
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) FindByFinalAnalysis(ctx context.Context, userID, finalAnalysis string) (Record, error) {
	const query = `
SELECT id, user_id, name, analysis_data, idempotency_key, created_at
FROM analysis_records
WHERE user_id = $1 AND analysis_data->'analysis'->>'final_analysis' = $2
ORDER BY created_at DESC
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, finalAnalysis)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var data []byte
	var key sql.NullString
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &data, &key, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	rec.Data = json.RawMessage(data)
	if key.Valid {
		rec.IdempotencyKey = key.String
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
