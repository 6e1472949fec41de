package doctors

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) ([]Doctor, error) {
	const query = `
SELECT id, email, full_name, specialty, created_at
FROM doctors
ORDER BY full_name ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		doc, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, doctorID string) (Doctor, error) {
	const query = `
SELECT id, email, full_name, specialty, created_at
FROM doctors
WHERE id = $1
LIMIT 1`
	return r.getOne(ctx, query, doctorID)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (Doctor, error) {
	const query = `
SELECT id, email, full_name, specialty, created_at
FROM doctors
WHERE lower(email) = lower($1)
LIMIT 1`
	return r.getOne(ctx, query, email)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg any) (Doctor, error) {
	row := r.DB.QueryRowContext(ctx, query, arg)
	doc, err := scanDoctor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, err
	}
	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row rowScanner) (Doctor, error) {
	var doc Doctor
	var fullName sql.NullString
	var specialty sql.NullString
	if err := row.Scan(&doc.ID, &doc.Email, &fullName, &specialty, &doc.CreatedAt); err != nil {
		return Doctor{}, err
	}
	if fullName.Valid {
		doc.FullName = fullName.String
	}
	if specialty.Valid {
		doc.Specialty = specialty.String
	}
	return doc, nil
}

// CreateCase relies on the unique index on analysis_id. A conflicting insert
// returns no row, which maps to ErrAlreadyRouted.
func (r *PGRepo) CreateCase(ctx context.Context, kase Case) (Case, error) {
	const query = `
INSERT INTO doctor_analyses (id, analysis_id, doctor_id, patient_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (analysis_id) DO NOTHING
RETURNING id, analysis_id, doctor_id, patient_id, status, review_note, created_at, updated_at`
	row := r.DB.QueryRowContext(ctx, query,
		kase.ID, kase.AnalysisID, kase.DoctorID, kase.PatientID, StatusPending)
	created, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, ErrAlreadyRouted
		}
		return Case{}, err
	}
	return created, nil
}

func (r *PGRepo) CasesByDoctor(ctx context.Context, doctorID string) ([]Case, error) {
	const query = `
SELECT id, analysis_id, doctor_id, patient_id, status, review_note, created_at, updated_at
FROM doctor_analyses
WHERE doctor_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Case
	for rows.Next() {
		kase, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, kase)
	}
	return out, rows.Err()
}

func (r *PGRepo) CaseByAnalysisID(ctx context.Context, analysisID string) (Case, error) {
	const query = `
SELECT id, analysis_id, doctor_id, patient_id, status, review_note, created_at, updated_at
FROM doctor_analyses
WHERE analysis_id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, analysisID)
	kase, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, ErrNotFound
		}
		return Case{}, err
	}
	return kase, nil
}

// UpdateReview is scoped to the owning doctor so one doctor cannot close
// another doctor's case.
func (r *PGRepo) UpdateReview(ctx context.Context, caseID, doctorID, status, note string) (Case, error) {
	const query = `
UPDATE doctor_analyses
SET status = $3, review_note = $4, updated_at = now()
WHERE id = $1 AND doctor_id = $2
RETURNING id, analysis_id, doctor_id, patient_id, status, review_note, created_at, updated_at`
	row := r.DB.QueryRowContext(ctx, query, caseID, doctorID, status, nullableString(note))
	kase, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, ErrNotFound
		}
		return Case{}, err
	}
	return kase, nil
}

func scanCase(row rowScanner) (Case, error) {
	var kase Case
	var note sql.NullString
	if err := row.Scan(
		&kase.ID,
		&kase.AnalysisID,
		&kase.DoctorID,
		&kase.PatientID,
		&kase.Status,
		&note,
		&kase.CreatedAt,
		&kase.UpdatedAt,
	); err != nil {
		return Case{}, err
	}
	if note.Valid {
		kase.ReviewNote = note.String
	}
	return kase, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
