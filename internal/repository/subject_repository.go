package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepwise/prepwise-backend/internal/model"
)

// SubjectRepository handles subject data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// ListAll retrieves the full subject catalog ordered by name.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSubjects(rows)
}

// ListByIDs retrieves the subjects matching the given IDs, ordered by name.
func (r *SubjectRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM subjects WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSubjects(rows)
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id, created_at`,
		s.Name,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByName retrieves a subject by exact name.
func (r *SubjectRepository) GetByName(ctx context.Context, name string) (*model.Subject, error) {
	var s model.Subject
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM subjects WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSubjects(rows pgx.Rows) ([]model.Subject, error) {
	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
