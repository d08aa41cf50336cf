package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamResult is a persisted, graded exam attempt.
type ExamResult struct {
	ID          int             `json:"id"`
	UserID      int             `json:"user_id"`
	Score       int             `json:"score"`
	Total       int             `json:"total"`
	PerSubject  json.RawMessage `json:"per_subject"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// ResultRepository handles persisted exam result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// ListByUser retrieves a user's past results, most recent first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID, limit int) ([]ExamResult, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, score, total, per_subject, submitted_at
		 FROM exam_results WHERE user_id = $1
		 ORDER BY submitted_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ExamResult
	for rows.Next() {
		var res ExamResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.Score, &res.Total, &res.PerSubject, &res.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
