package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker consumes the results queue and persists graded attempts to
// PostgreSQL in batches.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

type resultPayload struct {
	UserID      int             `json:"user_id"`
	Score       int             `json:"score"`
	Total       int             `json:"total"`
	PerSubject  json.RawMessage `json:"per_subject"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*resultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p resultPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper with single-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*resultPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsertResults(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result insert failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL INSERT using UNNEST
// ----------------------------------------------------------------

func (w *ResultWorker) bulkInsertResults(ctx context.Context, batch []*resultPayload) error {
	n := len(batch)

	userIDs := make([]int, 0, n)
	scores := make([]int, 0, n)
	totals := make([]int, 0, n)
	breakdowns := make([]string, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, p := range batch {
		userIDs = append(userIDs, p.UserID)
		scores = append(scores, p.Score)
		totals = append(totals, p.Total)
		breakdowns = append(breakdowns, string(p.PerSubject))
		submittedAts = append(submittedAts, p.SubmittedAt)
	}

	query := `
		INSERT INTO exam_results (user_id, score, total, per_subject, submitted_at)
		SELECT u.user_id, u.score, u.total, u.per_subject, u.submitted_at
		FROM UNNEST(
			$1::int[],
			$2::int[],
			$3::int[],
			$4::jsonb[],
			$5::timestamptz[]
		) AS u (user_id, score, total, per_subject, submitted_at)
	`

	_, err := w.pool.Exec(ctx, query, userIDs, scores, totals, breakdowns, submittedAts)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single insert
// ----------------------------------------------------------------

func (w *ResultWorker) persistSingle(ctx context.Context, p *resultPayload) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO exam_results (user_id, score, total, per_subject, submitted_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.UserID, p.Score, p.Total, string(p.PerSubject), p.SubmittedAt,
	)
	return err
}
