package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/prepwise/prepwise-backend/internal/exam"
	"github.com/prepwise/prepwise-backend/internal/model"
	"github.com/prepwise/prepwise-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNoSubjects is returned when Load is called with an empty selection.
var ErrNoSubjects = errors.New("no subjects selected")

// PoolService assembles exam question pools. Each subject's full question
// list is cached in Redis with PostgreSQL as the source of truth; the
// per-attempt pool is a fresh shuffled sample, so repeat attempts see
// different questions.
type PoolService struct {
	subjectRepo  *repository.SubjectRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	cfg          *config.Config
	log          zerolog.Logger

	pinned func(model.Subject) bool
}

// NewPoolService creates a new PoolService.
func NewPoolService(
	subjectRepo *repository.SubjectRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *PoolService {
	return &PoolService{
		subjectRepo:  subjectRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		cfg:          cfg,
		log:          log.With().Str("component", "pool_service").Logger(),
		pinned:       exam.PinnedByName(cfg.PinnedSubjectMarker),
	}
}

// Load builds the question pool for the selected subjects. The fetch is
// bounded by the configured loader timeout; subjects load concurrently and
// arrival order does not affect the pool. Any failure returns an error with
// no partial pool — the caller presents zero subjects and zero questions.
func (s *PoolService) Load(ctx context.Context, subjectIDs []uuid.UUID) (*exam.Pool, error) {
	if len(subjectIDs) == 0 {
		return nil, ErrNoSubjects
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.LoaderTimeout)
	defer cancel()

	subjects, err := s.subjectRepo.ListByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	pool := &exam.Pool{
		Subjects:  subjects,
		Questions: make(map[uuid.UUID][]model.Question, len(subjects)),
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, subj := range subjects {
		wg.Add(1)
		go func(subj model.Subject) {
			defer wg.Done()

			questions, err := s.subjectQuestions(ctx, subj)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("load subject %s: %w", subj.ID, err)
				}
				return
			}
			pool.Questions[subj.ID] = s.sample(questions, subj)
		}(subj)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return pool, nil
}

// subjectQuestions fetches one subject's full question list, Redis first,
// PostgreSQL on miss with a self-healing write-back. Questions whose answer
// key is not part of their option set are dropped with a warning.
func (s *PoolService) subjectQuestions(ctx context.Context, subj model.Subject) ([]model.Question, error) {
	key := config.CacheKey.SubjectQuestionsKey(subj.ID)

	var questions []model.Question

	cached, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if err := json.Unmarshal([]byte(cached), &questions); err != nil {
			return nil, fmt.Errorf("decode cached questions: %w", err)
		}
	case errors.Is(err, redis.Nil):
		questions, err = s.questionRepo.ListBySubject(ctx, subj.ID)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		if raw, err := json.Marshal(questions); err == nil {
			if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
				s.log.Warn().Err(err).Str("subject_id", subj.ID.String()).Msg("Question cache write failed")
			}
		}
	default:
		return nil, fmt.Errorf("redis get questions: %w", err)
	}

	valid := questions[:0]
	for _, q := range questions {
		if !q.Valid() {
			s.log.Warn().
				Str("question_id", q.ID.String()).
				Str("subject_id", subj.ID.String()).
				Str("answer", q.Answer).
				Msg("Question answer key not in option set, excluded from pool")
			continue
		}
		valid = append(valid, q)
	}
	return valid, nil
}

// sample shuffles and caps a subject's questions at the configured count:
// pinned subjects get the larger share.
func (s *PoolService) sample(questions []model.Question, subj model.Subject) []model.Question {
	count := s.cfg.DefaultQuestionCount
	if s.pinned(subj) {
		count = s.cfg.PinnedQuestionCount
	}

	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count > 0 && len(shuffled) > count {
		shuffled = shuffled[:count]
	}
	return shuffled
}

// InvalidateSubjectCache drops a subject's cached question list, forcing
// the next load to hit PostgreSQL. Called after question imports.
func (s *PoolService) InvalidateSubjectCache(ctx context.Context, subjectID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.SubjectQuestionsKey(subjectID)).Err()
}
