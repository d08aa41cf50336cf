package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/prepwise/prepwise-backend/internal/exam"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrNoActiveSession = errors.New("no active exam session")
	ErrPoolEmpty       = errors.New("selected subjects have no questions")
)

// Loader is the question pool collaborator injected at construction so
// tests can substitute a fake.
type Loader interface {
	Load(ctx context.Context, subjectIDs []uuid.UUID) (*exam.Pool, error)
}

// SessionService owns the live exam sessions, one per user. Sessions are
// purely in-memory: quitting or restarting the process discards them, and
// only graded results are persisted (asynchronously, via the results queue).
type SessionService struct {
	loader Loader
	rdb    *redis.Client
	cfg    *config.Config
	log    zerolog.Logger

	mu       sync.Mutex
	sessions map[int]*activeSession
}

type activeSession struct {
	session *exam.Session
	cancel  context.CancelFunc
}

// NewSessionService creates a new SessionService.
func NewSessionService(loader Loader, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *SessionService {
	return &SessionService{
		loader:   loader,
		rdb:      rdb,
		cfg:      cfg,
		log:      log.With().Str("component", "session_service").Logger(),
		sessions: make(map[int]*activeSession),
	}
}

// Start loads the question pool and begins a new timed attempt for the
// user. Any previous attempt is discarded first — one live session per
// user, no resume semantics.
func (s *SessionService) Start(ctx context.Context, userID int, subjectIDs []uuid.UUID) (*exam.Session, error) {
	pool, err := s.loader.Load(ctx, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if pool.TotalQuestions() == 0 {
		return nil, ErrPoolEmpty
	}

	session := exam.NewSession(pool, exam.Options{
		Duration: s.cfg.ExamDuration,
		OnSubmit: func(r *exam.Result) { s.enqueueResult(userID, r) },
	})

	runCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if prev, ok := s.sessions[userID]; ok {
		prev.cancel()
	}
	s.sessions[userID] = &activeSession{session: session, cancel: cancel}
	s.mu.Unlock()

	go session.Run(runCtx)

	s.log.Info().
		Int("user_id", userID).
		Int("subjects", len(pool.Subjects)).
		Int("questions", pool.TotalQuestions()).
		Msg("Exam session started")

	return session, nil
}

// Get returns the user's live session.
func (s *SessionService) Get(userID int) (*exam.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return active.session, nil
}

// Discard stops the countdown and drops the user's session without grading.
func (s *SessionService) Discard(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if active, ok := s.sessions[userID]; ok {
		active.cancel()
		delete(s.sessions, userID)
		s.log.Info().Int("user_id", userID).Msg("Exam session discarded")
	}
}

// Shutdown cancels all running session timers.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, active := range s.sessions {
		active.cancel()
		delete(s.sessions, userID)
	}
}

// resultPayload is the message queued for the result worker.
type resultPayload struct {
	UserID      int             `json:"user_id"`
	Score       int             `json:"score"`
	Total       int             `json:"total"`
	PerSubject  json.RawMessage `json:"per_subject"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// enqueueResult pushes a graded result onto the persistence queue. Fires
// for manual submission and timer-expiry auto-submission alike.
func (s *SessionService) enqueueResult(userID int, r *exam.Result) {
	perSubject, err := json.Marshal(r.PerSubject)
	if err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Result breakdown marshal failed")
		return
	}

	raw, err := json.Marshal(resultPayload{
		UserID:      userID,
		Score:       r.Score,
		Total:       r.Total,
		PerSubject:  perSubject,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Result payload marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Result enqueue failed")
		return
	}

	s.log.Info().
		Int("user_id", userID).
		Int("score", r.Score).
		Int("total", r.Total).
		Msg("Exam graded")
}
