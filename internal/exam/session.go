package exam

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/model"
)

// DefaultDuration is the exam length used when Options leaves it unset.
const DefaultDuration = 2 * time.Hour

// Options configures a new session.
type Options struct {
	// Duration is the total exam time. Defaults to DefaultDuration.
	Duration time.Duration
	// OnSubmit, if set, is invoked exactly once with the graded result,
	// whether submission was manual or forced by timer expiry. It is called
	// outside the session lock.
	OnSubmit func(*Result)
}

// Session owns the state of one timed exam attempt: the countdown, the
// per-subject navigation cursors, the answer and flag ledgers, and the
// graded result after submission. All methods are safe for concurrent use;
// caller operations serialize with the autonomous timer tick.
type Session struct {
	mu sync.Mutex

	pool      *Pool
	questions map[uuid.UUID]*model.Question

	active    uuid.UUID
	cursors   map[uuid.UUID]int
	remaining int
	expired   bool

	answers map[uuid.UUID]string
	flags   map[uuid.UUID]bool

	submitted bool
	result    *Result

	onSubmit func(*Result)
}

// NewSession creates a session over the given pool. The countdown starts at
// the configured duration; the caller drives it via Run or Tick.
func NewSession(pool *Pool, opts Options) *Session {
	duration := opts.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}

	s := &Session{
		pool:      pool,
		questions: make(map[uuid.UUID]*model.Question, pool.TotalQuestions()),
		cursors:   make(map[uuid.UUID]int, len(pool.Subjects)),
		remaining: int(duration / time.Second),
		answers:   make(map[uuid.UUID]string),
		flags:     make(map[uuid.UUID]bool),
		onSubmit:  opts.OnSubmit,
	}

	for _, subj := range pool.Subjects {
		s.cursors[subj.ID] = 0
		qs := pool.Questions[subj.ID]
		for i := range qs {
			s.questions[qs[i].ID] = &qs[i]
		}
	}
	if len(pool.Subjects) > 0 {
		s.active = pool.Subjects[0].ID
	}

	return s
}

// Pool returns the question pool this session runs against.
func (s *Session) Pool() *Pool {
	return s.pool
}

// ─── Navigation ─────────────────────────────────────────────────────

// SelectSubject switches the active subject. Unknown subjects are ignored;
// the target subject's cursor is left where it was.
func (s *Session) SelectSubject(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool.HasSubject(id) {
		s.active = id
	}
}

// GoTo moves the active subject's cursor. Out-of-range indexes are clamped
// to the nearest bound, never rejected — the UI disables Previous/Next at
// the boundary instead of erroring.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(index)
}

// Next advances the active subject's cursor by one, clamped.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(s.cursors[s.active] + 1)
}

// Prev moves the active subject's cursor back by one, clamped.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(s.cursors[s.active] - 1)
}

func (s *Session) goTo(index int) {
	n := len(s.pool.Questions[s.active])
	if n == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > n-1 {
		index = n - 1
	}
	s.cursors[s.active] = index
}

// CurrentQuestion returns the question at the active cursor, or false when
// the active subject has no questions.
func (s *Session) CurrentQuestion() (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs := s.pool.Questions[s.active]
	if len(qs) == 0 {
		return model.Question{}, false
	}
	return qs[s.cursors[s.active]], true
}

// ActiveSubject returns the currently selected subject ID.
func (s *Session) ActiveSubject() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Cursor returns the current question index for a subject.
func (s *Session) Cursor(subjectID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[subjectID]
}

// ─── Answer and flag ledgers ────────────────────────────────────────

// RecordAnswer stores the user's selected option for a question. The option
// key must belong to the question's option set, and the session must not be
// submitted yet; both violations leave state unchanged.
func (s *Session) RecordAnswer(questionID uuid.UUID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return ErrSessionClosed
	}
	q, ok := s.questions[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	if _, ok := q.Options[option]; !ok {
		return ErrInvalidOption
	}
	s.answers[questionID] = option
	return nil
}

// ToggleFlag inverts the review marker for a question; absent counts as
// false. Flagging stays allowed after submission so review marking keeps
// working on the result screen.
func (s *Session) ToggleFlag(questionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[questionID]; !ok {
		return ErrUnknownQuestion
	}
	s.flags[questionID] = !s.flags[questionID]
	return nil
}

// Answer returns the recorded option for a question, if any.
func (s *Session) Answer(questionID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opt, ok := s.answers[questionID]
	return opt, ok
}

// Flagged reports whether a question is marked for review.
func (s *Session) Flagged(questionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[questionID]
}

// ─── Countdown ──────────────────────────────────────────────────────

// Tick advances the countdown by one second. Reaching zero is terminal: the
// timer never resumes, and if the session was not submitted yet it is
// force-submitted with whatever answers exist at that moment.
func (s *Session) Tick() {
	s.mu.Lock()

	if s.expired {
		s.mu.Unlock()
		return
	}

	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}

	s.remaining = 0
	s.expired = true
	if s.submitted {
		s.mu.Unlock()
		return
	}

	result := s.submitLocked()
	notify := s.onSubmit
	s.mu.Unlock()

	if notify != nil {
		notify(result)
	}
}

// Run drives the countdown on a one-second cadence until the timer expires
// or ctx is canceled. Call in a goroutine.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
			if s.Expired() {
				return
			}
		}
	}
}

// TimeRemaining returns the seconds left on the countdown.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Expired reports whether the countdown has reached zero.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// ─── Submission ─────────────────────────────────────────────────────

// Submit grades the attempt and freezes the answer ledger. It is
// idempotent: repeat calls return the already-computed result unchanged.
func (s *Session) Submit() *Result {
	s.mu.Lock()

	if s.submitted {
		result := s.result
		s.mu.Unlock()
		return result
	}

	result := s.submitLocked()
	notify := s.onSubmit
	s.mu.Unlock()

	if notify != nil {
		notify(result)
	}
	return result
}

// submitLocked performs the one-way submitted transition. Caller holds mu.
func (s *Session) submitLocked() *Result {
	s.submitted = true
	s.result = score(s.pool, s.answers)
	return s.result
}

// Submitted reports whether the attempt has been graded.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Result returns the graded result, or false before submission.
func (s *Session) Result() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.submitted
}

// ─── Snapshot ───────────────────────────────────────────────────────

// State is a point-in-time view of the session for API consumers.
type State struct {
	ActiveSubject uuid.UUID            `json:"active_subject"`
	Cursors       map[uuid.UUID]int    `json:"cursors"`
	TimeRemaining int                  `json:"time_remaining"`
	Clock         string               `json:"clock"`
	Answers       map[uuid.UUID]string `json:"answers"`
	Flags         map[uuid.UUID]bool   `json:"flags"`
	Submitted     bool                 `json:"submitted"`
}

// Snapshot copies the mutable session state under the lock.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ActiveSubject: s.active,
		Cursors:       make(map[uuid.UUID]int, len(s.cursors)),
		TimeRemaining: s.remaining,
		Clock:         FormatTime(s.remaining),
		Answers:       make(map[uuid.UUID]string, len(s.answers)),
		Flags:         make(map[uuid.UUID]bool, len(s.flags)),
		Submitted:     s.submitted,
	}
	for k, v := range s.cursors {
		st.Cursors[k] = v
	}
	for k, v := range s.answers {
		st.Answers[k] = v
	}
	for k, v := range s.flags {
		if v {
			st.Flags[k] = v
		}
	}
	return st
}
