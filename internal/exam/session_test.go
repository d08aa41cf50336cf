package exam

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/model"
)

// testPool builds a pool with the given per-subject question counts. Every
// question has options A–D with answer "A" unless overridden by the caller.
func testPool(t *testing.T, counts ...int) *Pool {
	t.Helper()

	pool := &Pool{Questions: make(map[uuid.UUID][]model.Question)}
	for i, n := range counts {
		subj := model.Subject{ID: uuid.New(), Name: string(rune('A' + i))}
		pool.Subjects = append(pool.Subjects, subj)

		qs := make([]model.Question, n)
		for j := range qs {
			qs[j] = model.Question{
				ID:        uuid.New(),
				SubjectID: subj.ID,
				Text:      "q",
				Options:   map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
				Answer:    "A",
			}
		}
		pool.Questions[subj.ID] = qs
	}
	return pool
}

func TestGoToClampsToBounds(t *testing.T) {
	pool := testPool(t, 5)
	s := NewSession(pool, Options{})
	subj := pool.Subjects[0].ID

	s.GoTo(-1)
	if got := s.Cursor(subj); got != 0 {
		t.Fatalf("GoTo(-1): cursor = %d, want 0", got)
	}

	s.GoTo(99)
	if got := s.Cursor(subj); got != 4 {
		t.Fatalf("GoTo(99): cursor = %d, want 4", got)
	}

	s.GoTo(2)
	if got := s.Cursor(subj); got != 2 {
		t.Fatalf("GoTo(2): cursor = %d, want 2", got)
	}
}

func TestNextPrevStopAtBoundaries(t *testing.T) {
	pool := testPool(t, 2)
	s := NewSession(pool, Options{})
	subj := pool.Subjects[0].ID

	s.Prev()
	if got := s.Cursor(subj); got != 0 {
		t.Fatalf("Prev at start: cursor = %d, want 0", got)
	}

	s.Next()
	s.Next()
	s.Next()
	if got := s.Cursor(subj); got != 1 {
		t.Fatalf("Next past end: cursor = %d, want 1", got)
	}
}

func TestSelectSubjectKeepsCursors(t *testing.T) {
	pool := testPool(t, 3, 3)
	s := NewSession(pool, Options{})
	first, second := pool.Subjects[0].ID, pool.Subjects[1].ID

	if s.ActiveSubject() != first {
		t.Fatal("active subject should default to the first subject")
	}

	s.GoTo(2)
	s.SelectSubject(second)
	if s.ActiveSubject() != second {
		t.Fatal("SelectSubject did not switch")
	}
	if got := s.Cursor(first); got != 2 {
		t.Fatalf("switching subjects reset the cursor: got %d, want 2", got)
	}

	// Unknown subjects are ignored.
	s.SelectSubject(uuid.New())
	if s.ActiveSubject() != second {
		t.Fatal("unknown subject must not change the active subject")
	}
}

func TestCurrentQuestionFollowsCursor(t *testing.T) {
	pool := testPool(t, 3)
	s := NewSession(pool, Options{})
	subj := pool.Subjects[0].ID

	s.GoTo(1)
	q, ok := s.CurrentQuestion()
	if !ok {
		t.Fatal("expected a current question")
	}
	if q.ID != pool.Questions[subj][1].ID {
		t.Fatal("current question does not match cursor position")
	}
}

func TestEmptyPoolIsDegenerate(t *testing.T) {
	s := NewSession(&Pool{Questions: map[uuid.UUID][]model.Question{}}, Options{})

	s.GoTo(3)
	s.Next()
	s.SelectSubject(uuid.New())
	if _, ok := s.CurrentQuestion(); ok {
		t.Fatal("empty pool must have no current question")
	}

	res := s.Submit()
	if res.Score != 0 || res.Total != 0 || res.Best != nil || res.Worst != nil {
		t.Fatalf("empty pool result = %+v, want zeroes with nil extremes", res)
	}
}

func TestRecordAnswerValidation(t *testing.T) {
	pool := testPool(t, 1)
	s := NewSession(pool, Options{})
	q := pool.Questions[pool.Subjects[0].ID][0]

	if err := s.RecordAnswer(uuid.New(), "A"); err != ErrUnknownQuestion {
		t.Fatalf("unknown question: err = %v, want ErrUnknownQuestion", err)
	}
	if err := s.RecordAnswer(q.ID, "Z"); err != ErrInvalidOption {
		t.Fatalf("invalid option: err = %v, want ErrInvalidOption", err)
	}
	if _, ok := s.Answer(q.ID); ok {
		t.Fatal("rejected answers must not be stored")
	}

	if err := s.RecordAnswer(q.ID, "B"); err != nil {
		t.Fatalf("valid answer: err = %v", err)
	}
	if err := s.RecordAnswer(q.ID, "C"); err != nil {
		t.Fatalf("overwrite before submit: err = %v", err)
	}
	if got, _ := s.Answer(q.ID); got != "C" {
		t.Fatalf("answer = %q, want overwritten value C", got)
	}
}

func TestFreezeAfterSubmit(t *testing.T) {
	pool := testPool(t, 2)
	s := NewSession(pool, Options{})
	qs := pool.Questions[pool.Subjects[0].ID]

	s.Submit()

	if err := s.RecordAnswer(qs[0].ID, "B"); err != ErrSessionClosed {
		t.Fatalf("answer after submit: err = %v, want ErrSessionClosed", err)
	}
	if _, ok := s.Answer(qs[0].ID); ok {
		t.Fatal("answer after submit must not be stored")
	}

	// Review flagging stays allowed after submission.
	if err := s.ToggleFlag(qs[1].ID); err != nil {
		t.Fatalf("flag after submit: err = %v", err)
	}
	if !s.Flagged(qs[1].ID) {
		t.Fatal("flag after submit did not stick")
	}

	// Navigation for review still works and does not alter the result.
	before, _ := s.Result()
	s.GoTo(1)
	after, _ := s.Result()
	if before != after {
		t.Fatal("post-submit navigation must not recompute the result")
	}
}

func TestToggleFlag(t *testing.T) {
	pool := testPool(t, 1)
	s := NewSession(pool, Options{})
	q := pool.Questions[pool.Subjects[0].ID][0]

	if s.Flagged(q.ID) {
		t.Fatal("flags default to false")
	}
	if err := s.ToggleFlag(uuid.New()); err != ErrUnknownQuestion {
		t.Fatalf("unknown question flag: err = %v, want ErrUnknownQuestion", err)
	}

	s.ToggleFlag(q.ID)
	if !s.Flagged(q.ID) {
		t.Fatal("first toggle should set the flag")
	}
	s.ToggleFlag(q.ID)
	if s.Flagged(q.ID) {
		t.Fatal("second toggle should clear the flag")
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	pool := testPool(t, 2)
	s := NewSession(pool, Options{})
	q := pool.Questions[pool.Subjects[0].ID][0]
	s.RecordAnswer(q.ID, "A")

	first := s.Submit()
	second := s.Submit()
	if first != second {
		t.Fatal("repeat Submit must return the same result instance")
	}
	if first.Score != 1 {
		t.Fatalf("score = %d, want 1", first.Score)
	}
}

func TestSubmitNotifiesOnce(t *testing.T) {
	pool := testPool(t, 1)
	calls := 0
	s := NewSession(pool, Options{OnSubmit: func(*Result) { calls++ }})

	s.Submit()
	s.Submit()
	s.Tick() // expiry path must not re-notify an already submitted session
	if calls != 1 {
		t.Fatalf("OnSubmit called %d times, want 1", calls)
	}
}

func TestEndToEndScenario(t *testing.T) {
	// Subject A: two questions answered A/B correct keys; Subject B: one
	// question left unanswered.
	subjA := model.Subject{ID: uuid.New(), Name: "Subject A"}
	subjB := model.Subject{ID: uuid.New(), Name: "Subject B"}
	q1 := model.Question{ID: uuid.New(), SubjectID: subjA.ID, Options: map[string]string{"A": "a", "B": "b"}, Answer: "A"}
	q2 := model.Question{ID: uuid.New(), SubjectID: subjA.ID, Options: map[string]string{"A": "a", "B": "b"}, Answer: "B"}
	q3 := model.Question{ID: uuid.New(), SubjectID: subjB.ID, Options: map[string]string{"C": "c", "D": "d"}, Answer: "C"}

	pool := &Pool{
		Subjects: []model.Subject{subjA, subjB},
		Questions: map[uuid.UUID][]model.Question{
			subjA.ID: {q1, q2},
			subjB.ID: {q3},
		},
	}

	s := NewSession(pool, Options{})
	if err := s.RecordAnswer(q1.ID, "A"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAnswer(q2.ID, "A"); err != nil {
		t.Fatal(err)
	}

	res := s.Submit()

	if res.Score != 1 || res.Total != 3 {
		t.Fatalf("score = %d/%d, want 1/3", res.Score, res.Total)
	}
	if got := res.PerSubject[subjA.ID]; got.Total != 2 || got.Correct != 1 || got.Percentage != 50 {
		t.Fatalf("subject A = %+v, want {2 1 50}", got)
	}
	if got := res.PerSubject[subjB.ID]; got.Total != 1 || got.Correct != 0 || got.Percentage != 0 {
		t.Fatalf("subject B = %+v, want {1 0 0}", got)
	}
	if res.Best == nil || *res.Best != subjA.ID {
		t.Fatal("best subject should be A")
	}
	if res.Worst == nil || *res.Worst != subjB.ID {
		t.Fatal("worst subject should be B")
	}
}

func TestTimerExpiryForcesSubmission(t *testing.T) {
	pool := testPool(t, 1)
	q := pool.Questions[pool.Subjects[0].ID][0]

	var notified *Result
	s := NewSession(pool, Options{
		Duration: 2 * time.Second,
		OnSubmit: func(r *Result) { notified = r },
	})
	s.RecordAnswer(q.ID, "A")

	s.Tick()
	if s.Submitted() {
		t.Fatal("one tick of two must not submit")
	}
	if got := s.TimeRemaining(); got != 1 {
		t.Fatalf("remaining = %d, want 1", got)
	}

	s.Tick()
	if !s.Submitted() || !s.Expired() {
		t.Fatal("second tick must expire and auto-submit")
	}
	res, ok := s.Result()
	if !ok || res.Score != 1 {
		t.Fatalf("expiry result = %+v, want score 1 from answers at expiry", res)
	}
	if notified != res {
		t.Fatal("OnSubmit should receive the stored result")
	}

	// Expiry is terminal.
	s.Tick()
	if got := s.TimeRemaining(); got != 0 {
		t.Fatalf("remaining after expiry = %d, want 0", got)
	}
}

func TestSnapshotCopiesState(t *testing.T) {
	pool := testPool(t, 2)
	s := NewSession(pool, Options{Duration: 90 * time.Second})
	q := pool.Questions[pool.Subjects[0].ID][0]
	s.RecordAnswer(q.ID, "B")
	s.ToggleFlag(q.ID)

	st := s.Snapshot()
	if st.TimeRemaining != 90 || st.Clock != "00:01:30" {
		t.Fatalf("snapshot clock = %d %q", st.TimeRemaining, st.Clock)
	}
	if st.Answers[q.ID] != "B" || !st.Flags[q.ID] {
		t.Fatal("snapshot missing ledger entries")
	}

	// Mutating the snapshot must not leak into the session.
	st.Answers[q.ID] = "D"
	if got, _ := s.Answer(q.ID); got != "B" {
		t.Fatal("snapshot maps must be copies")
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{7200, "02:00:00"},
		{61, "00:01:01"},
		{0, "00:00:00"},
		{-5, "00:00:00"},
		{3661, "01:01:01"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.in); got != tc.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
