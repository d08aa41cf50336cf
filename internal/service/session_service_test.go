package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/prepwise/prepwise-backend/internal/exam"
	"github.com/prepwise/prepwise-backend/internal/model"
)

// fakeLoader returns a canned pool or error and records what it was asked for.
type fakeLoader struct {
	pool *exam.Pool
	err  error

	calls   int
	lastIDs []uuid.UUID
}

func (f *fakeLoader) Load(_ context.Context, subjectIDs []uuid.UUID) (*exam.Pool, error) {
	f.calls++
	f.lastIDs = subjectIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.pool, nil
}

func testServicePool(t *testing.T) *exam.Pool {
	t.Helper()

	subjectID := uuid.New()
	questionID := uuid.New()
	return &exam.Pool{
		Subjects: []model.Subject{{ID: subjectID, Name: "Biology"}},
		Questions: map[uuid.UUID][]model.Question{
			subjectID: {{
				ID:        questionID,
				SubjectID: subjectID,
				Text:      "Which organelle produces ATP?",
				Options:   map[string]string{"A": "Mitochondria", "B": "Ribosome"},
				Answer:    "A",
			}},
		},
	}
}

func newTestSessionService(loader Loader) *SessionService {
	cfg := &config.Config{ExamDuration: 2 * time.Hour}
	return NewSessionService(loader, nil, cfg, zerolog.Nop())
}

func TestStartAndGet(t *testing.T) {
	loader := &fakeLoader{pool: testServicePool(t)}
	svc := newTestSessionService(loader)
	defer svc.Shutdown()

	ids := []uuid.UUID{loader.pool.Subjects[0].ID}
	session, err := svc.Start(context.Background(), 7, ids)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if loader.calls != 1 || len(loader.lastIDs) != 1 {
		t.Fatalf("loader called %d times with %v", loader.calls, loader.lastIDs)
	}

	got, err := svc.Get(7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != session {
		t.Fatal("Get returned a different session than Start")
	}
}

func TestGetWithoutStart(t *testing.T) {
	svc := newTestSessionService(&fakeLoader{pool: testServicePool(t)})
	defer svc.Shutdown()

	if _, err := svc.Get(7); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestStartLoadFailure(t *testing.T) {
	wantErr := errors.New("boom")
	svc := newTestSessionService(&fakeLoader{err: wantErr})
	defer svc.Shutdown()

	_, err := svc.Start(context.Background(), 7, []uuid.UUID{uuid.New()})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
	if _, err := svc.Get(7); !errors.Is(err, ErrNoActiveSession) {
		t.Fatal("failed start must not leave a session behind")
	}
}

func TestStartEmptyPool(t *testing.T) {
	empty := &exam.Pool{
		Subjects:  []model.Subject{{ID: uuid.New(), Name: "Geography"}},
		Questions: map[uuid.UUID][]model.Question{},
	}
	svc := newTestSessionService(&fakeLoader{pool: empty})
	defer svc.Shutdown()

	_, err := svc.Start(context.Background(), 7, []uuid.UUID{empty.Subjects[0].ID})
	if !errors.Is(err, ErrPoolEmpty) {
		t.Fatalf("expected ErrPoolEmpty, got %v", err)
	}
}

func TestStartReplacesPreviousSession(t *testing.T) {
	loader := &fakeLoader{pool: testServicePool(t)}
	svc := newTestSessionService(loader)
	defer svc.Shutdown()

	ids := []uuid.UUID{loader.pool.Subjects[0].ID}
	first, err := svc.Start(context.Background(), 7, ids)
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	second, err := svc.Start(context.Background(), 7, ids)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if first == second {
		t.Fatal("restart must produce a fresh session")
	}

	got, err := svc.Get(7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != second {
		t.Fatal("Get must return the newest session")
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	loader := &fakeLoader{pool: testServicePool(t)}
	svc := newTestSessionService(loader)
	defer svc.Shutdown()

	ids := []uuid.UUID{loader.pool.Subjects[0].ID}
	a, err := svc.Start(context.Background(), 1, ids)
	if err != nil {
		t.Fatalf("Start user 1: %v", err)
	}
	b, err := svc.Start(context.Background(), 2, ids)
	if err != nil {
		t.Fatalf("Start user 2: %v", err)
	}
	if a == b {
		t.Fatal("users must not share a session")
	}
}

func TestDiscard(t *testing.T) {
	loader := &fakeLoader{pool: testServicePool(t)}
	svc := newTestSessionService(loader)
	defer svc.Shutdown()

	ids := []uuid.UUID{loader.pool.Subjects[0].ID}
	if _, err := svc.Start(context.Background(), 7, ids); err != nil {
		t.Fatalf("Start: %v", err)
	}

	svc.Discard(7)
	if _, err := svc.Get(7); !errors.Is(err, ErrNoActiveSession) {
		t.Fatal("Discard must drop the session")
	}

	// Discarding again is a no-op.
	svc.Discard(7)
}

func TestShutdownDropsAllSessions(t *testing.T) {
	loader := &fakeLoader{pool: testServicePool(t)}
	svc := newTestSessionService(loader)

	ids := []uuid.UUID{loader.pool.Subjects[0].ID}
	for userID := 1; userID <= 3; userID++ {
		if _, err := svc.Start(context.Background(), userID, ids); err != nil {
			t.Fatalf("Start user %d: %v", userID, err)
		}
	}

	svc.Shutdown()

	for userID := 1; userID <= 3; userID++ {
		if _, err := svc.Get(userID); !errors.Is(err, ErrNoActiveSession) {
			t.Fatalf("user %d session survived shutdown", userID)
		}
	}
}
