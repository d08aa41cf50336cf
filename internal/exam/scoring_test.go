package exam

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/model"
)

func TestScoreBoundsAndSum(t *testing.T) {
	pool := testPool(t, 5, 3, 4)

	// Answer a mix: all of subject one correct, one of subject two wrong,
	// subject three untouched.
	answers := map[uuid.UUID]string{}
	for _, q := range pool.Questions[pool.Subjects[0].ID] {
		answers[q.ID] = "A"
	}
	qs2 := pool.Questions[pool.Subjects[1].ID]
	answers[qs2[0].ID] = "B"
	answers[qs2[1].ID] = "A"

	res := score(pool, answers)

	if res.Score < 0 || res.Score > res.Total {
		t.Fatalf("score %d outside [0, %d]", res.Score, res.Total)
	}
	sum := 0
	for _, ss := range res.PerSubject {
		if ss.Correct > ss.Total {
			t.Fatalf("per-subject correct %d exceeds total %d", ss.Correct, ss.Total)
		}
		sum += ss.Correct
	}
	if sum != res.Score {
		t.Fatalf("score %d != sum of per-subject correct %d", res.Score, sum)
	}
	if res.Score != 6 {
		t.Fatalf("score = %d, want 6", res.Score)
	}
}

func TestPercentageExactness(t *testing.T) {
	pool := testPool(t, 5)
	subj := pool.Subjects[0].ID
	qs := pool.Questions[subj]

	answers := map[uuid.UUID]string{
		qs[0].ID: "A",
		qs[1].ID: "A",
		qs[2].ID: "A",
		qs[3].ID: "B",
	}

	res := score(pool, answers)
	if got := res.PerSubject[subj].Percentage; got != 60.0 {
		t.Fatalf("percentage = %v, want exactly 60.0", got)
	}
}

func TestZeroQuestionSubject(t *testing.T) {
	pool := testPool(t, 0, 2)
	empty := pool.Subjects[0].ID

	res := score(pool, nil)

	ss, ok := res.PerSubject[empty]
	if !ok {
		t.Fatal("empty subject must still appear in the breakdown")
	}
	if ss.Percentage != 0 || ss.Total != 0 {
		t.Fatalf("empty subject = %+v, want zero percentage without division", ss)
	}
	if len(res.Ranking) != 1 {
		t.Fatalf("ranking should exclude question-less subjects, got %v", res.Ranking)
	}
}

func TestRankingSortedBestFirst(t *testing.T) {
	pool := testPool(t, 2, 2, 2)
	a, b, c := pool.Subjects[0].ID, pool.Subjects[1].ID, pool.Subjects[2].ID

	answers := map[uuid.UUID]string{}
	// a: 1/2, b: 2/2, c: 0/2.
	answers[pool.Questions[a][0].ID] = "A"
	answers[pool.Questions[b][0].ID] = "A"
	answers[pool.Questions[b][1].ID] = "A"

	res := score(pool, answers)

	want := []uuid.UUID{b, a, c}
	if len(res.Ranking) != 3 {
		t.Fatalf("ranking length = %d", len(res.Ranking))
	}
	for i := range want {
		if res.Ranking[i] != want[i] {
			t.Fatalf("ranking[%d] = %v, want %v", i, res.Ranking[i], want[i])
		}
	}
	if *res.Best != b || *res.Worst != c {
		t.Fatal("extremes must match the ranking ends")
	}
}

func TestExtremeTiesBreakByFirstOccurrence(t *testing.T) {
	pool := testPool(t, 2, 2, 2)
	a := pool.Subjects[0].ID

	// All subjects score 0%: ties everywhere.
	res := score(pool, nil)

	if *res.Best != a {
		t.Fatalf("best tie-break = %v, want first subject %v", *res.Best, a)
	}
	if *res.Worst != a {
		t.Fatalf("worst tie-break = %v, want first subject %v", *res.Worst, a)
	}
}

func TestNoScorableSubjects(t *testing.T) {
	pool := &Pool{
		Subjects:  []model.Subject{{ID: uuid.New(), Name: "Empty"}},
		Questions: map[uuid.UUID][]model.Question{},
	}

	res := score(pool, nil)
	if res.Best != nil || res.Worst != nil {
		t.Fatal("no subject with questions: extremes must be nil")
	}
	if len(res.Ranking) != 0 {
		t.Fatal("no subject with questions: ranking must be empty")
	}
}
