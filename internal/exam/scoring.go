package exam

import (
	"sort"

	"github.com/google/uuid"
)

// SubjectScore is the per-subject performance breakdown.
type SubjectScore struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

// Result is the graded outcome of one exam attempt.
type Result struct {
	Score      int                        `json:"score"`
	Total      int                        `json:"total"`
	PerSubject map[uuid.UUID]SubjectScore `json:"per_subject"`
	// Ranking lists the subjects that had questions, best percentage first.
	Ranking []uuid.UUID `json:"ranking"`
	// Best and Worst are nil when no subject had any questions.
	Best  *uuid.UUID `json:"best_subject,omitempty"`
	Worst *uuid.UUID `json:"worst_subject,omitempty"`
}

// score grades the answer ledger against the pool. It is pure: the result
// is derivable from (pool, answers) alone, with no state accumulated during
// the answering phase. One pass over the questions, one sort for the
// ranking; best and worst subjects take ties by first occurrence in the
// pool's subject order.
func score(pool *Pool, answers map[uuid.UUID]string) *Result {
	res := &Result{
		Total:      pool.TotalQuestions(),
		PerSubject: make(map[uuid.UUID]SubjectScore, len(pool.Subjects)),
	}

	type ranked struct {
		id  uuid.UUID
		pct float64
	}
	ranking := make([]ranked, 0, len(pool.Subjects))

	for _, subj := range pool.Subjects {
		qs := pool.Questions[subj.ID]

		ss := SubjectScore{Total: len(qs)}
		for i := range qs {
			if picked, ok := answers[qs[i].ID]; ok && picked == qs[i].Answer {
				ss.Correct++
			}
		}
		if ss.Total > 0 {
			ss.Percentage = 100 * float64(ss.Correct) / float64(ss.Total)
			ranking = append(ranking, ranked{id: subj.ID, pct: ss.Percentage})
		}

		res.PerSubject[subj.ID] = ss
		res.Score += ss.Correct
	}

	if len(ranking) == 0 {
		return res
	}

	// Extremes use strict comparisons over the unsorted pass so that ties
	// resolve to the earliest subject in selection order.
	best, worst := ranking[0], ranking[0]
	for _, r := range ranking[1:] {
		if r.pct > best.pct {
			best = r
		}
		if r.pct < worst.pct {
			worst = r
		}
	}
	res.Best = &best.id
	res.Worst = &worst.id

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].pct > ranking[j].pct
	})
	res.Ranking = make([]uuid.UUID, len(ranking))
	for i, r := range ranking {
		res.Ranking[i] = r.id
	}

	return res
}
