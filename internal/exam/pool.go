package exam

import (
	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/model"
)

// Pool is the immutable question set one exam attempt runs against. It is
// assembled once by the loader at session start and never mutated afterwards.
type Pool struct {
	// Subjects holds the subjects the user selected, in display order.
	Subjects []model.Subject
	// Questions maps each subject ID to its question sequence. Insertion
	// order fixes navigation order.
	Questions map[uuid.UUID][]model.Question
}

// TotalQuestions counts all questions across all subjects.
func (p *Pool) TotalQuestions() int {
	n := 0
	for _, qs := range p.Questions {
		n += len(qs)
	}
	return n
}

// HasSubject reports whether the subject is part of this pool.
func (p *Pool) HasSubject(id uuid.UUID) bool {
	for _, s := range p.Subjects {
		if s.ID == id {
			return true
		}
	}
	return false
}
