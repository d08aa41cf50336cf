package model

import "github.com/google/uuid"

// Question represents a single multiple-choice question. The question text
// may embed inline math markup; the engine treats it as opaque.
type Question struct {
	ID          uuid.UUID         `json:"id"`
	SubjectID   uuid.UUID         `json:"subject_id"`
	Text        string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation,omitempty"`
}

// Valid reports whether the question's answer key is present in its option
// set. Questions that fail this check are excluded at load time and never
// reach scoring.
func (q *Question) Valid() bool {
	if len(q.Options) == 0 {
		return false
	}
	_, ok := q.Options[q.Answer]
	return ok
}

// TakerQuestion is a question as presented to the exam taker — no correct
// answer, no explanation.
type TakerQuestion struct {
	ID        uuid.UUID         `json:"id"`
	SubjectID uuid.UUID         `json:"subject_id"`
	Text      string            `json:"question"`
	Options   map[string]string `json:"options"`
}

// ForTaker strips the answer key and explanation from a question.
func ForTaker(q Question) TakerQuestion {
	return TakerQuestion{
		ID:        q.ID,
		SubjectID: q.SubjectID,
		Text:      q.Text,
		Options:   q.Options,
	}
}
