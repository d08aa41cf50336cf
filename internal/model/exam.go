package model

import "github.com/google/uuid"

// StartExamRequest selects the subjects for a new exam attempt.
type StartExamRequest struct {
	SubjectIDs []uuid.UUID `json:"subject_ids" binding:"required,min=1"`
}

// SelectSubjectRequest switches the active subject tab.
type SelectSubjectRequest struct {
	SubjectID uuid.UUID `json:"subject_id" binding:"required"`
}

// PositionRequest moves the cursor within the active subject. Exactly one
// of Index or Move is expected; Index wins when both are present.
type PositionRequest struct {
	Index *int   `json:"index,omitempty"`
	Move  string `json:"move,omitempty" binding:"omitempty,oneof=next prev"`
}

// AnswerRequest records an option choice for a question.
type AnswerRequest struct {
	QuestionID uuid.UUID `json:"q_id" binding:"required"`
	Option     string    `json:"option" binding:"required"`
}

// FlagRequest toggles the review flag on a question.
type FlagRequest struct {
	QuestionID uuid.UUID `json:"q_id" binding:"required"`
}
