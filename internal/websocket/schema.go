package websocket

import (
	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/exam"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionFlag    Action = "flag"
	ActionGoto    Action = "goto"
	ActionSubject Action = "subject"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// RequestPayload carries every client action; unused fields stay zero.
type RequestPayload struct {
	Action    Action    `json:"action"`
	QID       uuid.UUID `json:"q_id,omitempty"`
	Option    string    `json:"option,omitempty"`
	Index     *int      `json:"index,omitempty"`
	SubjectID uuid.UUID `json:"subject_id,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSaved   Event = "saved"
	EventFlagged Event = "flagged"
	EventMoved   Event = "moved"
	EventTick    Event = "tick"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
	EventError   Event = "error"
)

type SavedResponse struct {
	Event  Event     `json:"event"`
	QID    uuid.UUID `json:"q_id"`
	Option string    `json:"option"`
}

type FlaggedResponse struct {
	Event   Event     `json:"event"`
	QID     uuid.UUID `json:"q_id"`
	Flagged bool      `json:"flagged"`
}

type MovedResponse struct {
	Event         Event     `json:"event"`
	ActiveSubject uuid.UUID `json:"active_subject"`
	Index         int       `json:"index"`
}

// TickResponse is pushed every second while the countdown runs.
type TickResponse struct {
	Event     Event  `json:"event"`
	Remaining int    `json:"remaining"`
	Clock     string `json:"clock"`
	Submitted bool   `json:"submitted"`
}

type GradedResponse struct {
	Event  Event        `json:"event"`
	Result *exam.Result `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
