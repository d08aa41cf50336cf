package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/prepwise/prepwise-backend/internal/exam"
	"github.com/prepwise/prepwise-backend/internal/middleware"
	"github.com/prepwise/prepwise-backend/internal/model"
	"github.com/prepwise/prepwise-backend/internal/repository"
	"github.com/prepwise/prepwise-backend/internal/response"
	"github.com/prepwise/prepwise-backend/internal/service"
	"github.com/prepwise/prepwise-backend/internal/validator"
)

// ExamHandler drives the exam session lifecycle over REST. Every endpoint
// operates on the caller's single live session.
type ExamHandler struct {
	sessionService *service.SessionService
	resultRepo     *repository.ResultRepository
	cfg            *config.Config
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(sessionService *service.SessionService, resultRepo *repository.ResultRepository, cfg *config.Config) *ExamHandler {
	return &ExamHandler{
		sessionService: sessionService,
		resultRepo:     resultRepo,
		cfg:            cfg,
	}
}

// Start godoc
// POST /api/v1/exams
// Loads a question pool for the selected subjects and starts the countdown.
// Any previous attempt is discarded.
func (h *ExamHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), claims.UserID, req.SubjectIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSubjects):
			response.Fail(c, http.StatusBadRequest, response.ErrNoSubjects)
		case errors.Is(err, service.ErrPoolEmpty):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrLoadFailed)
		}
		return
	}

	response.Success(c, http.StatusCreated, h.examPayload(session))
}

// GetState godoc
// GET /api/v1/exams
// Returns the full pool plus the current session snapshot, so a client can
// rebuild its screen after a reconnect.
func (h *ExamHandler) GetState(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, h.examPayload(session))
}

// SelectSubject godoc
// PUT /api/v1/exams/subject
// Switches the active subject. Each subject remembers its own cursor.
func (h *ExamHandler) SelectSubject(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.SelectSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session.SelectSubject(req.SubjectID)
	response.Success(c, http.StatusOK, gin.H{"state": session.Snapshot()})
}

// Move godoc
// PUT /api/v1/exams/position
// Moves the cursor within the active subject. Out-of-range targets clamp
// to the subject's bounds.
func (h *ExamHandler) Move(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.PositionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	switch {
	case req.Index != nil:
		session.GoTo(*req.Index)
	case req.Move == "next":
		session.Next()
	case req.Move == "prev":
		session.Prev()
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": session.Snapshot()})
}

// Answer godoc
// PUT /api/v1/exams/answers
// Records an option choice. Re-answering overwrites the previous choice.
func (h *ExamHandler) Answer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := session.RecordAnswer(req.QuestionID, req.Option); err != nil {
		failAnswer(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"q_id":   req.QuestionID,
		"option": req.Option,
	})
}

// ToggleFlag godoc
// PUT /api/v1/exams/flags
// Toggles the review flag on a question. Allowed even after submission.
func (h *ExamHandler) ToggleFlag(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req model.FlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := session.ToggleFlag(req.QuestionID); err != nil {
		failAnswer(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"q_id":    req.QuestionID,
		"flagged": session.Flagged(req.QuestionID),
	})
}

// Submit godoc
// POST /api/v1/exams/submit
// Grades the attempt and freezes the answer ledger. Submitting twice
// returns the same result.
func (h *ExamHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	result := session.Submit()
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetResult godoc
// GET /api/v1/exams/result
// Returns the graded result of the live session, once submitted.
func (h *ExamHandler) GetResult(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, submitted := session.Result()
	if !submitted {
		response.Fail(c, http.StatusNotFound, response.ErrNotSubmitted)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Quit godoc
// DELETE /api/v1/exams
// Discards the live session without grading. Mirrors the client reloading
// away from the exam screen: nothing is kept.
func (h *ExamHandler) Quit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	h.sessionService.Discard(claims.UserID)
	response.Success(c, http.StatusOK, gin.H{})
}

// History godoc
// GET /api/v1/exams/history
// Returns the caller's persisted results, most recent first.
func (h *ExamHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultRepo.ListByUser(c.Request.Context(), claims.UserID, 50)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []repository.ExamResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// session resolves the caller's live session, writing the error response
// itself when there is none.
func (h *ExamHandler) session(c *gin.Context) (*exam.Session, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	session, err := h.sessionService.Get(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return nil, false
	}
	return session, true
}

// examPayload builds the pool + snapshot view the exam screen renders:
// subjects in display order, taker-safe questions grouped per subject.
func (h *ExamHandler) examPayload(session *exam.Session) gin.H {
	pool := session.Pool()

	subjects := exam.OrderAndLabel(
		pool.Subjects,
		exam.PinnedByName(h.cfg.PinnedSubjectMarker),
		exam.PinnedLabel(h.cfg.PinnedSubjectMarker),
	)

	questions := make(map[uuid.UUID][]model.TakerQuestion, len(pool.Questions))
	for subjectID, qs := range pool.Questions {
		taker := make([]model.TakerQuestion, 0, len(qs))
		for _, q := range qs {
			taker = append(taker, model.ForTaker(q))
		}
		questions[subjectID] = taker
	}

	return gin.H{
		"subjects":  subjects,
		"questions": questions,
		"state":     session.Snapshot(),
	}
}

// failAnswer maps engine errors to API error codes.
func failAnswer(c *gin.Context, err error) {
	switch {
	case errors.Is(err, exam.ErrSessionClosed):
		response.Fail(c, http.StatusConflict, response.ErrSessionClosed)
	case errors.Is(err, exam.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	case errors.Is(err, exam.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
