package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepwise/prepwise-backend/internal/exam"
	"github.com/prepwise/prepwise-backend/internal/model"
	"github.com/prepwise/prepwise-backend/internal/response"
	"github.com/prepwise/prepwise-backend/internal/service"
	"github.com/prepwise/prepwise-backend/internal/validator"
)

// SubjectHandler serves the subject picker catalog.
type SubjectHandler struct {
	catalogService *service.CatalogService
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(catalogService *service.CatalogService) *SubjectHandler {
	return &SubjectHandler{catalogService: catalogService}
}

// List godoc
// GET /api/v1/subjects
// Returns every subject in display order: pinned subject first, the rest
// alphabetical by name.
func (h *SubjectHandler) List(c *gin.Context) {
	catalog, err := h.catalogService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if catalog == nil {
		catalog = []exam.LabeledSubject{}
	}

	response.Success(c, http.StatusOK, gin.H{"subjects": catalog})
}

// Create godoc
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	subj := &model.Subject{Name: req.Name}
	if err := h.catalogService.Create(c.Request.Context(), subj); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"subject": subj})
}
