package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scolaire/timetable-api/internal/dto"
	"github.com/scolaire/timetable-api/internal/models"
	appErrors "github.com/scolaire/timetable-api/pkg/errors"
	"github.com/scolaire/timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	ClassTimetable(ctx context.Context, classID string) (*dto.ClassScheduleView, error)
	Conflicts(ctx context.Context, targetClass string) (*dto.ConflictReport, error)
}

type breakConfigurator interface {
	Current() models.BreakPeriodSet
	Update(req dto.UpdateBreaksRequest) (models.BreakPeriodSet, error)
}

// TimetableHandler exposes the timetable engine endpoints.
type TimetableHandler struct {
	service timetableService
	breaks  breakConfigurator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService, breaks breakConfigurator) *TimetableHandler {
	return &TimetableHandler{service: svc, breaks: breaks}
}

// Generate godoc
// @Summary Run a timetable generation pass
// @Description Fills empty grid cells for the requested classes (all classes when none are named). Manual cells are never overwritten; shortfalls are reported in the summary, not raised as errors.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ClassTimetable godoc
// @Summary Get the rendered weekly grid for a class section
// @Tags Timetable
// @Produce json
// @Param id path string true "Class section ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/classes/{id} [get]
func (h *TimetableHandler) ClassTimetable(c *gin.Context) {
	view, err := h.service.ClassTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Conflicts godoc
// @Summary List scheduling conflicts and teacher overloads
// @Tags Timetable
// @Produce json
// @Param classId query string false "Restrict to conflicts touching this class"
// @Success 200 {object} response.Envelope
// @Router /timetable/conflicts [get]
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	report, err := h.service.Conflicts(c.Request.Context(), c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// GetBreaks godoc
// @Summary Get the configured break windows
// @Tags Breaks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/breaks [get]
func (h *TimetableHandler) GetBreaks(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.breaks.Current())
}

// UpdateBreaks godoc
// @Summary Replace the three break windows
// @Description The only hard failure of the engine: a window whose end does not come after its start is rejected with INVALID_RANGE.
// @Tags Breaks
// @Accept json
// @Produce json
// @Param payload body dto.UpdateBreaksRequest true "Break windows"
// @Success 200 {object} response.Envelope
// @Router /timetable/breaks [put]
func (h *TimetableHandler) UpdateBreaks(c *gin.Context) {
	var req dto.UpdateBreaksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid breaks payload"))
		return
	}
	set, err := h.breaks.Update(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, set)
}
