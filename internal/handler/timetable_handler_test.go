package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/scolaire/timetable-api/internal/dto"
	"github.com/scolaire/timetable-api/internal/models"
	appErrors "github.com/scolaire/timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	captured    dto.GenerateTimetableRequest
	conflictErr error
}

func (m *timetableServiceMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured = req
	return &dto.GenerateTimetableResponse{
		Summary: dto.GenerationSummary{PlacedCells: 2},
		Book:    map[string]dto.ClassScheduleView{},
	}, nil
}

func (m *timetableServiceMock) ClassTimetable(ctx context.Context, classID string) (*dto.ClassScheduleView, error) {
	if classID == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
	}
	return &dto.ClassScheduleView{ClassID: classID, ClassName: "6ème A"}, nil
}

func (m *timetableServiceMock) Conflicts(ctx context.Context, targetClass string) (*dto.ConflictReport, error) {
	if m.conflictErr != nil {
		return nil, m.conflictErr
	}
	return &dto.ConflictReport{Conflicts: []models.Conflict{}}, nil
}

type breakConfiguratorMock struct {
	set models.BreakPeriodSet
	err error
}

func (m *breakConfiguratorMock) Current() models.BreakPeriodSet {
	return m.set
}

func (m *breakConfiguratorMock) Update(req dto.UpdateBreaksRequest) (models.BreakPeriodSet, error) {
	if m.err != nil {
		return models.BreakPeriodSet{}, m.err
	}
	m.set = models.BreakPeriodSet{
		Morning:   models.BreakPeriod{Start: req.Morning.Start, End: req.Morning.End, Label: req.Morning.Label},
		Lunch:     models.BreakPeriod{Start: req.Lunch.Start, End: req.Lunch.End, Label: req.Lunch.Label},
		Afternoon: models.BreakPeriod{Start: req.Afternoon.Start, End: req.Afternoon.End, Label: req.Afternoon.Label},
	}
	return m.set, nil
}

func newTestRouter(h *TimetableHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/timetable/generate", h.Generate)
	r.GET("/timetable/classes/:id", h.ClassTimetable)
	r.GET("/timetable/conflicts", h.Conflicts)
	r.GET("/timetable/breaks", h.GetBreaks)
	r.PUT("/timetable/breaks", h.UpdateBreaks)
	return r
}

func TestGenerateEndpoint(t *testing.T) {
	mockSvc := &timetableServiceMock{}
	router := newTestRouter(NewTimetableHandler(mockSvc, &breakConfiguratorMock{}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader([]byte(`{"classIds":["6eme-a"]}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"6eme-a"}, mockSvc.captured.ClassIDs)

	var envelope struct {
		Data dto.GenerateTimetableResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 2, envelope.Data.Summary.PlacedCells)
}

func TestGenerateEndpointRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(NewTimetableHandler(&timetableServiceMock{}, &breakConfiguratorMock{}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader([]byte(`{"classIds":`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassTimetableEndpointNotFound(t *testing.T) {
	router := newTestRouter(NewTimetableHandler(&timetableServiceMock{}, &breakConfiguratorMock{}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetable/classes/missing", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	require.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}

func TestUpdateBreaksEndpoint(t *testing.T) {
	breaks := &breakConfiguratorMock{}
	router := newTestRouter(NewTimetableHandler(&timetableServiceMock{}, breaks))

	payload := `{
		"morning": {"start": "10:00", "end": "10:15", "label": "Récréation"},
		"lunch": {"start": "12:15", "end": "13:45", "label": "Pause déjeuner"},
		"afternoon": {"start": "15:45", "end": "16:00", "label": "Pause"}
	}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/timetable/breaks", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Récréation", breaks.set.Morning.Label)
}

func TestUpdateBreaksEndpointInvalidRange(t *testing.T) {
	breaks := &breakConfiguratorMock{
		err: appErrors.Clone(appErrors.ErrInvalidRange, "break window 10:15-10:00 must end after it starts"),
	}
	router := newTestRouter(NewTimetableHandler(&timetableServiceMock{}, breaks))

	payload := `{
		"morning": {"start": "10:15", "end": "10:00", "label": "Récréation"},
		"lunch": {"start": "12:15", "end": "13:45", "label": "Pause déjeuner"},
		"afternoon": {"start": "15:45", "end": "16:00", "label": "Pause"}
	}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/timetable/breaks", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBreaksEndpoint(t *testing.T) {
	breaks := &breakConfiguratorMock{set: models.BreakPeriodSet{
		Morning: models.BreakPeriod{Start: "10:00", End: "10:15", Label: "Récréation"},
	}}
	router := newTestRouter(NewTimetableHandler(&timetableServiceMock{}, breaks))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetable/breaks", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.BreakPeriodSet `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "10:00-10:15", envelope.Data.Morning.Range())
}

func TestConflictsEndpoint(t *testing.T) {
	router := newTestRouter(NewTimetableHandler(&timetableServiceMock{}, &breakConfiguratorMock{}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetable/conflicts?classId=6eme-a", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
