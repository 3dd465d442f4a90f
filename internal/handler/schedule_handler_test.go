package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	internalmiddleware "github.com/noah-isme/class-schedule-api/internal/middleware"
	"github.com/noah-isme/class-schedule-api/internal/models"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
)

type scheduleServiceMock struct {
	generateReq    dto.GenerateScheduleRequest
	generateAllReq dto.GenerateAllSchedulesRequest
	enqueued       bool
	listQuery      dto.ScheduleListQuery
	timetableHit   bool
	err            error
}

func (m *scheduleServiceMock) Generate(_ context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.generateReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateScheduleResponse{Schedule: &models.Schedule{ID: "sch-1", Status: models.ScheduleStatusDraft}, Conflicts: []models.Conflict{}, Warnings: []string{}}, nil
}

func (m *scheduleServiceMock) GenerateAll(_ context.Context, req dto.GenerateAllSchedulesRequest) (*dto.GenerateAllSchedulesResponse, error) {
	m.generateAllReq = req
	return &dto.GenerateAllSchedulesResponse{Schedules: []dto.SectionScheduleResponse{}}, nil
}

func (m *scheduleServiceMock) EnqueueGenerateAll(_ context.Context, req dto.GenerateAllSchedulesRequest) (*models.GenerationJob, error) {
	m.generateAllReq = req
	m.enqueued = true
	return &models.GenerationJob{ID: "job-1", SemesterID: req.SemesterID, Status: models.GenerationJobQueued}, nil
}

func (m *scheduleServiceMock) GetJob(_ context.Context, id string) (*models.GenerationJob, error) {
	if id != "job-1" {
		return nil, appErrors.ErrNotFound
	}
	return &models.GenerationJob{ID: id, Status: models.GenerationJobFinished}, nil
}

func (m *scheduleServiceMock) List(_ context.Context, query dto.ScheduleListQuery) ([]models.Schedule, *models.Pagination, error) {
	m.listQuery = query
	return []models.Schedule{{ID: "sch-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *scheduleServiceMock) Get(_ context.Context, id string) (*models.Schedule, error) {
	if id != "sch-1" {
		return nil, appErrors.ErrNotFound
	}
	return &models.Schedule{ID: id}, nil
}

func (m *scheduleServiceMock) Publish(_ context.Context, id string) (*models.Schedule, error) {
	return &models.Schedule{ID: id, Status: models.ScheduleStatusPublished}, nil
}

func (m *scheduleServiceMock) Delete(context.Context, string) error {
	return m.err
}

func (m *scheduleServiceMock) InstructorTimetable(_ context.Context, instructorID string) ([]models.InstructorTimetableEntry, bool, error) {
	return []models.InstructorTimetableEntry{{ScheduleEntry: models.ScheduleEntry{InstructorID: instructorID, Day: "Monday"}, ScheduleID: "sch-1"}}, m.timetableHit, nil
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func scheduleRouter(svc *scheduleServiceMock, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(svc)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(internalmiddleware.ContextUserKey, claims)
		}
		c.Next()
	}, internalmiddleware.WithResponseMeta())
	router.POST("/schedules/generate", h.Generate)
	router.POST("/schedules/generate-all", h.GenerateAll)
	router.GET("/schedules/jobs/:id", h.Job)
	router.GET("/schedules", h.List)
	router.GET("/schedules/instructor/:instructorId", h.InstructorTimetable)
	router.GET("/schedules/:id", h.Get)
	router.PATCH("/schedules/:id/publish", h.Publish)
	router.DELETE("/schedules/:id", h.Delete)
	return router
}

func serveJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScheduleHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &scheduleServiceMock{}
	handler := NewScheduleHandler(svc)
	body := `{"batchId":"b1","semesterId":"s1","section":"A","days":["Monday"],"morningShift":{"start":"08:00","end":"12:00"},"prioritySettings":{"majorCoursesShift":"afternoon"}}`
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", svc.generateReq.Section)
	assert.Equal(t, []string{"Monday"}, svc.generateReq.Days)
	require.NotNil(t, svc.generateReq.MorningShift)
	assert.Equal(t, "08:00", svc.generateReq.MorningShift.Start)
	assert.Nil(t, svc.generateReq.AfternoonShift)
	assert.Equal(t, "afternoon", svc.generateReq.PrioritySettings.MajorCoursesShift)
	assert.Contains(t, w.Body.String(), `"id":"sch-1"`)
}

func TestScheduleHandlerGenerateErrors(t *testing.T) {
	router := scheduleRouter(&scheduleServiceMock{}, nil)
	w := serveJSON(router, http.MethodPost, "/schedules/generate", `{"batchId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc := &scheduleServiceMock{err: appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses found for Batch b1, Semester s1")}
	router = scheduleRouter(svc, nil)
	w = serveJSON(router, http.MethodPost, "/schedules/generate", `{"batchId":"b1","semesterId":"s1","section":"A"}`)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PRECONDITION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Message, "no courses found")
}

func TestScheduleHandlerGenerateAllSyncAndAsync(t *testing.T) {
	svc := &scheduleServiceMock{}
	router := scheduleRouter(svc, nil)

	w := serveJSON(router, http.MethodPost, "/schedules/generate-all", `{"semesterId":"s1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.enqueued)

	w = serveJSON(router, http.MethodPost, "/schedules/generate-all?async=true", `{"semesterId":"s1"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, svc.enqueued)
	assert.Contains(t, w.Body.String(), `"status":"QUEUED"`)

	w = serveJSON(router, http.MethodGet, "/schedules/jobs/job-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"FINISHED"`)

	w = serveJSON(router, http.MethodGet, "/schedules/jobs/other", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerListGetPublishDelete(t *testing.T) {
	svc := &scheduleServiceMock{}
	router := scheduleRouter(svc, nil)

	w := serveJSON(router, http.MethodGet, "/schedules?semesterId=s1&status=draft&page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.listQuery.SemesterID)
	assert.Equal(t, "draft", svc.listQuery.Status)
	assert.Equal(t, 2, svc.listQuery.Page)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)

	w = serveJSON(router, http.MethodGet, "/schedules?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serveJSON(router, http.MethodGet, "/schedules/sch-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = serveJSON(router, http.MethodGet, "/schedules/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serveJSON(router, http.MethodPatch, "/schedules/sch-1/publish", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"published"`)

	w = serveJSON(router, http.MethodDelete, "/schedules/sch-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestScheduleHandlerInstructorTimetable(t *testing.T) {
	svc := &scheduleServiceMock{timetableHit: true}
	router := scheduleRouter(svc, &models.JWTClaims{UserID: "i1", Role: models.RoleInstructor})

	w := serveJSON(router, http.MethodGet, "/schedules/instructor/i1", "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"scheduleId":"sch-1"`)

	w = serveJSON(router, http.MethodGet, "/schedules/instructor/i2", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	router = scheduleRouter(svc, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	w = serveJSON(router, http.MethodGet, "/schedules/instructor/i2", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
