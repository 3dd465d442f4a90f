package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/middleware"
	"github.com/noah-isme/class-schedule-api/internal/models"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
	"github.com/noah-isme/class-schedule-api/pkg/response"
)

type scheduleService interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	GenerateAll(ctx context.Context, req dto.GenerateAllSchedulesRequest) (*dto.GenerateAllSchedulesResponse, error)
	EnqueueGenerateAll(ctx context.Context, req dto.GenerateAllSchedulesRequest) (*models.GenerationJob, error)
	GetJob(ctx context.Context, id string) (*models.GenerationJob, error)
	List(ctx context.Context, query dto.ScheduleListQuery) ([]models.Schedule, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Publish(ctx context.Context, id string) (*models.Schedule, error)
	Delete(ctx context.Context, id string) error
	InstructorTimetable(ctx context.Context, instructorID string) ([]models.InstructorTimetableEntry, bool, error)
}

// ScheduleHandler exposes schedule generation and lifecycle endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Generate godoc
// @Summary Generate the timetable of one section
// @Description Places every course of the batch and semester, stores the result as a draft and returns its conflicts and warnings.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// GenerateAll godoc
// @Summary Generate every section of every batch for a semester
// @Description With async=true the run is queued and a job is returned with 202.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param async query bool false "Queue the run"
// @Param payload body dto.GenerateAllSchedulesRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /schedules/generate-all [post]
func (h *ScheduleHandler) GenerateAll(c *gin.Context) {
	var req dto.GenerateAllSchedulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		job, err := h.service.EnqueueGenerateAll(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, job)
		return
	}

	result, err := h.service.GenerateAll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Job godoc
// @Summary Get an asynchronous generation job
// @Tags Schedules
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/jobs/{id} [get]
func (h *ScheduleHandler) Job(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// List godoc
// @Summary List stored schedules
// @Tags Schedules
// @Produce json
// @Param batchId query string false "Batch ID"
// @Param semesterId query string false "Semester ID"
// @Param section query string false "Section"
// @Param status query string false "draft or published"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var query dto.ScheduleListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	schedules, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get a stored schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Publish godoc
// @Summary Publish a draft schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/publish [patch]
func (h *ScheduleHandler) Publish(c *gin.Context) {
	schedule, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a schedule
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// InstructorTimetable godoc
// @Summary Published timetable of one instructor
// @Description Instructors may only read their own timetable.
// @Tags Schedules
// @Produce json
// @Param instructorId path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /schedules/instructor/{instructorId} [get]
func (h *ScheduleHandler) InstructorTimetable(c *gin.Context) {
	instructorID := c.Param("instructorId")
	if claims := middleware.CurrentClaims(c); claims != nil && claims.Role == models.RoleInstructor && claims.UserID != instructorID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructors may only view their own timetable"))
		return
	}

	timetable, hit, err := h.service.InstructorTimetable(c.Request.Context(), instructorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, timetable, nil, middleware.ExtractMeta(c))
}
