package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/service"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
)

type courseServiceMock struct {
	updatedID string
}

func (m *courseServiceMock) Create(_ context.Context, req dto.CourseRequest) (*models.Course, error) {
	if req.CourseCode == "DUP" {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code DUP already exists")
	}
	return &models.Course{ID: "c1", CourseCode: req.CourseCode, CreditHour: req.CreditHour, LectureHours: 2, LabHours: 3}, nil
}

func (m *courseServiceMock) Update(_ context.Context, id string, req dto.CourseRequest) (*models.Course, error) {
	m.updatedID = id
	return &models.Course{ID: id, CourseCode: req.CourseCode}, nil
}

func TestCourseHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &courseServiceMock{}
	h := NewCourseHandler(svc)
	router := gin.New()
	router.POST("/courses", h.Create)
	router.PUT("/courses/:id", h.Update)

	w := serveJSON(router, http.MethodPost, "/courses", `{"courseCode":"CS101","courseName":"Programming","creditHour":5,"majorOrCommon":"major","hasLab":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"labHours":3`)

	w = serveJSON(router, http.MethodPost, "/courses", `{"courseCode":"DUP"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serveJSON(router, http.MethodPost, "/courses", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serveJSON(router, http.MethodPut, "/courses/c9", `{"courseCode":"CS101"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c9", svc.updatedID)
}

type exporterMock struct {
	format models.ExportFormat
}

func (m *exporterMock) Export(_ context.Context, id string, format models.ExportFormat) (*service.ExportFile, error) {
	m.format = format
	switch {
	case id != "sch-1":
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	case format == "docx":
		return nil, appErrors.ErrUnsupportedFormat
	case format == "boom":
		return nil, errors.New("renderer exploded")
	}
	return &service.ExportFile{Filename: "schedule_b1_s1_A.csv", ContentType: "text/csv", Body: []byte("day,shift\n")}, nil
}

func TestExportHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &exporterMock{}
	h := NewExportHandler(svc)
	router := gin.New()
	router.GET("/export/schedule/:id/:format", h.Export)

	w := serveJSON(router, http.MethodGet, "/export/schedule/sch-1/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ExportFormatCSV, svc.format)
	assert.Equal(t, `attachment; filename="schedule_b1_s1_A.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "day,shift\n", w.Body.String())

	w = serveJSON(router, http.MethodGet, "/export/schedule/sch-1/docx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serveJSON(router, http.MethodGet, "/export/schedule/missing/csv", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serveJSON(router, http.MethodGet, "/export/schedule/sch-1/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
