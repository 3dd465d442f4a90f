package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/service"
	"github.com/noah-isme/class-schedule-api/pkg/response"
)

type scheduleExporter interface {
	Export(ctx context.Context, id string, format models.ExportFormat) (*service.ExportFile, error)
}

// ExportHandler streams stored schedules as files.
type ExportHandler struct {
	service scheduleExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc scheduleExporter) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download a schedule
// @Tags Export
// @Produce application/pdf
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/json
// @Param id path string true "Schedule ID"
// @Param format path string true "pdf, csv, xlsx or json"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export/schedule/{id}/{format} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), models.ExportFormat(c.Param("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
