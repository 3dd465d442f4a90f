package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/models"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
	"github.com/noah-isme/class-schedule-api/pkg/export"
)

type scheduleReader interface {
	FindScheduleByID(ctx context.Context, id string) (*models.Schedule, error)
}

type timetableRenderer interface {
	Render(t export.Timetable) ([]byte, error)
}

// ExportFile is a rendered schedule ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders stored schedules as CSV, PDF, XLSX or JSON.
type ExportService struct {
	schedules scheduleReader
	scope     scheduleScopeReader
	renderers map[models.ExportFormat]timetableRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the default renderers.
// scope is optional and only used to print batch and semester names.
func NewExportService(schedules scheduleReader, scope scheduleScopeReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedules: schedules,
		scope:     scope,
		renderers: map[models.ExportFormat]timetableRenderer{
			models.ExportFormatCSV:  export.NewCSVExporter(),
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
	}
}

var exportContentTypes = map[models.ExportFormat]string{
	models.ExportFormatCSV:  "text/csv",
	models.ExportFormatPDF:  "application/pdf",
	models.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	models.ExportFormatJSON: "application/json",
}

// Export renders schedule id in format.
func (s *ExportService) Export(ctx context.Context, id string, format models.ExportFormat) (*ExportFile, error) {
	format = models.ExportFormat(strings.ToLower(string(format)))
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	schedule, err := s.schedules.FindScheduleByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "schedule not found", "failed to load schedule")
	}

	var body []byte
	if format == models.ExportFormatJSON {
		body, err = json.MarshalIndent(schedule, "", "  ")
	} else {
		body, err = s.renderers[format].Render(s.timetable(ctx, schedule))
	}
	if err != nil {
		s.logger.Error("schedule export failed", zap.String("schedule_id", id), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule")
	}

	return &ExportFile{
		Filename:    exportFilename(schedule, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *ExportService) timetable(ctx context.Context, schedule *models.Schedule) export.Timetable {
	batchLabel, semesterLabel := schedule.BatchID, schedule.SemesterID
	if s.scope != nil {
		if batch, err := s.scope.FindBatchByID(ctx, schedule.BatchID); err == nil {
			batchLabel = batch.BatchNumber
		}
		if semester, err := s.scope.FindSemesterByID(ctx, schedule.SemesterID); err == nil && semester.Name != "" {
			semesterLabel = semester.Name
		}
	}

	subtitle := fmt.Sprintf("%s | Status: %s | Generated: %s", semesterLabel, schedule.Status, schedule.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	if schedule.Department != nil && *schedule.Department != "" {
		subtitle = *schedule.Department + " | " + subtitle
	}

	entries := append([]models.ScheduleEntry(nil), schedule.Entries...)
	rank := dayRank(models.DefaultDays)
	sort.SliceStable(entries, func(i, j int) bool {
		if rank(entries[i].Day) != rank(entries[j].Day) {
			return rank(entries[i].Day) < rank(entries[j].Day)
		}
		return entries[i].StartTime < entries[j].StartTime
	})

	days := append([]string(nil), models.DefaultDays...)
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		seen[d] = struct{}{}
	}
	rows := make([]export.Row, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Day]; !ok {
			seen[e.Day] = struct{}{}
			days = append(days, e.Day)
		}
		session := "Lecture"
		if e.IsLab {
			session = "Lab"
		}
		rows = append(rows, export.Row{
			Day:        e.Day,
			Shift:      string(e.Shift),
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			CourseCode: e.CourseCode,
			CourseName: e.CourseName,
			Instructor: e.InstructorName,
			Room:       e.RoomNumber,
			Session:    session,
		})
	}

	return export.Timetable{
		Title:    fmt.Sprintf("Class Schedule - Batch %s, Section %s", batchLabel, schedule.Section),
		Subtitle: subtitle,
		Days:     days,
		Rows:     rows,
	}
}

func exportFilename(schedule *models.Schedule, format models.ExportFormat) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-")
	return fmt.Sprintf("schedule_%s_%s_%s.%s",
		replacer.Replace(schedule.BatchID),
		replacer.Replace(schedule.SemesterID),
		replacer.Replace(schedule.Section),
		format,
	)
}
