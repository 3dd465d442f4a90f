package scheduler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

// Precondition failures. Generate returns them wrapped, so match with errors.Is.
var (
	ErrNoCoursesFound   = errors.New("no courses found")
	ErrNoInstructors    = errors.New("no instructors found")
	ErrNoAvailableRooms = errors.New("no available rooms found")
	ErrNoClassrooms     = errors.New("no classroom rooms available")
)

// Store is the read surface the engine needs from the entity store.
type Store interface {
	FindCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindAllInstructors(ctx context.Context) ([]models.Instructor, error)
	FindRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
}

// ShiftWindow is a half-day window. An empty Start means the shift is not offered.
type ShiftWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Offered reports whether the window can receive classes.
func (w ShiftWindow) Offered() bool {
	return w.Start != ""
}

// PrioritySettings overrides the preferred shift per course classification.
type PrioritySettings struct {
	MajorCoursesShift  models.Shift `json:"majorCoursesShift"`
	CommonCoursesShift models.Shift `json:"commonCoursesShift"`
}

// SessionOptions are accepted on the wire but not used for placement.
type SessionOptions struct {
	SessionType         string         `json:"sessionType,omitempty"`
	SessionClassCount   map[string]int `json:"sessionClassCount,omitempty"`
	SingleSessionOnly   bool           `json:"singleSessionOnly,omitempty"`
	SingleSessionConfig map[string]any `json:"singleSessionConfig,omitempty"`
}

func (o *SessionOptions) present() bool {
	if o == nil {
		return false
	}
	return o.SessionType != "" || len(o.SessionClassCount) > 0 || o.SingleSessionOnly || len(o.SingleSessionConfig) > 0
}

// GenerationRequest scopes a single-section generation run.
type GenerationRequest struct {
	BatchID         string
	SemesterID      string
	Section         string
	Department      string
	Days            []string
	MorningShift    ShiftWindow
	AfternoonShift  ShiftWindow
	PeriodsPerDay   int
	SelectedRoomIDs []string
	Priority        *PrioritySettings
	Session         *SessionOptions
}

// Result is the output of a generation run.
type Result struct {
	Entries   []models.ScheduleEntry `json:"entries"`
	Conflicts []models.Conflict      `json:"conflicts"`
	Warnings  []string               `json:"warnings"`
}

// Engine places courses for one (batch, semester, section) at a time.
type Engine struct {
	store  Store
	logger *zap.Logger
}

// NewEngine wires the engine to its entity store.
func NewEngine(store Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// Generate fetches a snapshot of the catalog and greedily places every course.
// Per-course problems become warnings or conflicts; only missing inputs fail.
func (e *Engine) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	courses, err := e.store.FindCourses(ctx, models.CourseFilter{
		BatchID:    req.BatchID,
		SemesterID: req.SemesterID,
		Department: req.Department,
	})
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	if len(courses) == 0 {
		scope := fmt.Sprintf("Batch %s, Semester %s", req.BatchID, req.SemesterID)
		if req.Department != "" {
			scope += ", Department " + req.Department
		}
		return nil, fmt.Errorf("%w for %s", ErrNoCoursesFound, scope)
	}

	instructors, err := e.store.FindAllInstructors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instructors: %w", err)
	}
	if len(instructors) == 0 {
		return nil, ErrNoInstructors
	}

	rooms, err := e.store.FindRooms(ctx, models.RoomFilter{OnlyAvailable: true, IDs: req.SelectedRoomIDs})
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	if len(rooms) == 0 {
		return nil, ErrNoAvailableRooms
	}

	var classrooms, labs []models.Room
	for _, room := range rooms {
		switch room.RoomType {
		case models.RoomClassroom:
			classrooms = append(classrooms, room)
		case models.RoomLab:
			labs = append(labs, room)
		}
	}
	if len(classrooms) == 0 {
		return nil, ErrNoClassrooms
	}

	days := req.Days
	if len(days) == 0 {
		days = models.DefaultDays
	}

	state := newPlacementState(days, req.MorningShift, req.AfternoonShift, courses, instructors, classrooms, labs)
	if req.Session.present() {
		state.warn("Ignored unsupported session options")
	}

	majorShift, commonShift := models.ShiftMorning, models.ShiftAfternoon
	if req.Priority != nil {
		if req.Priority.MajorCoursesShift.Valid() {
			majorShift = req.Priority.MajorCoursesShift
		}
		if req.Priority.CommonCoursesShift.Valid() {
			commonShift = req.Priority.CommonCoursesShift
		}
	}

	var majors, commons []models.Course
	for _, course := range courses {
		switch course.Classification {
		case models.CourseMajor:
			majors = append(majors, course)
		case models.CourseCommon:
			commons = append(commons, course)
		}
	}

	state.runQueue(majors, majorShift)
	state.runQueue(commons, commonShift)

	e.logger.Debug("schedule generated",
		zap.String("batch_id", req.BatchID),
		zap.String("semester_id", req.SemesterID),
		zap.String("section", req.Section),
		zap.Int("courses", len(courses)),
		zap.Int("entries", len(state.entries)),
		zap.Int("conflicts", len(state.conflicts)),
		zap.Int("warnings", len(state.warnings)),
	)

	return state.result(), nil
}
