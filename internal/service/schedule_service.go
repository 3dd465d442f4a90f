package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/scheduler"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
	"github.com/noah-isme/class-schedule-api/pkg/events"
)

type scheduleStore interface {
	UpsertSchedule(ctx context.Context, key models.ScheduleKey, data models.ScheduleUpsert) (*models.Schedule, error)
	FindScheduleByID(ctx context.Context, id string) (*models.Schedule, error)
	ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	ListPublishedSchedulesByInstructor(ctx context.Context, instructorID string) ([]models.Schedule, error)
	UpdateScheduleStatus(ctx context.Context, id string, status models.ScheduleStatus) error
	DeleteSchedule(ctx context.Context, id string) error
}

type scheduleScopeReader interface {
	FindBatchByID(ctx context.Context, id string) (*models.Batch, error)
	FindSemesterByID(ctx context.Context, id string) (*models.Semester, error)
}

type sectionGenerator interface {
	Generate(ctx context.Context, req scheduler.GenerationRequest) (*scheduler.Result, error)
}

type semesterGenerator interface {
	GenerateAll(ctx context.Context, req scheduler.MultiGenerationRequest) (*scheduler.MultiResult, error)
}

// ScheduleServiceConfig carries request defaults and lifecycle settings.
type ScheduleServiceConfig struct {
	Days           []string
	Morning        scheduler.ShiftWindow
	Afternoon      scheduler.ShiftWindow
	PeriodsPerDay  int
	TimetableTTL   time.Duration
	JobTTL         time.Duration
	GeneratedQueue string
	PublishedQueue string
}

// ScheduleService generates, stores and publishes section timetables.
type ScheduleService struct {
	store        scheduleStore
	scope        scheduleScopeReader
	engine       sectionGenerator
	orchestrator semesterGenerator
	publisher    events.Publisher
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          ScheduleServiceConfig
	jobs         *generationJobStore
	queue        jobEnqueuer
	now          func() time.Time
}

// NewScheduleService wires the schedule service. publisher, cache and metrics may be nil.
func NewScheduleService(
	store scheduleStore,
	scope scheduleScopeReader,
	engine sectionGenerator,
	orchestrator semesterGenerator,
	publisher events.Publisher,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleServiceConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if len(cfg.Days) == 0 {
		cfg.Days = models.DefaultDays
	}
	if !cfg.Morning.Offered() && !cfg.Afternoon.Offered() {
		cfg.Morning = scheduler.ShiftWindow{Start: "08:00", End: "12:00"}
		cfg.Afternoon = scheduler.ShiftWindow{Start: "13:00", End: "17:00"}
	}
	if cfg.PeriodsPerDay <= 0 {
		cfg.PeriodsPerDay = 2
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.GeneratedQueue == "" {
		cfg.GeneratedQueue = "schedule.generated"
	}
	if cfg.PublishedQueue == "" {
		cfg.PublishedQueue = "schedule.published"
	}

	svc := &ScheduleService{
		store:        store,
		scope:        scope,
		engine:       engine,
		orchestrator: orchestrator,
		publisher:    publisher,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		jobs:         newGenerationJobStore(cfg.JobTTL),
		now:          time.Now,
	}
	svc.validator.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != 5 {
			return false
		}
		minutes, err := scheduler.ParseClock(value)
		return err == nil && minutes < 24*60
	})
	return svc
}

// Generate places one section, stores the result as a draft and returns it
// with the run's diagnostics.
func (s *ScheduleService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	opts, err := s.resolveOptions(req.GenerationOptions)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSectionScope(ctx, req.BatchID, req.SemesterID, req.Section); err != nil {
		return nil, err
	}

	engineReq := opts.forSection(req.BatchID, req.SemesterID, req.Section)
	engineReq.Session = req.Session()

	start := s.now()
	result, err := s.engine.Generate(ctx, engineReq)
	if err != nil {
		s.metrics.ObserveGeneration(GenerationModeSection, time.Since(start), 0, 0, nil, err)
		return nil, mapGenerationError(err)
	}
	s.metrics.ObserveGeneration(GenerationModeSection, time.Since(start), len(result.Entries), len(result.Warnings), result.Conflicts, nil)

	key := models.ScheduleKey{BatchID: req.BatchID, SemesterID: req.SemesterID, Section: req.Section}
	schedule, err := s.saveDraft(ctx, key, req.Department, result.Entries, result.Conflicts, result.Warnings)
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule generated",
		zap.String("schedule_id", schedule.ID),
		zap.String("batch_id", key.BatchID),
		zap.String("semester_id", key.SemesterID),
		zap.String("section", key.Section),
		zap.Int("entries", len(result.Entries)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Int("warnings", len(result.Warnings)),
	)

	return &dto.GenerateScheduleResponse{
		Schedule:  schedule,
		Conflicts: result.Conflicts,
		Warnings:  result.Warnings,
	}, nil
}

// GenerateAll runs every section of every batch for a semester and stores
// each successful section as a draft.
func (s *ScheduleService) GenerateAll(ctx context.Context, req dto.GenerateAllSchedulesRequest) (*dto.GenerateAllSchedulesResponse, error) {
	if err := s.validateGenerateAll(ctx, req); err != nil {
		return nil, err
	}
	return s.generateAll(ctx, req)
}

func (s *ScheduleService) validateGenerateAll(ctx context.Context, req dto.GenerateAllSchedulesRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	if _, err := s.resolveOptions(req.GenerationOptions); err != nil {
		return err
	}
	if _, err := s.scope.FindSemesterByID(ctx, req.SemesterID); err != nil {
		return notFoundOr(err, "semester not found", "failed to load semester")
	}
	return nil
}

func (s *ScheduleService) generateAll(ctx context.Context, req dto.GenerateAllSchedulesRequest) (*dto.GenerateAllSchedulesResponse, error) {
	opts, err := s.resolveOptions(req.GenerationOptions)
	if err != nil {
		return nil, err
	}

	start := s.now()
	result, err := s.orchestrator.GenerateAll(ctx, opts.forSemester(req.SemesterID))
	if err != nil {
		s.metrics.ObserveGeneration(GenerationModeAll, time.Since(start), 0, 0, nil, err)
		return nil, mapGenerationError(err)
	}
	placed := 0
	for _, section := range result.Schedules {
		placed += len(section.Entries)
	}
	s.metrics.ObserveGeneration(GenerationModeAll, time.Since(start), placed, len(result.TotalWarnings), result.TotalConflicts, nil)

	resp := &dto.GenerateAllSchedulesResponse{
		Schedules:      make([]dto.SectionScheduleResponse, 0, len(result.Schedules)),
		TotalConflicts: result.TotalConflicts,
		TotalWarnings:  result.TotalWarnings,
	}
	for _, section := range result.Schedules {
		key := models.ScheduleKey{BatchID: section.BatchID, SemesterID: req.SemesterID, Section: section.Section}
		schedule, err := s.saveDraft(ctx, key, req.Department, section.Entries, section.Conflicts, section.Warnings)
		if err != nil {
			return nil, err
		}
		resp.Schedules = append(resp.Schedules, dto.SectionScheduleResponse{
			ScheduleID:  schedule.ID,
			BatchID:     section.BatchID,
			BatchNumber: section.BatchNumber,
			Section:     section.Section,
			Entries:     section.Entries,
			Conflicts:   section.Conflicts,
			Warnings:    section.Warnings,
		})
	}

	s.logger.Info("semester schedules generated",
		zap.String("semester_id", req.SemesterID),
		zap.Int("schedules", len(resp.Schedules)),
		zap.Int("conflicts", len(resp.TotalConflicts)),
		zap.Int("warnings", len(resp.TotalWarnings)),
	)
	return resp, nil
}

// List returns stored schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, query dto.ScheduleListQuery) ([]models.Schedule, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}
	filter := models.ScheduleFilter{
		BatchID:    query.BatchID,
		SemesterID: query.SemesterID,
		Section:    query.Section,
		Status:     models.ScheduleStatus(query.Status),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	filter.Normalize()

	schedules, total, err := s.store.ListSchedules(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}
	return schedules, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one stored schedule.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.store.FindScheduleByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "schedule not found", "failed to load schedule")
	}
	return schedule, nil
}

// Publish makes a draft visible. Publishing a published schedule is a no-op.
func (s *ScheduleService) Publish(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.Status == models.ScheduleStatusPublished {
		return schedule, nil
	}

	if err := s.store.UpdateScheduleStatus(ctx, id, models.ScheduleStatusPublished); err != nil {
		return nil, notFoundOr(err, "schedule not found", "failed to publish schedule")
	}
	schedule.Status = models.ScheduleStatusPublished
	publishedAt := s.now().UTC()
	schedule.UpdatedAt = publishedAt

	_ = s.cache.InvalidateInstructors(ctx, instructorIDs(schedule.Entries)...)
	s.emit(ctx, s.cfg.PublishedQueue, events.SchedulePublished{
		ScheduleID:  schedule.ID,
		BatchID:     schedule.BatchID,
		SemesterID:  schedule.SemesterID,
		Section:     schedule.Section,
		PublishedAt: publishedAt,
	})
	s.logger.Info("schedule published", zap.String("schedule_id", id))
	return schedule, nil
}

// Delete removes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		return notFoundOr(err, "schedule not found", "failed to delete schedule")
	}
	if schedule.Status == models.ScheduleStatusPublished {
		_ = s.cache.InvalidateInstructors(ctx, instructorIDs(schedule.Entries)...)
	}
	s.logger.Info("schedule deleted", zap.String("schedule_id", id))
	return nil
}

// InstructorTimetable returns every published entry taught by instructorID,
// ordered by day then start time. The bool reports a cache hit.
func (s *ScheduleService) InstructorTimetable(ctx context.Context, instructorID string) ([]models.InstructorTimetableEntry, bool, error) {
	if instructorID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "instructorId is required")
	}

	key := InstructorTimetableKey(instructorID)
	var cached []models.InstructorTimetableEntry
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	schedules, err := s.store.ListPublishedSchedulesByInstructor(ctx, instructorID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor timetable")
	}

	timetable := make([]models.InstructorTimetableEntry, 0)
	for _, schedule := range schedules {
		for _, entry := range schedule.Entries {
			if entry.InstructorID != instructorID {
				continue
			}
			timetable = append(timetable, models.InstructorTimetableEntry{
				ScheduleEntry: entry,
				ScheduleID:    schedule.ID,
				BatchID:       schedule.BatchID,
				SemesterID:    schedule.SemesterID,
				Section:       schedule.Section,
			})
		}
	}

	rank := dayRank(s.cfg.Days)
	sort.SliceStable(timetable, func(i, j int) bool {
		a, b := timetable[i], timetable[j]
		if rank(a.Day) != rank(b.Day) {
			return rank(a.Day) < rank(b.Day)
		}
		return scheduler.TimeToMinutes(a.StartTime) < scheduler.TimeToMinutes(b.StartTime)
	})

	_ = s.cache.Set(ctx, key, timetable, s.cfg.TimetableTTL)
	return timetable, false, nil
}

func (s *ScheduleService) ensureSectionScope(ctx context.Context, batchID, semesterID, section string) error {
	batch, err := s.scope.FindBatchByID(ctx, batchID)
	if err != nil {
		return notFoundOr(err, "batch not found", "failed to load batch")
	}
	if len(batch.Sections) > 0 && !batch.HasSection(section) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("section %s is not defined for batch %s", section, batch.BatchNumber))
	}
	semester, err := s.scope.FindSemesterByID(ctx, semesterID)
	if err != nil {
		return notFoundOr(err, "semester not found", "failed to load semester")
	}
	if semester.BatchID != "" && semester.BatchID != batch.ID {
		return appErrors.Clone(appErrors.ErrValidation, "semester does not belong to batch")
	}
	return nil
}

func (s *ScheduleService) saveDraft(ctx context.Context, key models.ScheduleKey, department string, entries []models.ScheduleEntry, conflicts []models.Conflict, warnings []string) (*models.Schedule, error) {
	var dept *string
	if department != "" {
		dept = &department
	}
	generatedAt := s.now().UTC()
	schedule, err := s.store.UpsertSchedule(ctx, key, models.ScheduleUpsert{
		Entries:     entries,
		Department:  dept,
		Status:      models.ScheduleStatusDraft,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}

	// a regenerated schedule may have been published; its old entries are gone
	_ = s.cache.InvalidateAllTimetables(ctx)
	s.emit(ctx, s.cfg.GeneratedQueue, events.ScheduleGenerated{
		ScheduleID:  schedule.ID,
		BatchID:     key.BatchID,
		SemesterID:  key.SemesterID,
		Section:     key.Section,
		Entries:     len(entries),
		Conflicts:   len(conflicts),
		Warnings:    len(warnings),
		GeneratedAt: generatedAt,
	})
	return schedule, nil
}

func (s *ScheduleService) emit(ctx context.Context, queue string, event interface{}) {
	if err := s.publisher.Publish(ctx, queue, event); err != nil {
		s.logger.Warn("schedule event not published", zap.String("queue", queue), zap.Error(err))
	}
}

// generationOptions are request options with defaults applied.
type generationOptions struct {
	department      string
	days            []string
	morning         scheduler.ShiftWindow
	afternoon       scheduler.ShiftWindow
	periodsPerDay   int
	selectedRoomIDs []string
	priority        *scheduler.PrioritySettings
}

func (o generationOptions) forSection(batchID, semesterID, section string) scheduler.GenerationRequest {
	return scheduler.GenerationRequest{
		BatchID:         batchID,
		SemesterID:      semesterID,
		Section:         section,
		Department:      o.department,
		Days:            o.days,
		MorningShift:    o.morning,
		AfternoonShift:  o.afternoon,
		PeriodsPerDay:   o.periodsPerDay,
		SelectedRoomIDs: o.selectedRoomIDs,
		Priority:        o.priority,
	}
}

func (o generationOptions) forSemester(semesterID string) scheduler.MultiGenerationRequest {
	return scheduler.MultiGenerationRequest{
		SemesterID:      semesterID,
		Department:      o.department,
		Days:            o.days,
		MorningShift:    o.morning,
		AfternoonShift:  o.afternoon,
		PeriodsPerDay:   o.periodsPerDay,
		SelectedRoomIDs: o.selectedRoomIDs,
		Priority:        o.priority,
	}
}

func (s *ScheduleService) resolveOptions(req dto.GenerationOptions) (generationOptions, error) {
	opts := generationOptions{
		department:      req.Department,
		days:            req.Days,
		morning:         s.cfg.Morning,
		afternoon:       s.cfg.Afternoon,
		periodsPerDay:   req.PeriodsPerDay,
		selectedRoomIDs: req.SelectedRoomIDs,
	}
	if len(opts.days) == 0 {
		opts.days = s.cfg.Days
	}
	if opts.periodsPerDay <= 0 {
		opts.periodsPerDay = s.cfg.PeriodsPerDay
	}
	if req.MorningShift != nil {
		opts.morning = scheduler.ShiftWindow{Start: req.MorningShift.Start, End: req.MorningShift.End}
	}
	if req.AfternoonShift != nil {
		opts.afternoon = scheduler.ShiftWindow{Start: req.AfternoonShift.Start, End: req.AfternoonShift.End}
	}
	windows := []struct {
		name   string
		window scheduler.ShiftWindow
	}{{"morningShift", opts.morning}, {"afternoonShift", opts.afternoon}}
	for _, w := range windows {
		if !w.window.Offered() {
			continue
		}
		if w.window.End == "" || scheduler.TimeToMinutes(w.window.End) <= scheduler.TimeToMinutes(w.window.Start) {
			return generationOptions{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s end must be after start", w.name))
		}
	}
	if !opts.morning.Offered() && !opts.afternoon.Offered() {
		return generationOptions{}, appErrors.Clone(appErrors.ErrValidation, "at least one shift must be offered")
	}

	if p := req.PrioritySettings; p != nil && (p.MajorCoursesShift != "" || p.CommonCoursesShift != "") {
		opts.priority = &scheduler.PrioritySettings{
			MajorCoursesShift:  models.Shift(p.MajorCoursesShift),
			CommonCoursesShift: models.Shift(p.CommonCoursesShift),
		}
	}
	return opts, nil
}

func mapGenerationError(err error) error {
	switch {
	case errors.Is(err, scheduler.ErrNoCoursesFound),
		errors.Is(err, scheduler.ErrNoInstructors),
		errors.Is(err, scheduler.ErrNoAvailableRooms),
		errors.Is(err, scheduler.ErrNoClassrooms):
		return appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate schedule")
	}
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

func instructorIDs(entries []models.ScheduleEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	var ids []string
	for _, entry := range entries {
		if _, ok := seen[entry.InstructorID]; ok || entry.InstructorID == "" {
			continue
		}
		seen[entry.InstructorID] = struct{}{}
		ids = append(ids, entry.InstructorID)
	}
	return ids
}

func dayRank(days []string) func(string) int {
	order := make(map[string]int, len(days)+7)
	for i, d := range days {
		order[d] = i
	}
	for i, d := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		if _, ok := order[d]; !ok {
			order[d] = len(days) + i
		}
	}
	return func(day string) int {
		if r, ok := order[day]; ok {
			return r
		}
		return len(order)
	}
}
