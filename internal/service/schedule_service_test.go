package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/repository"
	"github.com/noah-isme/class-schedule-api/internal/scheduler"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
	"github.com/noah-isme/class-schedule-api/pkg/events"
	"github.com/noah-isme/class-schedule-api/pkg/jobs"
)

type recordedEvent struct {
	queue string
	event interface{}
}

type publisherStub struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *publisherStub) Publish(_ context.Context, queue string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{queue: queue, event: event})
	return p.err
}

func (p *publisherStub) Close() error { return nil }

func (p *publisherStub) count(queue string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.queue == queue {
			n++
		}
	}
	return n
}

type cacheRepoStub struct {
	mu      sync.Mutex
	items   map[string][]byte
	deleted []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{items: map[string][]byte{}}
}

func (c *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheRepoStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *cacheRepoStub) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string][]byte{}
	c.deleted = append(c.deleted, pattern)
	return nil
}

type scheduleFixture struct {
	store     *repository.MemoryStore
	publisher *publisherStub
	cacheRepo *cacheRepoStub
	metrics   *MetricsService
	svc       *ScheduleService
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	store.AddBatches(models.Batch{ID: "b1", BatchNumber: "2018", NumberOfYears: 4, Sections: []string{"A"}})
	store.AddSemesters(models.Semester{ID: "s1", BatchID: "b1", SemesterNumber: 1, Name: "Semester I"})
	store.AddInstructors(
		models.Instructor{ID: "i1", FullName: "Dr Ada", StaffID: "ST-1", MaxTeachingLoad: 12},
		models.Instructor{ID: "i2", FullName: "Dr Bob", StaffID: "ST-2", MaxTeachingLoad: 12},
	)
	store.AddRooms(
		models.Room{ID: "r1", RoomNumber: "R101", RoomType: models.RoomClassroom, Capacity: 40, IsAvailable: true},
		models.Room{ID: "r2", RoomNumber: "R102", RoomType: models.RoomClassroom, Capacity: 40, IsAvailable: true},
		models.Room{ID: "lab1", RoomNumber: "LAB-1", RoomType: models.RoomLab, Capacity: 30, IsAvailable: true},
	)

	ctx := context.Background()
	for i, instructor := range []string{"i1", "i2", "i1"} {
		course := &models.Course{
			CourseCode:     fmt.Sprintf("CS10%d", i+1),
			CourseName:     fmt.Sprintf("Course %d", i+1),
			CreditHour:     3,
			Classification: models.CourseMajor,
			BatchID:        "b1",
			SemesterID:     "s1",
			InstructorID:   instructor,
		}
		course.ApplyDerivedHours()
		require.NoError(t, store.CreateCourse(ctx, course))
	}

	engine := scheduler.NewEngine(store, nil)
	publisher := &publisherStub{}
	cacheRepo := newCacheRepoStub()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, nil, true)
	svc := NewScheduleService(store, store, engine, scheduler.NewOrchestrator(engine, store, nil), publisher, cache, metrics, nil, nil, ScheduleServiceConfig{})

	return &scheduleFixture{store: store, publisher: publisher, cacheRepo: cacheRepo, metrics: metrics, svc: svc}
}

func generateRequest() dto.GenerateScheduleRequest {
	return dto.GenerateScheduleRequest{BatchID: "b1", SemesterID: "s1", Section: "A"}
}

func requireAppError(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestScheduleServiceGenerateStoresDraft(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Generate(ctx, generateRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Schedule)
	assert.Equal(t, models.ScheduleStatusDraft, resp.Schedule.Status)
	assert.Len(t, resp.Schedule.Entries, 3)
	assert.Empty(t, resp.Conflicts)
	assert.Empty(t, resp.Warnings)
	for _, entry := range resp.Schedule.Entries {
		assert.Equal(t, models.ShiftMorning, entry.Shift)
		assert.Equal(t, "08:00", entry.StartTime)
		assert.Equal(t, "11:00", entry.EndTime)
	}
	assert.Equal(t, 1, f.publisher.count("schedule.generated"))
	assert.Equal(t, uint64(1), f.metrics.Snapshot().GenerationsTotal)
}

func TestScheduleServiceRegenerationOverwritesPublished(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	first, err := f.svc.Generate(ctx, generateRequest())
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, first.Schedule.ID)
	require.NoError(t, err)

	second, err := f.svc.Generate(ctx, generateRequest())
	require.NoError(t, err)
	assert.Equal(t, first.Schedule.ID, second.Schedule.ID)
	assert.Equal(t, models.ScheduleStatusDraft, second.Schedule.Status)
	assert.False(t, second.Schedule.GeneratedAt.Before(first.Schedule.GeneratedAt))

	list, pagination, err := f.svc.List(ctx, dto.ScheduleListQuery{SemesterID: "s1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 20, pagination.PageSize)
}

func TestScheduleServiceMapsPreconditionFailures(t *testing.T) {
	f := newScheduleFixture(t)
	f.store.AddBatches(models.Batch{ID: "b2", BatchNumber: "2019", Sections: []string{"A"}})
	f.store.AddSemesters(models.Semester{ID: "s2", BatchID: "b2", SemesterNumber: 1})

	_, err := f.svc.Generate(context.Background(), dto.GenerateScheduleRequest{BatchID: "b2", SemesterID: "s2", Section: "A"})
	requireAppError(t, err, appErrors.ErrPreconditionFailed.Code)
	assert.True(t, errors.Is(err, scheduler.ErrNoCoursesFound))
	assert.Contains(t, err.Error(), "Batch b2, Semester s2")
	assert.Equal(t, uint64(1), f.metrics.Snapshot().GenerationFailures)
}

func TestScheduleServiceGenerateValidation(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.GenerateScheduleRequest
		code string
	}{
		{"missing section", dto.GenerateScheduleRequest{BatchID: "b1", SemesterID: "s1"}, appErrors.ErrValidation.Code},
		{"malformed clock", func() dto.GenerateScheduleRequest {
			r := generateRequest()
			r.MorningShift = &dto.ShiftWindowRequest{Start: "8:00", End: "12:00"}
			return r
		}(), appErrors.ErrValidation.Code},
		{"end before start", func() dto.GenerateScheduleRequest {
			r := generateRequest()
			r.MorningShift = &dto.ShiftWindowRequest{Start: "12:00", End: "08:00"}
			return r
		}(), appErrors.ErrValidation.Code},
		{"no shift offered", func() dto.GenerateScheduleRequest {
			r := generateRequest()
			r.MorningShift = &dto.ShiftWindowRequest{}
			r.AfternoonShift = &dto.ShiftWindowRequest{}
			return r
		}(), appErrors.ErrValidation.Code},
		{"bad priority", func() dto.GenerateScheduleRequest {
			r := generateRequest()
			r.PrioritySettings = &dto.PrioritySettingsRequest{MajorCoursesShift: "evening"}
			return r
		}(), appErrors.ErrValidation.Code},
		{"unknown section", dto.GenerateScheduleRequest{BatchID: "b1", SemesterID: "s1", Section: "Z"}, appErrors.ErrValidation.Code},
		{"unknown batch", dto.GenerateScheduleRequest{BatchID: "nope", SemesterID: "s1", Section: "A"}, appErrors.ErrNotFound.Code},
		{"unknown semester", dto.GenerateScheduleRequest{BatchID: "b1", SemesterID: "nope", Section: "A"}, appErrors.ErrNotFound.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Generate(ctx, tc.req)
			requireAppError(t, err, tc.code)
		})
	}
}

func TestScheduleServiceHonoursRequestOptions(t *testing.T) {
	f := newScheduleFixture(t)
	req := generateRequest()
	req.Days = []string{"Monday"}
	req.MorningShift = &dto.ShiftWindowRequest{Start: "07:30", End: "11:30"}
	req.SingleSessionOnly = true

	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	// one day with two shifts holds two of the three courses
	assert.Len(t, resp.Schedule.Entries, 2)
	assert.Equal(t, "07:30", resp.Schedule.Entries[0].StartTime)
	assert.Equal(t, models.ShiftAfternoon, resp.Schedule.Entries[1].Shift)
	assert.Contains(t, resp.Warnings, "Ignored unsupported session options")
}

func TestScheduleServicePublishIsIdempotent(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	resp, err := f.svc.Generate(ctx, generateRequest())
	require.NoError(t, err)

	published, err := f.svc.Publish(ctx, resp.Schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusPublished, published.Status)

	again, err := f.svc.Publish(ctx, resp.Schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusPublished, again.Status)
	assert.Equal(t, 1, f.publisher.count("schedule.published"))

	_, err = f.svc.Publish(ctx, "missing")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestScheduleServiceInstructorTimetableUsesCache(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	resp, err := f.svc.Generate(ctx, generateRequest())
	require.NoError(t, err)

	timetable, hit, err := f.svc.InstructorTimetable(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, timetable, "drafts are not visible")

	_, err = f.svc.Publish(ctx, resp.Schedule.ID)
	require.NoError(t, err)
	assert.Contains(t, f.cacheRepo.deleted, InstructorTimetableKey("i1"))

	timetable, hit, err = f.svc.InstructorTimetable(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, timetable, 2)
	assert.Equal(t, resp.Schedule.ID, timetable[0].ScheduleID)
	assert.Equal(t, "A", timetable[0].Section)
	assert.Equal(t, "Monday", timetable[0].Day)
	assert.Equal(t, "Wednesday", timetable[1].Day)

	cached, hit, err := f.svc.InstructorTimetable(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, timetable, cached)
}

func TestScheduleServiceDelete(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	resp, err := f.svc.Generate(ctx, generateRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, resp.Schedule.ID))
	_, err = f.svc.Get(ctx, resp.Schedule.ID)
	requireAppError(t, err, appErrors.ErrNotFound.Code)
	requireAppError(t, f.svc.Delete(ctx, resp.Schedule.ID), appErrors.ErrNotFound.Code)
}

func addSecondBatchSharingInstructor(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	store.AddBatches(models.Batch{ID: "b2", BatchNumber: "2019", Sections: []string{"A"}})
	course := &models.Course{CourseCode: "CS201", CourseName: "Algorithms", CreditHour: 3, Classification: models.CourseMajor, BatchID: "b2", SemesterID: "s1", InstructorID: "i1"}
	course.ApplyDerivedHours()
	require.NoError(t, store.CreateCourse(context.Background(), course))
}

func TestScheduleServiceGenerateAllStoresEverySection(t *testing.T) {
	f := newScheduleFixture(t)
	addSecondBatchSharingInstructor(t, f.store)

	resp, err := f.svc.GenerateAll(context.Background(), dto.GenerateAllSchedulesRequest{SemesterID: "s1"})
	require.NoError(t, err)
	require.Len(t, resp.Schedules, 2)
	for _, section := range resp.Schedules {
		assert.NotEmpty(t, section.ScheduleID)
	}

	var sectionConflicts int
	for _, c := range resp.TotalConflicts {
		if c.Type == models.ConflictSection {
			sectionConflicts++
		}
	}
	assert.Equal(t, 1, sectionConflicts)

	_, total, err := f.store.ListSchedules(context.Background(), models.ScheduleFilter{SemesterID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, f.publisher.count("schedule.generated"))
}

func TestScheduleServiceAsyncGenerateAll(t *testing.T) {
	f := newScheduleFixture(t)
	addSecondBatchSharingInstructor(t, f.store)

	_, err := f.svc.EnqueueGenerateAll(context.Background(), dto.GenerateAllSchedulesRequest{SemesterID: "s1"})
	requireAppError(t, err, appErrors.ErrPreconditionFailed.Code)

	queue := jobs.NewQueue("generation", f.svc.HandleGenerationJob, jobs.QueueConfig{
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
		OnExhausted: f.svc.OnJobExhausted,
	})
	queue.Start(context.Background())
	defer queue.Stop()
	f.svc.AttachQueue(queue)

	_, err = f.svc.EnqueueGenerateAll(context.Background(), dto.GenerateAllSchedulesRequest{SemesterID: "missing"})
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	job, err := f.svc.EnqueueGenerateAll(context.Background(), dto.GenerateAllSchedulesRequest{SemesterID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, models.GenerationJobQueued, job.Status)

	require.Eventually(t, func() bool {
		current, err := f.svc.GetJob(context.Background(), job.ID)
		return err == nil && current.Status == models.GenerationJobFinished
	}, 2*time.Second, 10*time.Millisecond)

	finished, err := f.svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Len(t, finished.ScheduleIDs, 2)
	assert.Len(t, finished.Conflicts, 1)
	assert.NotNil(t, finished.FinishedAt)
	assert.Equal(t, 1, finished.Attempts)

	_, err = f.svc.GetJob(context.Background(), "unknown")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestScheduleServiceEventFailureDoesNotFailGeneration(t *testing.T) {
	f := newScheduleFixture(t)
	f.publisher.err = errors.New("broker down")

	resp, err := f.svc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Schedule.ID)
}

var _ events.Publisher = (*publisherStub)(nil)

type fullQueue struct{}

func (fullQueue) Enqueue(job jobs.Job) error {
	return fmt.Errorf("queue generation: %w", jobs.ErrQueueFull)
}

func TestScheduleServiceEnqueueRejectsWhenQueueFull(t *testing.T) {
	f := newScheduleFixture(t)
	f.svc.AttachQueue(fullQueue{})

	_, err := f.svc.EnqueueGenerateAll(context.Background(), dto.GenerateAllSchedulesRequest{SemesterID: "s1"})
	appErr := requireAppError(t, err, appErrors.ErrUnavailable.Code)
	assert.Equal(t, 503, appErr.Status)
	assert.ErrorIs(t, err, jobs.ErrQueueFull)
}
