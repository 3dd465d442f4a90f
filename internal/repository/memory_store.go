package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

// MemoryStore is an in-process entity and schedule store. It preserves
// insertion order so generation over it is deterministic. Used by the CLI
// and by tests.
type MemoryStore struct {
	mu          sync.RWMutex
	batches     []models.Batch
	semesters   []models.Semester
	courses     []models.Course
	instructors []models.Instructor
	rooms       []models.Room
	schedules   []models.Schedule
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddBatches appends batches, assigning IDs where missing.
func (s *MemoryStore) AddBatches(batches ...models.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range batches {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		s.batches = append(s.batches, b)
	}
}

// AddSemesters appends semesters, assigning IDs where missing.
func (s *MemoryStore) AddSemesters(semesters ...models.Semester) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sem := range semesters {
		if sem.ID == "" {
			sem.ID = uuid.NewString()
		}
		s.semesters = append(s.semesters, sem)
	}
}

// AddInstructors appends instructors, assigning IDs where missing.
func (s *MemoryStore) AddInstructors(instructors ...models.Instructor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range instructors {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		s.instructors = append(s.instructors, in)
	}
}

// AddRooms appends rooms, assigning IDs where missing.
func (s *MemoryStore) AddRooms(rooms ...models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range rooms {
		if room.ID == "" {
			room.ID = uuid.NewString()
		}
		s.rooms = append(s.rooms, room)
	}
}

// FindAllBatches returns every batch in insertion order.
func (s *MemoryStore) FindAllBatches(context.Context) ([]models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Batch(nil), s.batches...), nil
}

// FindBatchByID returns sql.ErrNoRows when absent.
func (s *MemoryStore) FindBatchByID(_ context.Context, id string) (*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.batches {
		if b.ID == id {
			batch := b
			return &batch, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindSemesterByID returns sql.ErrNoRows when absent.
func (s *MemoryStore) FindSemesterByID(_ context.Context, id string) (*models.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sem := range s.semesters {
		if sem.ID == id {
			semester := sem
			return &semester, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindCourses filters by batch, semester and optional department.
func (s *MemoryStore) FindCourses(_ context.Context, filter models.CourseFilter) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Course
	for _, c := range s.courses {
		if c.BatchID != filter.BatchID || c.SemesterID != filter.SemesterID {
			continue
		}
		if filter.Department != "" && (c.Department == nil || *c.Department != filter.Department) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FindCourseByID returns sql.ErrNoRows when absent.
func (s *MemoryStore) FindCourseByID(_ context.Context, id string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.courses {
		if c.ID == id {
			course := c
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

// CourseCodeExists reports whether another course uses code.
func (s *MemoryStore) CourseCodeExists(_ context.Context, code, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.courses {
		if c.CourseCode == code && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// CreateCourse appends a course.
func (s *MemoryStore) CreateCourse(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	s.courses = append(s.courses, *course)
	return nil
}

// UpdateCourse replaces a course in place.
func (s *MemoryStore) UpdateCourse(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].ID == course.ID {
			course.UpdatedAt = time.Now().UTC()
			s.courses[i] = *course
			return nil
		}
	}
	return sql.ErrNoRows
}

// FindAllInstructors returns every instructor in insertion order.
func (s *MemoryStore) FindAllInstructors(context.Context) ([]models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Instructor(nil), s.instructors...), nil
}

// FindInstructorByID returns sql.ErrNoRows when absent.
func (s *MemoryStore) FindInstructorByID(_ context.Context, id string) (*models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, in := range s.instructors {
		if in.ID == id {
			instructor := in
			return &instructor, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindRooms filters by availability and an optional ID set.
func (s *MemoryStore) FindRooms(_ context.Context, filter models.RoomFilter) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed := make(map[string]struct{}, len(filter.IDs))
	for _, id := range filter.IDs {
		allowed[id] = struct{}{}
	}
	var out []models.Room
	for _, room := range s.rooms {
		if filter.OnlyAvailable && !room.IsAvailable {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[room.ID]; !ok {
				continue
			}
		}
		out = append(out, room)
	}
	return out, nil
}

// UpsertSchedule inserts or overwrites the schedule for key.
func (s *MemoryStore) UpsertSchedule(_ context.Context, key models.ScheduleKey, data models.ScheduleUpsert) (*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	detached := cloneSchedule(models.Schedule{Entries: data.Entries, Department: data.Department})
	entries := detached.Entries
	for i := range s.schedules {
		if s.schedules[i].Key() == key {
			s.schedules[i].Entries = entries
			s.schedules[i].Department = detached.Department
			s.schedules[i].Status = data.Status
			s.schedules[i].GeneratedAt = data.GeneratedAt
			s.schedules[i].UpdatedAt = now
			schedule := cloneSchedule(s.schedules[i])
			return &schedule, nil
		}
	}
	schedule := models.Schedule{
		ID:          uuid.NewString(),
		BatchID:     key.BatchID,
		SemesterID:  key.SemesterID,
		Section:     key.Section,
		Department:  detached.Department,
		Entries:     entries,
		Status:      data.Status,
		GeneratedAt: data.GeneratedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.schedules = append(s.schedules, schedule)
	schedule = cloneSchedule(schedule)
	return &schedule, nil
}

// FindScheduleByID returns sql.ErrNoRows when absent.
func (s *MemoryStore) FindScheduleByID(_ context.Context, id string) (*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sch := range s.schedules {
		if sch.ID == id {
			schedule := cloneSchedule(sch)
			return &schedule, nil
		}
	}
	return nil, sql.ErrNoRows
}

// ListSchedules filters and pages schedules, newest generation first.
func (s *MemoryStore) ListSchedules(_ context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	filter.Normalize()
	s.mu.RLock()
	var matched []models.Schedule
	for _, sch := range s.schedules {
		if filter.BatchID != "" && sch.BatchID != filter.BatchID {
			continue
		}
		if filter.SemesterID != "" && sch.SemesterID != filter.SemesterID {
			continue
		}
		if filter.Section != "" && sch.Section != filter.Section {
			continue
		}
		if filter.Status != "" && sch.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneSchedule(sch))
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].GeneratedAt.After(matched[j].GeneratedAt)
	})
	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// ListPublishedSchedulesByInstructor returns published schedules with an entry for instructorID.
func (s *MemoryStore) ListPublishedSchedulesByInstructor(_ context.Context, instructorID string) ([]models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Schedule
	for _, sch := range s.schedules {
		if sch.Status != models.ScheduleStatusPublished {
			continue
		}
		for _, entry := range sch.Entries {
			if entry.InstructorID == instructorID {
				out = append(out, cloneSchedule(sch))
				break
			}
		}
	}
	return out, nil
}

// cloneSchedule detaches the entries and department from the stored copy.
func cloneSchedule(sch models.Schedule) models.Schedule {
	sch.Entries = append(models.ScheduleEntries{}, sch.Entries...)
	if sch.Department != nil {
		department := *sch.Department
		sch.Department = &department
	}
	return sch
}

// UpdateScheduleStatus sets the status of a schedule.
func (s *MemoryStore) UpdateScheduleStatus(_ context.Context, id string, status models.ScheduleStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID == id {
			s.schedules[i].Status = status
			s.schedules[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return sql.ErrNoRows
}

// DeleteSchedule removes a schedule.
func (s *MemoryStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID == id {
			s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
