package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Shift is a named half-day window.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
)

// Opposite returns the other shift of the day.
func (s Shift) Opposite() Shift {
	if s == ShiftMorning {
		return ShiftAfternoon
	}
	return ShiftMorning
}

// Valid reports whether s is a known shift literal.
func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftAfternoon
}

// ScheduleStatus represents lifecycle phases for generated schedules.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
)

// DefaultDays is the working week used when a request does not list days.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// ScheduleEntry is one placed class session. Code, name and room number are
// copied from the source entities at generation time and stay readable after
// those entities are deleted.
type ScheduleEntry struct {
	CourseID       string `json:"courseId"`
	CourseCode     string `json:"courseCode"`
	CourseName     string `json:"courseName"`
	InstructorID   string `json:"instructorId"`
	InstructorName string `json:"instructorName"`
	RoomID         string `json:"roomId"`
	RoomNumber     string `json:"roomNumber"`
	Day            string `json:"day"`
	Shift          Shift  `json:"shift"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	IsLab          bool   `json:"isLab"`
}

// ScheduleEntries is stored as a JSONB document column.
type ScheduleEntries []ScheduleEntry

// Value implements driver.Valuer.
func (e ScheduleEntries) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *ScheduleEntries) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*e = ScheduleEntries{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported schedule entries type %T", src)
	}
	var entries []ScheduleEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("decode schedule entries: %w", err)
	}
	*e = entries
	return nil
}

// ScheduleKey is the composite identity of a schedule.
type ScheduleKey struct {
	BatchID    string `json:"batchId"`
	SemesterID string `json:"semesterId"`
	Section    string `json:"section"`
}

// Schedule is the persisted timetable for one (batch, semester, section).
type Schedule struct {
	ID          string          `db:"id" json:"id"`
	BatchID     string          `db:"batch_id" json:"batchId"`
	SemesterID  string          `db:"semester_id" json:"semesterId"`
	Section     string          `db:"section" json:"section"`
	Department  *string         `db:"department" json:"department,omitempty"`
	Entries     ScheduleEntries `db:"entries" json:"entries"`
	Status      ScheduleStatus  `db:"status" json:"status"`
	GeneratedAt time.Time       `db:"generated_at" json:"generatedAt"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// Key returns the composite identity of the schedule.
func (s Schedule) Key() ScheduleKey {
	return ScheduleKey{BatchID: s.BatchID, SemesterID: s.SemesterID, Section: s.Section}
}

// ScheduleUpsert carries the mutable part of a regenerated schedule.
type ScheduleUpsert struct {
	Entries     []ScheduleEntry
	Department  *string
	Status      ScheduleStatus
	GeneratedAt time.Time
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	BatchID    string
	SemesterID string
	Section    string
	Status     ScheduleStatus
	Page       int
	PageSize   int
}

// Normalize clamps paging to sane bounds.
func (f *ScheduleFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// ConflictKind names the dimension two entries collide on.
type ConflictKind string

const (
	ConflictInstructor ConflictKind = "instructor"
	ConflictRoom       ConflictKind = "room"
	ConflictSection    ConflictKind = "section"
)

// Conflict is a diagnostic describing two colliding entries.
type Conflict struct {
	Type    ConflictKind  `json:"type"`
	Entry1  ScheduleEntry `json:"entry1"`
	Entry2  ScheduleEntry `json:"entry2"`
	Message string        `json:"message"`
}

// InstructorTimetableEntry is a published entry with its schedule context.
type InstructorTimetableEntry struct {
	ScheduleEntry
	ScheduleID string `json:"scheduleId"`
	BatchID    string `json:"batchId"`
	SemesterID string `json:"semesterId"`
	Section    string `json:"section"`
}
