package scheduler

import (
	"fmt"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

// placementState carries the partial schedule and diagnostics of one run.
// Each queue gets its own day cursor; the entries are shared.
type placementState struct {
	days        []string
	windows     map[models.Shift]ShiftWindow
	catalog     map[string]models.Course
	instructors map[string]models.Instructor
	classrooms  []models.Room
	labs        []models.Room

	entries   []models.ScheduleEntry
	conflicts []models.Conflict
	warnings  []string
}

func newPlacementState(days []string, morning, afternoon ShiftWindow, courses []models.Course, instructors []models.Instructor, classrooms, labs []models.Room) *placementState {
	catalog := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		catalog[course.ID] = course
	}
	byID := make(map[string]models.Instructor, len(instructors))
	for _, instructor := range instructors {
		byID[instructor.ID] = instructor
	}
	return &placementState{
		days: days,
		windows: map[models.Shift]ShiftWindow{
			models.ShiftMorning:   morning,
			models.ShiftAfternoon: afternoon,
		},
		catalog:     catalog,
		instructors: byID,
		classrooms:  classrooms,
		labs:        labs,
		entries:     make([]models.ScheduleEntry, 0, len(courses)),
	}
}

func (s *placementState) warn(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func (s *placementState) result() *Result {
	conflicts := s.conflicts
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	warnings := s.warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &Result{Entries: s.entries, Conflicts: conflicts, Warnings: warnings}
}

// runQueue is the rotating-day greedy pass over one classification queue.
func (s *placementState) runQueue(courses []models.Course, preferred models.Shift) {
	cursor := 0
	for _, course := range courses {
		instructor, ok := s.instructors[course.InstructorID]
		if !ok {
			s.warn("Instructor not found for %s", course.CourseCode)
			continue
		}

		if InstructorLoad(s.entries, instructor.ID, s.catalog)+course.CreditHour > instructor.MaxTeachingLoad {
			s.warn("Instructor %s exceeds max load for %s", instructor.FullName, course.CourseCode)
			continue
		}

		shift, day, found := s.pickLectureSlot(course, preferred, cursor)
		if !found {
			s.warn("Could not schedule %s - no available slots", course.CourseCode)
			continue
		}

		lecture, placed := s.place(course, instructor, s.classrooms, day, shift, course.LectureHours, false)
		if !placed {
			continue
		}
		cursor = s.advance(lecture.Day)

		if !course.HasLab || course.LabHours <= 0 {
			continue
		}
		if len(s.labs) == 0 {
			s.warn("No lab room available for %s", course.CourseCode)
			continue
		}
		labDay, ok := s.nextFreeDay(shift, cursor)
		if !ok {
			s.warn("Could not schedule lab for %s - no available slots", course.CourseCode)
			continue
		}
		if lab, placed := s.place(course, instructor, s.labs, labDay, shift, course.LabHours, true); placed {
			cursor = s.advance(lab.Day)
		}
	}
}

// pickLectureSlot tries the preferred shift then its opposite. A fallback is
// reported as a warning.
func (s *placementState) pickLectureSlot(course models.Course, preferred models.Shift, cursor int) (models.Shift, string, bool) {
	if day, ok := s.nextFreeDay(preferred, cursor); ok {
		return preferred, day, true
	}
	fallback := preferred.Opposite()
	if day, ok := s.nextFreeDay(fallback, cursor); ok {
		s.warn("%s scheduled in %s (preferred %s unavailable)", course.CourseCode, fallback, preferred)
		return fallback, day, true
	}
	return "", "", false
}

// nextFreeDay scans every day once starting at cursor and returns the first
// one with no entry in shift. Shifts that are not offered never have a free day.
func (s *placementState) nextFreeDay(shift models.Shift, cursor int) (string, bool) {
	if !s.windows[shift].Offered() || len(s.days) == 0 {
		return "", false
	}
	for i := 0; i < len(s.days); i++ {
		day := s.days[(cursor+i)%len(s.days)]
		if !s.occupied(day, shift) {
			return day, true
		}
	}
	return "", false
}

func (s *placementState) occupied(day string, shift models.Shift) bool {
	for _, entry := range s.entries {
		if entry.Day == day && entry.Shift == shift {
			return true
		}
	}
	return false
}

func (s *placementState) advance(day string) int {
	for i, d := range s.days {
		if d == day {
			return (i + 1) % len(s.days)
		}
	}
	return 0
}

// place builds a candidate entry at the start of the shift window, checks it
// against the partial schedule and appends it when clean.
func (s *placementState) place(course models.Course, instructor models.Instructor, pool []models.Room, day string, shift models.Shift, hours int, isLab bool) (models.ScheduleEntry, bool) {
	window := s.windows[shift]
	start := window.Start
	end := AddHours(start, hours)

	label := course.CourseCode
	if isLab {
		label = "lab for " + course.CourseCode
	}

	room := SelectRoom(pool, s.entries, Slot{Day: day, StartTime: start, EndTime: end})
	if room == nil {
		s.warn("Could not schedule %s - no available room", label)
		return models.ScheduleEntry{}, false
	}

	candidate := models.ScheduleEntry{
		CourseID:       course.ID,
		CourseCode:     course.CourseCode,
		CourseName:     course.CourseName,
		InstructorID:   instructor.ID,
		InstructorName: instructor.FullName,
		RoomID:         room.ID,
		RoomNumber:     room.RoomNumber,
		Day:            day,
		Shift:          shift,
		StartTime:      start,
		EndTime:        end,
		IsLab:          isLab,
	}

	if conflict := DetectConflict(candidate, s.entries); conflict != nil {
		s.conflicts = append(s.conflicts, *conflict)
		s.warn("Could not schedule %s - %s", label, conflict.Message)
		return models.ScheduleEntry{}, false
	}

	s.entries = append(s.entries, candidate)
	return candidate, true
}
