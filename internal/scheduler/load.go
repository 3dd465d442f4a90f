package scheduler

import "github.com/noah-isme/class-schedule-api/internal/models"

// InstructorLoad sums creditHour over the distinct courses an instructor
// already teaches in entries. Lecture and lab sessions of one course share a
// single credit total, so each course is counted once.
func InstructorLoad(entries []models.ScheduleEntry, instructorID string, catalog map[string]models.Course) int {
	seen := make(map[string]struct{})
	total := 0
	for _, entry := range entries {
		if entry.InstructorID != instructorID {
			continue
		}
		if _, ok := seen[entry.CourseID]; ok {
			continue
		}
		seen[entry.CourseID] = struct{}{}
		if course, ok := catalog[entry.CourseID]; ok {
			total += course.CreditHour
		}
	}
	return total
}
