package scheduler

import (
	"fmt"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

func entriesOverlap(a, b models.ScheduleEntry) bool {
	return a.Day == b.Day && TimeOverlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
}

// DetectConflict returns the first collision between candidate and the partial
// schedule. Any instructor collision is reported before a room collision.
func DetectConflict(candidate models.ScheduleEntry, entries []models.ScheduleEntry) *models.Conflict {
	for _, existing := range entries {
		if existing.InstructorID == candidate.InstructorID && entriesOverlap(existing, candidate) {
			return &models.Conflict{
				Type:    models.ConflictInstructor,
				Entry1:  existing,
				Entry2:  candidate,
				Message: fmt.Sprintf("Instructor %s has overlapping classes", candidate.InstructorName),
			}
		}
	}
	for _, existing := range entries {
		if existing.RoomID == candidate.RoomID && entriesOverlap(existing, candidate) {
			return &models.Conflict{
				Type:    models.ConflictRoom,
				Entry1:  existing,
				Entry2:  candidate,
				Message: fmt.Sprintf("Room %s is double-booked", candidate.RoomNumber),
			}
		}
	}
	return nil
}

// SectionSchedule is one generated timetable labelled with its batch and section.
type SectionSchedule struct {
	BatchID     string
	BatchNumber string
	Section     string
	Entries     []models.ScheduleEntry
}

// DetectSectionConflicts scans distinct schedules for an instructor booked in
// two places at once and returns one conflict per colliding entry pair.
func DetectSectionConflicts(schedules []SectionSchedule) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(schedules); i++ {
		for j := i + 1; j < len(schedules); j++ {
			left, right := schedules[i], schedules[j]
			for _, a := range left.Entries {
				for _, b := range right.Entries {
					if a.InstructorID != b.InstructorID || !entriesOverlap(a, b) {
						continue
					}
					conflicts = append(conflicts, models.Conflict{
						Type:   models.ConflictSection,
						Entry1: a,
						Entry2: b,
						Message: fmt.Sprintf("Instructor %s is booked for Batch %s Section %s and Batch %s Section %s on %s",
							a.InstructorName, left.BatchNumber, left.Section, right.BatchNumber, right.Section, a.Day),
					})
				}
			}
		}
	}
	return conflicts
}
