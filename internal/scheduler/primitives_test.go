package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

func TestTimeToMinutes(t *testing.T) {
	assert.Equal(t, 0, TimeToMinutes("00:00"))
	assert.Equal(t, 8*60+30, TimeToMinutes("08:30"))
	assert.Equal(t, 25*60, TimeToMinutes("25:00"))
	assert.Equal(t, 0, TimeToMinutes("garbage"))
}

func TestParseClockRejectsBadMinutes(t *testing.T) {
	_, err := ParseClock("08:75")
	assert.Error(t, err)
	_, err = ParseClock("0800")
	assert.Error(t, err)
}

func TestAddHours(t *testing.T) {
	assert.Equal(t, "11:00", AddHours("08:00", 3))
	assert.Equal(t, "15:30", AddHours("13:30", 2))
	assert.Equal(t, "25:00", AddHours("23:00", 2))
}

func TestTimeOverlaps(t *testing.T) {
	cases := []struct {
		s1, e1, s2, e2 string
		want           bool
	}{
		{"08:00", "10:00", "09:00", "11:00", true},
		{"08:00", "10:00", "10:00", "12:00", false},
		{"08:00", "12:00", "09:00", "10:00", true},
		{"13:00", "15:00", "08:00", "11:00", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TimeOverlaps(tc.s1, tc.e1, tc.s2, tc.e2))
		assert.Equal(t, tc.want, TimeOverlaps(tc.s2, tc.e2, tc.s1, tc.e1), "overlap must be symmetric")
	}
}

func TestDeriveHours(t *testing.T) {
	lecture, lab := models.DeriveHours(3, false)
	assert.Equal(t, [2]int{3, 0}, [2]int{lecture, lab})

	lecture, lab = models.DeriveHours(5, true)
	assert.Equal(t, [2]int{2, 3}, [2]int{lecture, lab})

	lecture, lab = models.DeriveHours(4, true)
	assert.Equal(t, [2]int{1, 3}, [2]int{lecture, lab})

	lecture, lab = models.DeriveHours(7, true)
	assert.Equal(t, [2]int{2, 5}, [2]int{lecture, lab})
}

func TestInstructorLoadCountsCoursesOnce(t *testing.T) {
	catalog := map[string]models.Course{
		"c1": {ID: "c1", CreditHour: 5},
		"c2": {ID: "c2", CreditHour: 3},
	}
	entries := []models.ScheduleEntry{
		{CourseID: "c1", InstructorID: "i1"},
		{CourseID: "c1", InstructorID: "i1", IsLab: true},
		{CourseID: "c2", InstructorID: "i1"},
		{CourseID: "c2", InstructorID: "i2"},
	}
	assert.Equal(t, 8, InstructorLoad(entries, "i1", catalog))
	assert.Equal(t, 3, InstructorLoad(entries, "i2", catalog))
	assert.Equal(t, 0, InstructorLoad(entries, "i3", catalog))
}

func TestSelectRoom(t *testing.T) {
	pool := classrooms(2)
	slot := Slot{Day: "Monday", StartTime: "08:00", EndTime: "10:00"}

	assert.Nil(t, SelectRoom(nil, nil, slot))
	assert.Equal(t, "room-1", SelectRoom(pool, nil, slot).ID)

	entries := []models.ScheduleEntry{{RoomID: "room-1", Day: "Monday", StartTime: "09:00", EndTime: "11:00"}}
	assert.Equal(t, "room-2", SelectRoom(pool, entries, slot).ID)

	entries = append(entries, models.ScheduleEntry{RoomID: "room-2", Day: "Monday", StartTime: "08:00", EndTime: "09:00"})
	assert.Equal(t, "room-1", SelectRoom(pool, entries, slot).ID, "falls back to the first room when all are taken")

	assert.Equal(t, "room-1", SelectRoom(pool, entries, Slot{Day: "Tuesday", StartTime: "08:00", EndTime: "10:00"}).ID)
}

func TestDetectConflictPrecedence(t *testing.T) {
	candidate := models.ScheduleEntry{CourseID: "c3", InstructorID: "i1", InstructorName: "Dr One", RoomID: "r1", RoomNumber: "R101", Day: "Monday", StartTime: "08:00", EndTime: "10:00"}
	roomClash := models.ScheduleEntry{CourseID: "c1", InstructorID: "i2", RoomID: "r1", Day: "Monday", StartTime: "09:00", EndTime: "11:00"}
	instructorClash := models.ScheduleEntry{CourseID: "c2", InstructorID: "i1", RoomID: "r2", Day: "Monday", StartTime: "08:00", EndTime: "09:00"}

	conflict := DetectConflict(candidate, []models.ScheduleEntry{roomClash, instructorClash})
	if assert.NotNil(t, conflict) {
		assert.Equal(t, models.ConflictInstructor, conflict.Type)
		assert.Equal(t, "c2", conflict.Entry1.CourseID)
		assert.Equal(t, "Instructor Dr One has overlapping classes", conflict.Message)
	}

	conflict = DetectConflict(candidate, []models.ScheduleEntry{roomClash})
	if assert.NotNil(t, conflict) {
		assert.Equal(t, models.ConflictRoom, conflict.Type)
		assert.Equal(t, "Room R101 is double-booked", conflict.Message)
	}

	touching := models.ScheduleEntry{InstructorID: "i1", RoomID: "r1", Day: "Monday", StartTime: "10:00", EndTime: "12:00"}
	assert.Nil(t, DetectConflict(candidate, []models.ScheduleEntry{touching}))

	otherDay := models.ScheduleEntry{InstructorID: "i1", RoomID: "r1", Day: "Tuesday", StartTime: "08:00", EndTime: "10:00"}
	assert.Nil(t, DetectConflict(candidate, []models.ScheduleEntry{otherDay}))
}

func TestDetectSectionConflictsIgnoresSameSchedule(t *testing.T) {
	entry := models.ScheduleEntry{InstructorID: "i1", Day: "Monday", StartTime: "08:00", EndTime: "10:00"}
	schedules := []SectionSchedule{
		{BatchNumber: "2018", Section: "A", Entries: []models.ScheduleEntry{entry, entry}},
		{BatchNumber: "2018", Section: "B", Entries: []models.ScheduleEntry{{InstructorID: "i1", Day: "Monday", StartTime: "10:00", EndTime: "11:00"}}},
	}
	assert.Empty(t, DetectSectionConflicts(schedules))
}
