package models

import "time"

// CourseClassification distinguishes program-specific courses from shared ones.
type CourseClassification string

const (
	CourseMajor  CourseClassification = "major"
	CourseCommon CourseClassification = "common"
)

// Course is a unit of instruction assigned to one instructor.
type Course struct {
	ID             string               `db:"id" json:"id"`
	CourseCode     string               `db:"course_code" json:"courseCode"`
	CourseName     string               `db:"course_name" json:"courseName"`
	CreditHour     int                  `db:"credit_hour" json:"creditHour"`
	Classification CourseClassification `db:"classification" json:"majorOrCommon"`
	SemesterID     string               `db:"semester_id" json:"semesterId"`
	BatchID        string               `db:"batch_id" json:"batchId"`
	InstructorID   string               `db:"instructor_id" json:"instructorId"`
	HasLab         bool                 `db:"has_lab" json:"hasLab"`
	LectureHours   int                  `db:"lecture_hours" json:"lectureHours"`
	LabHours       int                  `db:"lab_hours" json:"labHours"`
	Department     *string              `db:"department" json:"department,omitempty"`
	CreatedAt      time.Time            `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updatedAt"`
}

// CourseFilter scopes course lookups for a generation run.
type CourseFilter struct {
	BatchID    string
	SemesterID string
	Department string
}

// DeriveHours splits credit hours into lecture and lab hours.
// Five-credit lab courses follow the 2 lecture + 3 lab rule; other lab courses
// take floor(40%) as lecture and the remainder as lab.
func DeriveHours(creditHour int, hasLab bool) (lectureHours, labHours int) {
	if !hasLab {
		return creditHour, 0
	}
	if creditHour == 5 {
		return 2, 3
	}
	lectureHours = creditHour * 2 / 5
	return lectureHours, creditHour - lectureHours
}

// ApplyDerivedHours recomputes LectureHours and LabHours from CreditHour and HasLab.
func (c *Course) ApplyDerivedHours() {
	c.LectureHours, c.LabHours = DeriveHours(c.CreditHour, c.HasLab)
}
