package dto

// CourseRequest creates or replaces a course. Lecture and lab hours are derived.
type CourseRequest struct {
	CourseCode     string  `json:"courseCode" validate:"required,max=32"`
	CourseName     string  `json:"courseName" validate:"required,max=255"`
	CreditHour     int     `json:"creditHour" validate:"required,min=1,max=12"`
	Classification string  `json:"majorOrCommon" validate:"required,oneof=major common"`
	SemesterID     string  `json:"semesterId" validate:"required"`
	BatchID        string  `json:"batchId" validate:"required"`
	InstructorID   string  `json:"instructorId" validate:"required"`
	HasLab         bool    `json:"hasLab"`
	Department     *string `json:"department" validate:"omitempty,max=64"`
}
