package export

import "fmt"

// Shift column labels used by the grid exporters.
const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
)

// Row is one flattened timetable entry.
type Row struct {
	Day        string `csv:"day"`
	Shift      string `csv:"shift"`
	StartTime  string `csv:"start_time"`
	EndTime    string `csv:"end_time"`
	CourseCode string `csv:"course_code"`
	CourseName string `csv:"course_name"`
	Instructor string `csv:"instructor"`
	Room       string `csv:"room"`
	Session    string `csv:"session"`
}

// Label is the short text placed in a grid cell.
func (r Row) Label() string {
	return fmt.Sprintf("%s %s (%s) %s-%s %s", r.CourseCode, r.Session, r.Room, r.StartTime, r.EndTime, r.Instructor)
}

// Timetable is the exporter input: a titled list of rows over ordered days.
type Timetable struct {
	Title    string
	Subtitle string
	Days     []string
	Rows     []Row
}

// Cell returns the rows placed on day in shift, in their original order.
func (t Timetable) Cell(day, shift string) []Row {
	var out []Row
	for _, row := range t.Rows {
		if row.Day == day && row.Shift == shift {
			out = append(out, row)
		}
	}
	return out
}
