package events

import "time"

// ScheduleGenerated is emitted after a schedule is upserted as a draft.
type ScheduleGenerated struct {
	ScheduleID  string    `json:"scheduleId"`
	BatchID     string    `json:"batchId"`
	SemesterID  string    `json:"semesterId"`
	Section     string    `json:"section"`
	Entries     int       `json:"entries"`
	Conflicts   int       `json:"conflicts"`
	Warnings    int       `json:"warnings"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// SchedulePublished is emitted when a draft becomes visible to students.
type SchedulePublished struct {
	ScheduleID  string    `json:"scheduleId"`
	BatchID     string    `json:"batchId"`
	SemesterID  string    `json:"semesterId"`
	Section     string    `json:"section"`
	PublishedAt time.Time `json:"publishedAt"`
}
