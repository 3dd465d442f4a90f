package models

import "time"

// ExportFormat enumerates supported schedule export formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatJSON ExportFormat = "json"
)

// GenerationJobStatus captures background job lifecycle states.
type GenerationJobStatus string

const (
	GenerationJobQueued     GenerationJobStatus = "QUEUED"
	GenerationJobProcessing GenerationJobStatus = "PROCESSING"
	GenerationJobFinished   GenerationJobStatus = "FINISHED"
	GenerationJobFailed     GenerationJobStatus = "FAILED"
)

// GenerationJob tracks an asynchronous department-wide generation run.
type GenerationJob struct {
	ID           string              `json:"id"`
	SemesterID   string              `json:"semesterId"`
	Status       GenerationJobStatus `json:"status"`
	Attempts     int                 `json:"attempts"`
	ScheduleIDs  []string            `json:"scheduleIds,omitempty"`
	Conflicts    []Conflict          `json:"conflicts,omitempty"`
	Warnings     []string            `json:"warnings,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	FinishedAt   *time.Time          `json:"finishedAt,omitempty"`
	ErrorMessage *string             `json:"errorMessage,omitempty"`
}
