package dto

import (
	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/scheduler"
)

// ShiftWindowRequest is a half-day window in 24-hour "HH:MM".
type ShiftWindowRequest struct {
	Start string `json:"start" validate:"omitempty,hhmm"`
	End   string `json:"end" validate:"omitempty,hhmm"`
}

// PrioritySettingsRequest overrides the preferred shift per course classification.
type PrioritySettingsRequest struct {
	MajorCoursesShift  string `json:"majorCoursesShift" validate:"omitempty,oneof=morning afternoon"`
	CommonCoursesShift string `json:"commonCoursesShift" validate:"omitempty,oneof=morning afternoon"`
}

// GenerationOptions are the placement knobs shared by single and multi-batch runs.
// Omitted shift windows take the configured defaults; a window sent with an
// empty start disables that shift.
type GenerationOptions struct {
	Department       string                   `json:"department"`
	Days             []string                 `json:"days" validate:"omitempty,max=7,unique,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	MorningShift     *ShiftWindowRequest      `json:"morningShift" validate:"omitempty"`
	AfternoonShift   *ShiftWindowRequest      `json:"afternoonShift" validate:"omitempty"`
	PeriodsPerDay    int                      `json:"periodsPerDay" validate:"omitempty,min=1,max=8"`
	SelectedRoomIDs  []string                 `json:"selectedRoomIds" validate:"omitempty,dive,required"`
	PrioritySettings *PrioritySettingsRequest `json:"prioritySettings" validate:"omitempty"`
}

// GenerateScheduleRequest generates the timetable of one (batch, semester, section).
type GenerateScheduleRequest struct {
	BatchID    string `json:"batchId" validate:"required"`
	SemesterID string `json:"semesterId" validate:"required"`
	Section    string `json:"section" validate:"required,max=16"`
	GenerationOptions

	SessionType         string         `json:"sessionType"`
	SessionClassCount   map[string]int `json:"sessionClassCount"`
	SingleSessionOnly   bool           `json:"singleSessionOnly"`
	SingleSessionConfig map[string]any `json:"singleSessionConfig"`
}

// GenerateAllSchedulesRequest generates every section of every batch for a semester.
type GenerateAllSchedulesRequest struct {
	SemesterID string `json:"semesterId" validate:"required"`
	GenerationOptions
}

// GenerateScheduleResponse is the persisted draft together with its diagnostics.
type GenerateScheduleResponse struct {
	Schedule  *models.Schedule  `json:"schedule"`
	Conflicts []models.Conflict `json:"conflicts"`
	Warnings  []string          `json:"warnings"`
}

// SectionScheduleResponse is one section of a multi-batch run.
type SectionScheduleResponse struct {
	ScheduleID  string                 `json:"scheduleId,omitempty"`
	BatchID     string                 `json:"batchId"`
	BatchNumber string                 `json:"batchNumber"`
	Section     string                 `json:"section"`
	Entries     []models.ScheduleEntry `json:"schedule"`
	Conflicts   []models.Conflict      `json:"conflicts"`
	Warnings    []string               `json:"warnings"`
}

// GenerateAllSchedulesResponse aggregates a multi-batch run.
type GenerateAllSchedulesResponse struct {
	Schedules      []SectionScheduleResponse `json:"schedules"`
	TotalConflicts []models.Conflict         `json:"totalConflicts"`
	TotalWarnings  []string                  `json:"totalWarnings"`
}

// ScheduleListQuery filters stored schedules.
type ScheduleListQuery struct {
	BatchID    string `form:"batchId"`
	SemesterID string `form:"semesterId"`
	Section    string `form:"section"`
	Status     string `form:"status" validate:"omitempty,oneof=draft published"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// Session returns the reserved session options, or nil when none were sent.
func (r GenerateScheduleRequest) Session() *scheduler.SessionOptions {
	if r.SessionType == "" && len(r.SessionClassCount) == 0 && !r.SingleSessionOnly && len(r.SingleSessionConfig) == 0 {
		return nil
	}
	return &scheduler.SessionOptions{
		SessionType:         r.SessionType,
		SessionClassCount:   r.SessionClassCount,
		SingleSessionOnly:   r.SingleSessionOnly,
		SingleSessionConfig: r.SingleSessionConfig,
	}
}
