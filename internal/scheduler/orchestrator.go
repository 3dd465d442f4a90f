package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

// BatchStore lists every batch known to the entity store.
type BatchStore interface {
	FindAllBatches(ctx context.Context) ([]models.Batch, error)
}

// MultiGenerationRequest carries the options shared by every (batch, section) run.
type MultiGenerationRequest struct {
	SemesterID      string
	Department      string
	Days            []string
	MorningShift    ShiftWindow
	AfternoonShift  ShiftWindow
	PeriodsPerDay   int
	SelectedRoomIDs []string
	Priority        *PrioritySettings
}

func (r MultiGenerationRequest) forSection(batchID, section string) GenerationRequest {
	return GenerationRequest{
		BatchID:         batchID,
		SemesterID:      r.SemesterID,
		Section:         section,
		Department:      r.Department,
		Days:            r.Days,
		MorningShift:    r.MorningShift,
		AfternoonShift:  r.AfternoonShift,
		PeriodsPerDay:   r.PeriodsPerDay,
		SelectedRoomIDs: r.SelectedRoomIDs,
		Priority:        r.Priority,
	}
}

// SectionResult is the outcome of one (batch, section) run.
type SectionResult struct {
	BatchID     string                 `json:"batchId"`
	BatchNumber string                 `json:"batchNumber"`
	Section     string                 `json:"section"`
	Entries     []models.ScheduleEntry `json:"schedule"`
	Conflicts   []models.Conflict      `json:"conflicts"`
	Warnings    []string               `json:"warnings"`
}

// MultiResult aggregates every section run plus cross-schedule diagnostics.
type MultiResult struct {
	Schedules      []SectionResult   `json:"schedules"`
	TotalConflicts []models.Conflict `json:"totalConflicts"`
	TotalWarnings  []string          `json:"totalWarnings"`
}

// Orchestrator composes single-section runs into a semester-wide timetable.
type Orchestrator struct {
	engine  *Engine
	batches BatchStore
	logger  *zap.Logger
}

// NewOrchestrator constructs an orchestrator over engine.
func NewOrchestrator(engine *Engine, batches BatchStore, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{engine: engine, batches: batches, logger: logger}
}

// GenerateAll runs the engine for every section of every batch in store order.
// A failing section becomes a warning and the loop continues. After all runs
// the schedules are scanned for instructors booked in two sections at once.
func (o *Orchestrator) GenerateAll(ctx context.Context, req MultiGenerationRequest) (*MultiResult, error) {
	batches, err := o.batches.FindAllBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}

	result := &MultiResult{
		Schedules:      []SectionResult{},
		TotalConflicts: []models.Conflict{},
		TotalWarnings:  []string{},
	}
	var generated []SectionSchedule

	for _, batch := range batches {
		for _, section := range batch.Sections {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			run, err := o.engine.Generate(ctx, req.forSection(batch.ID, section))
			if err != nil {
				o.logger.Warn("section generation failed",
					zap.String("batch_id", batch.ID),
					zap.String("section", section),
					zap.Error(err),
				)
				result.TotalWarnings = append(result.TotalWarnings,
					fmt.Sprintf("Failed to generate schedule for Batch %s, Section %s: %s", batch.BatchNumber, section, err.Error()))
				continue
			}

			result.Schedules = append(result.Schedules, SectionResult{
				BatchID:     batch.ID,
				BatchNumber: batch.BatchNumber,
				Section:     section,
				Entries:     run.Entries,
				Conflicts:   run.Conflicts,
				Warnings:    run.Warnings,
			})
			result.TotalConflicts = append(result.TotalConflicts, run.Conflicts...)
			result.TotalWarnings = append(result.TotalWarnings, run.Warnings...)
			generated = append(generated, SectionSchedule{
				BatchID:     batch.ID,
				BatchNumber: batch.BatchNumber,
				Section:     section,
				Entries:     run.Entries,
			})
		}
	}

	result.TotalConflicts = append(result.TotalConflicts, DetectSectionConflicts(generated)...)
	return result, nil
}
