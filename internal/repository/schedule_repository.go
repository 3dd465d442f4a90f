package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

const scheduleColumns = "id, batch_id, semester_id, section, department, entries, status, generated_at, created_at, updated_at"

// ScheduleRepository provides persistence for generated schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// UpsertSchedule writes the schedule for key in one statement. An existing row
// keeps its id and created_at; entries, status and generated_at are replaced.
func (r *ScheduleRepository) UpsertSchedule(ctx context.Context, key models.ScheduleKey, data models.ScheduleUpsert) (*models.Schedule, error) {
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO schedules (id, batch_id, semester_id, section, department, entries, status, generated_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
ON CONFLICT (batch_id, semester_id, section) DO UPDATE SET
department = EXCLUDED.department, entries = EXCLUDED.entries, status = EXCLUDED.status,
generated_at = EXCLUDED.generated_at, updated_at = EXCLUDED.updated_at
RETURNING %s`, scheduleColumns)

	var schedule models.Schedule
	err := r.db.GetContext(ctx, &schedule, query,
		uuid.NewString(),
		key.BatchID,
		key.SemesterID,
		key.Section,
		data.Department,
		models.ScheduleEntries(data.Entries),
		data.Status,
		data.GeneratedAt,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert schedule: %w", err)
	}
	return &schedule, nil
}

// FindScheduleByID fetches a schedule by ID.
func (r *ScheduleRepository) FindScheduleByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListSchedules returns schedules matching filter, newest generation first, with a total count.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	filter.Normalize()
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf("SELECT %s %s ORDER BY generated_at DESC LIMIT %d OFFSET %d", scheduleColumns, base, filter.PageSize, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// ListPublishedSchedulesByInstructor returns published schedules containing at
// least one entry taught by instructorID.
func (r *ScheduleRepository) ListPublishedSchedulesByInstructor(ctx context.Context, instructorID string) ([]models.Schedule, error) {
	probe, err := json.Marshal([]map[string]string{{"instructorId": instructorID}})
	if err != nil {
		return nil, fmt.Errorf("encode instructor probe: %w", err)
	}
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE status = $1 AND entries @> $2::jsonb ORDER BY batch_id, semester_id, section", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, models.ScheduleStatusPublished, string(probe)); err != nil {
		return nil, fmt.Errorf("list instructor schedules: %w", err)
	}
	return schedules, nil
}

// UpdateScheduleStatus sets the lifecycle status of a schedule.
func (r *ScheduleRepository) UpdateScheduleStatus(ctx context.Context, id string, status models.ScheduleStatus) error {
	const query = `UPDATE schedules SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSchedule removes a schedule.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
