package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

const batchColumns = "id, batch_number, number_of_years, sections, departments, created_at, updated_at"

// BatchRepository reads batches and their semesters.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindAllBatches returns every batch ordered by batch number.
func (r *BatchRepository) FindAllBatches(ctx context.Context) ([]models.Batch, error) {
	query := fmt.Sprintf("SELECT %s FROM batches ORDER BY batch_number ASC", batchColumns)
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// FindBatchByID fetches one batch.
func (r *BatchRepository) FindBatchByID(ctx context.Context, id string) (*models.Batch, error) {
	query := fmt.Sprintf("SELECT %s FROM batches WHERE id = $1", batchColumns)
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindSemesterByID fetches one semester.
func (r *BatchRepository) FindSemesterByID(ctx context.Context, id string) (*models.Semester, error) {
	const query = `SELECT id, batch_id, semester_number, name, start_date, end_date, is_active, created_at, updated_at FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}
