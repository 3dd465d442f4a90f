package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

const instructorColumns = "id, full_name, staff_id, profession, position, max_teaching_load, specialization, created_at, updated_at"

// InstructorRepository reads instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindAllInstructors returns every instructor.
func (r *InstructorRepository) FindAllInstructors(ctx context.Context) ([]models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors ORDER BY full_name ASC", instructorColumns)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// FindInstructorByID fetches one instructor.
func (r *InstructorRepository) FindInstructorByID(ctx context.Context, id string) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE id = $1", instructorColumns)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}
