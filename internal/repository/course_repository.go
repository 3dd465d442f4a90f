package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

const courseColumns = "id, course_code, course_name, credit_hour, classification, semester_id, batch_id, instructor_id, has_lab, lecture_hours, lab_hours, department, created_at, updated_at"

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindCourses returns courses for a batch and semester, optionally narrowed by department.
// Rows come back in creation order so placement is deterministic.
func (r *CourseRepository) FindCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	conditions := []string{"batch_id = $1", "semester_id = $2"}
	args := []interface{}{filter.BatchID, filter.SemesterID}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}

	query := fmt.Sprintf("SELECT %s FROM courses WHERE %s ORDER BY created_at ASC, course_code ASC", courseColumns, strings.Join(conditions, " AND "))
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindCourseByID fetches a course by ID.
func (r *CourseRepository) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// CourseCodeExists checks whether another course already uses code.
func (r *CourseRepository) CourseCodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE course_code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// CreateCourse inserts a new course.
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, course_code, course_name, credit_hour, classification, semester_id, batch_id, instructor_id, has_lab, lecture_hours, lab_hours, department, created_at, updated_at)
VALUES (:id, :course_code, :course_name, :credit_hour, :classification, :semester_id, :batch_id, :instructor_id, :has_lab, :lecture_hours, :lab_hours, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// UpdateCourse overwrites the mutable columns of a course.
func (r *CourseRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET course_code = :course_code, course_name = :course_name, credit_hour = :credit_hour, classification = :classification,
semester_id = :semester_id, batch_id = :batch_id, instructor_id = :instructor_id, has_lab = :has_lab, lecture_hours = :lecture_hours,
lab_hours = :lab_hours, department = :department, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
