package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/models"
	appErrors "github.com/noah-isme/class-schedule-api/pkg/errors"
)

type courseStore interface {
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
	CourseCodeExists(ctx context.Context, code, excludeID string) (bool, error)
	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
}

type instructorLookup interface {
	FindInstructorByID(ctx context.Context, id string) (*models.Instructor, error)
}

// CourseService writes courses with lecture and lab hours derived from credit hours.
type CourseService struct {
	courses     courseStore
	instructors instructorLookup
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses courseStore, instructors instructorLookup, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, instructors: instructors, validator: validate, logger: logger}
}

// Create inserts a course.
func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error) {
	if err := s.check(ctx, req, ""); err != nil {
		return nil, err
	}
	course := courseFromRequest(req)
	if err := s.courses.CreateCourse(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("course_code", course.CourseCode))
	return course, nil
}

// Update replaces a course and re-derives its hours.
func (s *CourseService) Update(ctx context.Context, id string, req dto.CourseRequest) (*models.Course, error) {
	existing, err := s.courses.FindCourseByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "course not found", "failed to load course")
	}
	if err := s.check(ctx, req, id); err != nil {
		return nil, err
	}

	course := courseFromRequest(req)
	course.ID = existing.ID
	course.CreatedAt = existing.CreatedAt
	if err := s.courses.UpdateCourse(ctx, course); err != nil {
		return nil, notFoundOr(err, "course not found", "failed to update course")
	}
	return course, nil
}

func (s *CourseService) check(ctx context.Context, req dto.CourseRequest, excludeID string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	exists, err := s.courses.CourseCodeExists(ctx, req.CourseCode, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course code %s already exists", req.CourseCode))
	}
	if _, err := s.instructors.FindInstructorByID(ctx, req.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return nil
}

func courseFromRequest(req dto.CourseRequest) *models.Course {
	course := &models.Course{
		CourseCode:     req.CourseCode,
		CourseName:     req.CourseName,
		CreditHour:     req.CreditHour,
		Classification: models.CourseClassification(req.Classification),
		SemesterID:     req.SemesterID,
		BatchID:        req.BatchID,
		InstructorID:   req.InstructorID,
		HasLab:         req.HasLab,
		Department:     req.Department,
	}
	course.ApplyDerivedHours()
	return course
}
