// Package importer loads scheduling fixtures from CSV files into an in-memory
// store so generation can run without a database.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/noah-isme/class-schedule-api/internal/dto"
	"github.com/noah-isme/class-schedule-api/internal/models"
	"github.com/noah-isme/class-schedule-api/internal/repository"
)

// File names expected in the fixture directory. courses.csv is loaded last
// because course validation looks up instructors.
const (
	BatchesFile     = "batches.csv"
	SemestersFile   = "semesters.csv"
	InstructorsFile = "instructors.csv"
	RoomsFile       = "rooms.csv"
	CoursesFile     = "courses.csv"
)

const listSeparator = "|"

type batchRow struct {
	ID            string `csv:"id"`
	BatchNumber   string `csv:"batch_number"`
	NumberOfYears int    `csv:"number_of_years"`
	Sections      string `csv:"sections"`
	Departments   string `csv:"departments"`
}

type semesterRow struct {
	ID             string `csv:"id"`
	BatchID        string `csv:"batch_id"`
	SemesterNumber int    `csv:"semester_number"`
	Name           string `csv:"name"`
	IsActive       bool   `csv:"is_active"`
}

type instructorRow struct {
	ID              string `csv:"id"`
	FullName        string `csv:"full_name"`
	StaffID         string `csv:"staff_id"`
	MaxTeachingLoad int    `csv:"max_teaching_load"`
	Specialization  string `csv:"specialization"`
}

type roomRow struct {
	ID          string `csv:"id"`
	RoomNumber  string `csv:"room_number"`
	RoomType    string `csv:"room_type"`
	Capacity    int    `csv:"capacity"`
	IsAvailable bool   `csv:"is_available"`
}

type courseRow struct {
	CourseCode     string `csv:"course_code"`
	CourseName     string `csv:"course_name"`
	CreditHour     int    `csv:"credit_hour"`
	Classification string `csv:"classification"`
	SemesterID     string `csv:"semester_id"`
	BatchID        string `csv:"batch_id"`
	InstructorID   string `csv:"instructor_id"`
	HasLab         bool   `csv:"has_lab"`
	Department     string `csv:"department"`
}

type courseCreator interface {
	Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error)
}

// Summary counts what was loaded.
type Summary struct {
	Batches     int
	Semesters   int
	Instructors int
	Rooms       int
	Courses     int
}

// Importer reads fixture CSVs from a filesystem.
type Importer struct {
	fsys    fs.FS
	courses courseCreator
	logger  *zap.Logger
}

// New builds an importer. courses receives every course row so code
// uniqueness and derived hours apply exactly as they do over HTTP.
func New(fsys fs.FS, courses courseCreator, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{fsys: fsys, courses: courses, logger: logger}
}

// Load fills store from the fixture files. Missing files are skipped; a
// malformed row aborts the load.
func (i *Importer) Load(ctx context.Context, store *repository.MemoryStore) (Summary, error) {
	var summary Summary

	var batches []batchRow
	if err := i.read(BatchesFile, &batches); err != nil {
		return summary, err
	}
	for _, row := range batches {
		store.AddBatches(models.Batch{
			ID:            row.ID,
			BatchNumber:   row.BatchNumber,
			NumberOfYears: row.NumberOfYears,
			Sections:      splitList(row.Sections),
			Departments:   splitList(row.Departments),
		})
	}
	summary.Batches = len(batches)

	var semesters []semesterRow
	if err := i.read(SemestersFile, &semesters); err != nil {
		return summary, err
	}
	for _, row := range semesters {
		store.AddSemesters(models.Semester{
			ID:             row.ID,
			BatchID:        row.BatchID,
			SemesterNumber: row.SemesterNumber,
			Name:           row.Name,
			IsActive:       row.IsActive,
		})
	}
	summary.Semesters = len(semesters)

	var instructors []instructorRow
	if err := i.read(InstructorsFile, &instructors); err != nil {
		return summary, err
	}
	for _, row := range instructors {
		load := row.MaxTeachingLoad
		if load <= 0 {
			load = models.DefaultMaxTeachingLoad
		}
		store.AddInstructors(models.Instructor{
			ID:              row.ID,
			FullName:        row.FullName,
			StaffID:         row.StaffID,
			MaxTeachingLoad: load,
			Specialization:  splitList(row.Specialization),
		})
	}
	summary.Instructors = len(instructors)

	var rooms []roomRow
	if err := i.read(RoomsFile, &rooms); err != nil {
		return summary, err
	}
	for n, row := range rooms {
		roomType := models.RoomType(strings.ToLower(strings.TrimSpace(row.RoomType)))
		if roomType != models.RoomClassroom && roomType != models.RoomLab {
			return summary, fmt.Errorf("%s row %d: unknown room type %q", RoomsFile, n+2, row.RoomType)
		}
		store.AddRooms(models.Room{
			ID:          row.ID,
			RoomNumber:  row.RoomNumber,
			RoomType:    roomType,
			Capacity:    row.Capacity,
			IsAvailable: row.IsAvailable,
		})
	}
	summary.Rooms = len(rooms)

	var courses []courseRow
	if err := i.read(CoursesFile, &courses); err != nil {
		return summary, err
	}
	for n, row := range courses {
		req := dto.CourseRequest{
			CourseCode:     row.CourseCode,
			CourseName:     row.CourseName,
			CreditHour:     row.CreditHour,
			Classification: strings.ToLower(row.Classification),
			SemesterID:     row.SemesterID,
			BatchID:        row.BatchID,
			InstructorID:   row.InstructorID,
			HasLab:         row.HasLab,
		}
		if row.Department != "" {
			department := row.Department
			req.Department = &department
		}
		if _, err := i.courses.Create(ctx, req); err != nil {
			return summary, fmt.Errorf("%s row %d (%s): %w", CoursesFile, n+2, row.CourseCode, err)
		}
	}
	summary.Courses = len(courses)

	i.logger.Info("fixtures loaded",
		zap.Int("batches", summary.Batches),
		zap.Int("semesters", summary.Semesters),
		zap.Int("instructors", summary.Instructors),
		zap.Int("rooms", summary.Rooms),
		zap.Int("courses", summary.Courses),
	)
	return summary, nil
}

func (i *Importer) read(name string, out interface{}) error {
	f, err := i.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			i.logger.Warn("fixture file missing", zap.String("file", name))
			return nil
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	if err := gocsv.Unmarshal(f, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
