package models

import (
	"time"

	"github.com/lib/pq"
)

// Batch is a cohort of students admitted in the same academic year.
type Batch struct {
	ID            string         `db:"id" json:"id"`
	BatchNumber   string         `db:"batch_number" json:"batchNumber"`
	NumberOfYears int            `db:"number_of_years" json:"numberOfYears"`
	Sections      pq.StringArray `db:"sections" json:"sections"`
	Departments   pq.StringArray `db:"departments" json:"departments,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasSection reports whether the batch declares the given section label.
func (b Batch) HasSection(section string) bool {
	for _, s := range b.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Semester is an academic term within a batch's program.
type Semester struct {
	ID             string     `db:"id" json:"id"`
	BatchID        string     `db:"batch_id" json:"batchId"`
	SemesterNumber int        `db:"semester_number" json:"semesterNumber"`
	Name           string     `db:"name" json:"name"`
	StartDate      *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate        *time.Time `db:"end_date" json:"endDate,omitempty"`
	IsActive       bool       `db:"is_active" json:"isActive"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}
