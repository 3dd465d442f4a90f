package models

import (
	"time"

	"github.com/lib/pq"
)

// DefaultMaxTeachingLoad is the credit-hour cap applied when none is configured.
const DefaultMaxTeachingLoad = 12

// Instructor teaches zero or more courses up to a credit-hour cap.
type Instructor struct {
	ID              string         `db:"id" json:"id"`
	FullName        string         `db:"full_name" json:"fullName"`
	StaffID         string         `db:"staff_id" json:"idNumber"`
	Profession      string         `db:"profession" json:"profession,omitempty"`
	Position        string         `db:"position" json:"position,omitempty"`
	MaxTeachingLoad int            `db:"max_teaching_load" json:"maxTeachingLoad"`
	Specialization  pq.StringArray `db:"specialization" json:"specialization,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}
