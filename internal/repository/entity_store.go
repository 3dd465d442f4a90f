package repository

import "github.com/jmoiron/sqlx"

// EntityStore bundles the read repositories the scheduling engine consumes.
type EntityStore struct {
	*CourseRepository
	*InstructorRepository
	*RoomRepository
	*BatchRepository
}

// NewEntityStore wires every entity repository over one connection pool.
func NewEntityStore(db *sqlx.DB) *EntityStore {
	return &EntityStore{
		CourseRepository:     NewCourseRepository(db),
		InstructorRepository: NewInstructorRepository(db),
		RoomRepository:       NewRoomRepository(db),
		BatchRepository:      NewBatchRepository(db),
	}
}
