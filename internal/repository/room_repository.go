package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/class-schedule-api/internal/models"
)

// RoomRepository reads rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindRooms returns rooms matching the filter in room number order.
func (r *RoomRepository) FindRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	base := "SELECT id, room_number, room_type, capacity, is_available, created_at, updated_at FROM rooms"
	var conditions []string
	var args []interface{}
	if filter.OnlyAvailable {
		conditions = append(conditions, "is_available = TRUE")
	}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)+1))
		args = append(args, pq.StringArray(filter.IDs))
	}
	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, base+" ORDER BY room_number ASC", args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
