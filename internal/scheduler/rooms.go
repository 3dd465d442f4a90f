package scheduler

import "github.com/noah-isme/class-schedule-api/internal/models"

// Slot is a target (day, start, end) for room lookup.
type Slot struct {
	Day       string
	StartTime string
	EndTime   string
}

// SelectRoom returns the first room in pool not occupied during slot.
// When every room is taken it still returns pool[0] so the caller surfaces
// the over-subscription as a room conflict. It returns nil only for an empty pool.
func SelectRoom(pool []models.Room, entries []models.ScheduleEntry, slot Slot) *models.Room {
	if len(pool) == 0 {
		return nil
	}
	occupied := make(map[string]struct{})
	for _, entry := range entries {
		if entry.Day != slot.Day {
			continue
		}
		if TimeOverlaps(entry.StartTime, entry.EndTime, slot.StartTime, slot.EndTime) {
			occupied[entry.RoomID] = struct{}{}
		}
	}
	for i := range pool {
		if _, taken := occupied[pool[i].ID]; !taken {
			return &pool[i]
		}
	}
	return &pool[0]
}
