package models

import (
	"strings"
	"time"
)

// RoomStatus is the availability state shown for a room.
type RoomStatus string

const (
	RoomStatusVacant      RoomStatus = "Vacant"
	RoomStatusOccupied    RoomStatus = "Occupied"
	RoomStatusFull        RoomStatus = "Full"
	RoomStatusMaintenance RoomStatus = "Maintenance"
)

// ParseRoomStatus matches a status case-insensitively.
func ParseRoomStatus(raw string) (RoomStatus, bool) {
	for _, status := range []RoomStatus{RoomStatusVacant, RoomStatusOccupied, RoomStatusFull, RoomStatusMaintenance} {
		if strings.EqualFold(raw, string(status)) {
			return status, true
		}
	}
	return "", false
}

// RoomCondition describes the physical state of a room or furniture item.
type RoomCondition string

const (
	ConditionGood        RoomCondition = "Good"
	ConditionFair        RoomCondition = "Fair"
	ConditionPoor        RoomCondition = "Poor"
	ConditionMaintenance RoomCondition = "Maintenance"
	ConditionUnderRepair RoomCondition = "Under Repair"
)

// Room is a bookable hostel room. CurrentOccupancy is computed from the
// active assignments and never persisted.
type Room struct {
	ID               string        `db:"id" json:"id"`
	RoomNumber       string        `db:"room_number" json:"room_number"`
	Floor            int           `db:"floor" json:"floor"`
	RoomType         string        `db:"room_type" json:"room_type"`
	Size             string        `db:"size" json:"size"`
	MaxOccupancy     int           `db:"max_occupancy" json:"max_occupancy"`
	CurrentOccupancy int           `db:"current_occupancy" json:"current_occupancy"`
	Status           RoomStatus    `db:"status" json:"status"`
	Condition        RoomCondition `db:"condition" json:"condition"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// Available returns the number of free places.
func (r Room) Available() int {
	free := r.MaxOccupancy - r.CurrentOccupancy
	if free < 0 {
		return 0
	}
	return free
}

// DeriveRoomStatus computes the status implied by occupancy. A room in
// maintenance keeps that status until it is explicitly cleared.
func DeriveRoomStatus(current RoomStatus, occupancy, maxOccupancy int) RoomStatus {
	if current == RoomStatusMaintenance {
		return RoomStatusMaintenance
	}
	switch {
	case occupancy <= 0:
		return RoomStatusVacant
	case occupancy >= maxOccupancy:
		return RoomStatusFull
	default:
		return RoomStatusOccupied
	}
}

// RoomFilter captures list query parameters for rooms.
type RoomFilter struct {
	Floor     *int
	RoomType  string
	Status    RoomStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// RoomOccupant is a student currently living in a room.
type RoomOccupant struct {
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	AssignedAt   time.Time `db:"assigned_at" json:"assigned_at"`
}

// RoomDetail enriches a room with its occupants and furniture.
type RoomDetail struct {
	Room
	Occupants []RoomOccupant  `json:"occupants"`
	Furniture []FurnitureItem `json:"furniture"`
}

// RoomOccupancy is the lightweight occupancy view of a room.
type RoomOccupancy struct {
	RoomID           string     `json:"room_id"`
	RoomNumber       string     `json:"room_number"`
	MaxOccupancy     int        `json:"max_occupancy"`
	CurrentOccupancy int        `json:"current_occupancy"`
	Available        int        `json:"available"`
	Status           RoomStatus `json:"status"`
}
