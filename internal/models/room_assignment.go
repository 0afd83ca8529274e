package models

import "time"

// RoomAssignment links a student to a room. At most one row per student is
// active at any time.
type RoomAssignment struct {
	ID         string     `db:"id" json:"id"`
	RoomID     string     `db:"room_id" json:"room_id"`
	StudentID  string     `db:"student_id" json:"student_id"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	AssignedAt time.Time  `db:"assigned_at" json:"assigned_at"`
	VacatedAt  *time.Time `db:"vacated_at" json:"vacated_at,omitempty"`
	AssignedBy *string    `db:"assigned_by" json:"assigned_by,omitempty"`
}

// AssignmentDetail joins an assignment with room and student labels.
type AssignmentDetail struct {
	RoomAssignment
	RoomNumber  string `db:"room_number" json:"room_number"`
	StudentName string `db:"student_name" json:"student_name"`
}

// AssignmentConflict describes an active assignment blocking a new one.
type AssignmentConflict struct {
	AssignmentID string `db:"assignment_id" json:"assignment_id"`
	StudentID    string `db:"student_id" json:"student_id"`
	RoomID       string `db:"room_id" json:"room_id"`
	RoomNumber   string `db:"room_number" json:"room_number"`
}

// AssignParams is the write request handed to the repository.
type AssignParams struct {
	RoomID     string
	StudentIDs []string
	Force      bool
	AssignedBy *string
}

// AssignmentSnapshot is the locked state observed inside the assignment
// transaction, before any row is written.
type AssignmentSnapshot struct {
	Room       Room
	Occupancy  int
	Conflicts  []AssignmentConflict
	EligibleID map[string]bool
}

// AssignmentResult reports what an assignment changed.
type AssignmentResult struct {
	RoomID      string               `json:"room_id"`
	Assignments []RoomAssignment     `json:"assignments"`
	Displaced   []AssignmentConflict `json:"displaced,omitempty"`
	Occupancy   int                  `json:"current_occupancy"`
	Status      RoomStatus           `json:"status"`
}

// VacateResult reports the outcome of vacating a room.
type VacateResult struct {
	RoomID  string     `json:"room_id"`
	Vacated int        `json:"vacated"`
	Status  RoomStatus `json:"status"`
}
