package models

import "time"

// DashboardSummary aggregates hostel-wide counters for staff.
type DashboardSummary struct {
	Rooms                RoomCounts `json:"rooms"`
	TotalCapacity        int        `json:"total_capacity"`
	TotalOccupancy       int        `json:"total_occupancy"`
	OccupancyRate        float64    `json:"occupancy_rate"`
	PendingRegistrations int        `json:"pending_registrations"`
	OpenRequests         int        `json:"open_requests"`
	ActiveAnnouncements  int        `json:"active_announcements"`
	GeneratedAt          time.Time  `json:"generated_at"`
}

// RoomCounts buckets rooms by derived status.
type RoomCounts struct {
	Total       int `json:"total" db:"total"`
	Vacant      int `json:"vacant" db:"vacant"`
	Occupied    int `json:"occupied" db:"occupied"`
	Full        int `json:"full" db:"full"`
	Maintenance int `json:"maintenance" db:"maintenance"`
}
