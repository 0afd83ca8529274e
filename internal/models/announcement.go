package models

import "time"

// AnnouncementType sets how prominently an announcement is shown.
type AnnouncementType string

const (
	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementWarning AnnouncementType = "warning"
	AnnouncementUrgent  AnnouncementType = "urgent"
)

// Announcement represents a persisted announcement row.
type Announcement struct {
	ID        string           `db:"id" json:"id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      AnnouncementType `db:"type" json:"type"`
	IsActive  bool             `db:"is_active" json:"is_active"`
	CreatedBy string           `db:"created_by" json:"created_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter allows listing announcements.
type AnnouncementFilter struct {
	IncludeInactive bool
	Type            AnnouncementType
	Page            int
	PageSize        int
}
