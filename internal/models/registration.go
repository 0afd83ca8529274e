package models

import "time"

// RegistrationStatus is the review state of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// GraduationStatus tracks whether a student still studies at the institution.
type GraduationStatus string

const (
	GraduationActive    GraduationStatus = "active"
	GraduationPassedOut GraduationStatus = "passed_out"
)

// StudentRegistration is the intake form a student submits once.
type StudentRegistration struct {
	ID               string             `db:"id" json:"id"`
	UserID           string             `db:"user_id" json:"user_id"`
	FullName         string             `db:"full_name" json:"full_name"`
	Age              int                `db:"age" json:"age"`
	Phone            string             `db:"phone" json:"phone"`
	IDNumber         string             `db:"id_number" json:"id_number"`
	PhotoURL         *string            `db:"photo_url" json:"photo_url,omitempty"`
	PhotoPath        *string            `db:"photo_path" json:"-"`
	Status           RegistrationStatus `db:"status" json:"status"`
	GraduationStatus GraduationStatus   `db:"graduation_status" json:"graduation_status"`
	AcademicYear     string             `db:"academic_year" json:"academic_year"`
	ReviewedBy       *string            `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time         `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNote       *string            `db:"review_note" json:"review_note,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// Eligible reports whether the student may hold a room.
func (r StudentRegistration) Eligible() bool {
	return r.Status == RegistrationApproved && r.GraduationStatus == GraduationActive
}

// RegistrationFilter captures list query parameters for registrations.
type RegistrationFilter struct {
	Status           RegistrationStatus
	GraduationStatus GraduationStatus
	AcademicYear     string
	Search           string
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}
