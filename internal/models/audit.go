package models

import "time"

const (
	AuditActionSignup          = "SIGNUP"
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionUserCreate      = "USER_CREATE"
	AuditActionUserUpdate      = "USER_UPDATE"
	AuditActionUserDelete      = "USER_DELETE"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionRoomAssign      = "ROOM_ASSIGN"
	AuditActionRoomVacate      = "ROOM_VACATE"
	AuditActionAssignmentEnd   = "ASSIGNMENT_END"
	AuditActionRegistrationRev = "REGISTRATION_REVIEW"
	AuditActionGraduate        = "STUDENT_GRADUATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Actor identifies the authenticated caller of a write operation.
type Actor struct {
	ID        string
	Role      UserRole
	IP        string
	UserAgent string
}

// Staff reports whether the actor may manage hostel resources.
func (a Actor) Staff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}
