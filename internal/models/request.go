package models

import "time"

// RequestType categorises service requests.
type RequestType string

const (
	RequestTypeMaintenance RequestType = "maintenance"
	RequestTypeCleaning    RequestType = "cleaning"
	RequestTypeFurniture   RequestType = "furniture"
	RequestTypeElectrical  RequestType = "electrical"
	RequestTypePlumbing    RequestType = "plumbing"
	RequestTypeOther       RequestType = "other"
)

// RequestPriority orders service requests.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	RequestPending    RequestStatus = "Pending"
	RequestInProgress RequestStatus = "In Progress"
	RequestCompleted  RequestStatus = "Completed"
	RequestRejected   RequestStatus = "Rejected"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestInProgress, RequestRejected},
	RequestInProgress: {RequestCompleted, RequestRejected},
}

// CanTransition reports whether a request may move from s to next.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestRejected
}

// Request is a maintenance or service ticket raised by a student.
type Request struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	Type           RequestType     `db:"type" json:"type"`
	Priority       RequestPriority `db:"priority" json:"priority"`
	Status         RequestStatus   `db:"status" json:"status"`
	RoomNumber     *string         `db:"room_number" json:"room_number,omitempty"`
	Description    string          `db:"description" json:"description"`
	ResolutionNote *string         `db:"resolution_note" json:"resolution_note,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// RequestFilter captures list query parameters for requests.
type RequestFilter struct {
	UserID    string
	Status    RequestStatus
	Type      RequestType
	Priority  RequestPriority
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
