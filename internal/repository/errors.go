package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrActiveAssignmentExists is returned when the one-active-assignment-per-student
// index rejects an insert.
var ErrActiveAssignmentExists = errors.New("student already has an active assignment")

// ErrAssignmentInactive is returned when ending an assignment that already ended.
var ErrAssignmentInactive = errors.New("assignment is not active")

// ErrCapacityBelowOccupancy is returned when a room update would leave more
// active occupants than places.
var ErrCapacityBelowOccupancy = errors.New("max occupancy below current occupancy")

// ErrRegistrationExists is returned when a user submits a second registration.
var ErrRegistrationExists = errors.New("registration already submitted")

// ErrEmailTaken is returned when another profile already uses the email.
var ErrEmailTaken = errors.New("email already registered")

// ErrTokenRevoked is returned when a refresh token was revoked before this call.
var ErrTokenRevoked = errors.New("refresh token already revoked")

// ErrLockContention is returned when a concurrent occupancy change won the
// room locks first. Retrying the whole operation is safe.
var ErrLockContention = errors.New("room changed concurrently, retry")

const (
	uniqueViolation   = "23505"
	deadlockDetected  = "40P01"
	activeStudentIdx  = "room_assignments_one_active_per_student"
	registrationOwner = "student_registrations_user_id_key"
	profileEmailKey   = "profiles_email_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// lockContention maps a Postgres deadlock abort to ErrLockContention and
// returns any other error unchanged.
func lockContention(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == deadlockDetected {
		return ErrLockContention
	}
	return err
}

func pqStringArray(values []string) interface{} {
	return pq.Array(values)
}

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
