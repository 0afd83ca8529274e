package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-api/internal/models"
)

const assignmentDetailSelect = `SELECT ra.id, ra.room_id, ra.student_id, ra.is_active, ra.assigned_at, ra.vacated_at, ra.assigned_by,
r.room_number, p.full_name AS student_name
FROM room_assignments ra
JOIN rooms r ON r.id = ra.room_id
JOIN profiles p ON p.id = ra.student_id`

const refreshRoomStatusQuery = `UPDATE rooms r SET status = CASE
WHEN r.status = 'Maintenance' THEN r.status
WHEN o.active = 0 THEN 'Vacant'
WHEN o.active >= r.max_occupancy THEN 'Full'
ELSE 'Occupied' END,
updated_at = $2
FROM (SELECT rm.id, COUNT(ra.id) AS active FROM rooms rm
LEFT JOIN room_assignments ra ON ra.room_id = rm.id AND ra.is_active
WHERE rm.id = ANY($1) GROUP BY rm.id) o
WHERE r.id = o.id`

// AssignmentCheck inspects the locked state before anything is written.
// Returning an error aborts the transaction.
type AssignmentCheck func(models.AssignmentSnapshot) error

// AssignmentRepository owns every write to room_assignments. Each mutation
// runs in a single transaction holding the room row lock.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Assign places the students into the room. Locks are taken in a fixed
// order shared with graduation: rooms (sorted by id), then registrations,
// then the students' active assignments. The snapshot is handed to check
// and, when it passes, prior assignments are ended (force only), new rows
// inserted and room statuses refreshed.
func (r *AssignmentRepository) Assign(ctx context.Context, params models.AssignParams, check AssignmentCheck) (result *models.AssignmentResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assignment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			err = lockContention(err)
		}
	}()

	roomIDs := []string{params.RoomID}
	if params.Force {
		var current []string
		if err = tx.SelectContext(ctx, &current, `SELECT DISTINCT room_id FROM room_assignments WHERE student_id = ANY($1) AND is_active`, pqStringArray(params.StudentIDs)); err != nil {
			return nil, fmt.Errorf("find current rooms: %w", err)
		}
		roomIDs = append(roomIDs, current...)
	}
	locked, err := lockRooms(ctx, tx, roomIDs)
	if err != nil {
		return nil, err
	}
	room, ok := locked[params.RoomID]
	if !ok {
		err = sql.ErrNoRows
		return nil, err
	}

	var occupancy int
	if err = tx.GetContext(ctx, &occupancy, `SELECT COUNT(*) FROM room_assignments WHERE room_id = $1 AND is_active`, room.ID); err != nil {
		return nil, fmt.Errorf("count room occupancy: %w", err)
	}
	room.CurrentOccupancy = occupancy

	// FOR SHARE waits for a graduation in flight and re-reads its outcome.
	var eligible []string
	const eligibleQuery = `SELECT user_id FROM student_registrations
WHERE user_id = ANY($1) AND status = 'approved' AND graduation_status = 'active'
FOR SHARE`
	if err = tx.SelectContext(ctx, &eligible, eligibleQuery, pqStringArray(params.StudentIDs)); err != nil {
		return nil, fmt.Errorf("load eligible students: %w", err)
	}
	eligibleSet := make(map[string]bool, len(eligible))
	for _, id := range eligible {
		eligibleSet[id] = true
	}

	var conflicts []models.AssignmentConflict
	const conflictQuery = `SELECT ra.id AS assignment_id, ra.student_id, ra.room_id, r.room_number
FROM room_assignments ra
JOIN rooms r ON r.id = ra.room_id
WHERE ra.student_id = ANY($1) AND ra.is_active
ORDER BY ra.student_id
FOR UPDATE OF ra`
	if err = tx.SelectContext(ctx, &conflicts, conflictQuery, pqStringArray(params.StudentIDs)); err != nil {
		return nil, fmt.Errorf("lock active assignments: %w", err)
	}
	if params.Force {
		for _, c := range conflicts {
			if _, held := locked[c.RoomID]; !held {
				err = ErrLockContention
				return nil, err
			}
		}
	}

	snapshot := models.AssignmentSnapshot{
		Room:       *room,
		Occupancy:  occupancy,
		Conflicts:  conflicts,
		EligibleID: eligibleSet,
	}
	if check != nil {
		if err = check(snapshot); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	touched := []string{room.ID}
	freed := 0
	if params.Force && len(conflicts) > 0 {
		ids := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			ids = append(ids, c.AssignmentID)
			if c.RoomID == room.ID {
				freed++
			} else {
				touched = append(touched, c.RoomID)
			}
		}
		const deactivate = `UPDATE room_assignments SET is_active = FALSE, vacated_at = $2 WHERE id = ANY($1) AND is_active`
		if _, err = tx.ExecContext(ctx, deactivate, pqStringArray(ids), now); err != nil {
			return nil, fmt.Errorf("deactivate prior assignments: %w", err)
		}
	}

	created := make([]models.RoomAssignment, 0, len(params.StudentIDs))
	const insert = `INSERT INTO room_assignments (id, room_id, student_id, is_active, assigned_at, vacated_at, assigned_by)
VALUES (:id, :room_id, :student_id, :is_active, :assigned_at, :vacated_at, :assigned_by)`
	for _, studentID := range params.StudentIDs {
		assignment := models.RoomAssignment{
			ID:         uuid.NewString(),
			RoomID:     room.ID,
			StudentID:  studentID,
			IsActive:   true,
			AssignedAt: now,
			AssignedBy: params.AssignedBy,
		}
		if _, err = tx.NamedExecContext(ctx, insert, assignment); err != nil {
			if isUniqueViolation(err, activeStudentIdx) {
				err = ErrActiveAssignmentExists
				return nil, err
			}
			return nil, fmt.Errorf("insert assignment: %w", err)
		}
		created = append(created, assignment)
	}

	if err = refreshRoomStatuses(ctx, tx, touched, now); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assignment transaction: %w", err)
	}

	newOccupancy := occupancy - freed + len(created)
	result = &models.AssignmentResult{
		RoomID:      room.ID,
		Assignments: created,
		Occupancy:   newOccupancy,
		Status:      models.DeriveRoomStatus(room.Status, newOccupancy, room.MaxOccupancy),
	}
	if params.Force {
		result.Displaced = conflicts
	}
	return result, nil
}

// Vacate ends every active assignment in the room. A room with no occupants
// is vacated successfully with zero rows changed.
func (r *AssignmentRepository) Vacate(ctx context.Context, roomID string) (result *models.VacateResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin vacate transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	room, err := lockRoom(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `UPDATE room_assignments SET is_active = FALSE, vacated_at = $2 WHERE room_id = $1 AND is_active`, room.ID, now)
	if err != nil {
		return nil, fmt.Errorf("vacate room: %w", err)
	}
	vacated, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("vacate room rows affected: %w", err)
	}

	status := models.DeriveRoomStatus(room.Status, 0, room.MaxOccupancy)
	if _, err = tx.ExecContext(ctx, `UPDATE rooms SET status = $2, updated_at = $3 WHERE id = $1`, room.ID, status, now); err != nil {
		return nil, fmt.Errorf("update room status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit vacate transaction: %w", err)
	}
	return &models.VacateResult{RoomID: room.ID, Vacated: int(vacated), Status: status}, nil
}

// End ends a single assignment and refreshes the room status.
func (r *AssignmentRepository) End(ctx context.Context, id string) (assignment *models.RoomAssignment, err error) {
	var roomID string
	if err = r.db.GetContext(ctx, &roomID, `SELECT room_id FROM room_assignments WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment room: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin end assignment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = lockRoom(ctx, tx, roomID); err != nil {
		return nil, err
	}

	var current models.RoomAssignment
	const selectQuery = `SELECT id, room_id, student_id, is_active, assigned_at, vacated_at, assigned_by FROM room_assignments WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, selectQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock assignment: %w", err)
	}
	if !current.IsActive {
		err = ErrAssignmentInactive
		return nil, err
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE room_assignments SET is_active = FALSE, vacated_at = $2 WHERE id = $1`, id, now); err != nil {
		return nil, fmt.Errorf("end assignment: %w", err)
	}
	if err = refreshRoomStatuses(ctx, tx, []string{roomID}, now); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit end assignment: %w", err)
	}

	current.IsActive = false
	current.VacatedAt = &now
	return &current, nil
}

// ActiveConflicts returns the active assignments held by any of the students.
func (r *AssignmentRepository) ActiveConflicts(ctx context.Context, studentIDs []string) ([]models.AssignmentConflict, error) {
	const query = `SELECT ra.id AS assignment_id, ra.student_id, ra.room_id, r.room_number
FROM room_assignments ra
JOIN rooms r ON r.id = ra.room_id
WHERE ra.student_id = ANY($1) AND ra.is_active
ORDER BY ra.student_id`
	var conflicts []models.AssignmentConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, pqStringArray(studentIDs)); err != nil {
		return nil, fmt.Errorf("list active conflicts: %w", err)
	}
	return conflicts, nil
}

// ActiveForStudent returns the student's current assignment.
func (r *AssignmentRepository) ActiveForStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error) {
	query := assignmentDetailSelect + ` WHERE ra.student_id = $1 AND ra.is_active LIMIT 1`
	var detail models.AssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active assignment: %w", err)
	}
	return &detail, nil
}

// ListByRoom returns the assignment history of a room, newest first.
func (r *AssignmentRepository) ListByRoom(ctx context.Context, roomID string, activeOnly bool) ([]models.AssignmentDetail, error) {
	query := assignmentDetailSelect + ` WHERE ra.room_id = $1`
	if activeOnly {
		query += ` AND ra.is_active`
	}
	query += ` ORDER BY ra.assigned_at DESC`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, roomID); err != nil {
		return nil, fmt.Errorf("list room assignments: %w", err)
	}
	return details, nil
}

// ListByStudent returns the assignment history of a student, newest first.
func (r *AssignmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AssignmentDetail, error) {
	query := assignmentDetailSelect + ` WHERE ra.student_id = $1 ORDER BY ra.assigned_at DESC`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list student assignments: %w", err)
	}
	return details, nil
}

// activeRoomOf returns the room the student currently occupies, or "" when
// they hold no active assignment.
func activeRoomOf(ctx context.Context, q queryer, studentID string) (string, error) {
	var roomID string
	err := q.GetContext(ctx, &roomID, `SELECT room_id FROM room_assignments WHERE student_id = $1 AND is_active`, studentID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find active assignment: %w", err)
	}
	return roomID, nil
}

// endActiveInRoom ends the student's active assignment, which must sit in
// lockedRoom, and refreshes that room's status. A student who moved after
// the room was locked yields ErrLockContention.
func endActiveInRoom(ctx context.Context, tx *sqlx.Tx, studentID, lockedRoom string, now time.Time) error {
	var ended []string
	const query = `UPDATE room_assignments SET is_active = FALSE, vacated_at = $2
WHERE student_id = $1 AND is_active RETURNING room_id`
	if err := tx.SelectContext(ctx, &ended, query, studentID, now); err != nil {
		return fmt.Errorf("end student assignment: %w", err)
	}
	for _, roomID := range ended {
		if roomID != lockedRoom {
			return ErrLockContention
		}
	}
	if lockedRoom == "" {
		return nil
	}
	return refreshRoomStatuses(ctx, tx, []string{lockedRoom}, now)
}

func refreshRoomStatuses(ctx context.Context, tx *sqlx.Tx, roomIDs []string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, refreshRoomStatusQuery, pqStringArray(roomIDs), now); err != nil {
		return fmt.Errorf("refresh room status: %w", err)
	}
	return nil
}
