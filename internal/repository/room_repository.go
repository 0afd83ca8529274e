package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-api/internal/models"
)

// roomSelect projects rooms with their live occupancy. current_occupancy is
// never stored, it is always the count of active assignments.
const roomSelect = `SELECT r.id, r.room_number, r.floor, r.room_type, r.size, r.max_occupancy,
COALESCE(o.active, 0) AS current_occupancy, r.status, r.condition, r.created_at, r.updated_at
FROM rooms r
LEFT JOIN (SELECT room_id, COUNT(*) AS active FROM room_assignments WHERE is_active GROUP BY room_id) o ON o.room_id = r.id`

// derivedStatusExpr mirrors models.DeriveRoomStatus in SQL for filtering.
const derivedStatusExpr = `(CASE WHEN r.status = 'Maintenance' THEN 'Maintenance'
WHEN COALESCE(o.active, 0) = 0 THEN 'Vacant'
WHEN COALESCE(o.active, 0) >= r.max_occupancy THEN 'Full'
ELSE 'Occupied' END)`

// RoomRepository provides persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms with computed occupancy and total count.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	var p predicates
	if filter.Floor != nil {
		p.add("r.floor = ?", *filter.Floor)
	}
	if filter.RoomType != "" {
		p.add("r.room_type = ?", filter.RoomType)
	}
	if filter.Status != "" {
		p.add(derivedStatusExpr+" = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p.add("LOWER(r.room_number) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	where, args := p.where(), p.args

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"room_number":   "r.room_number",
		"floor":         "r.floor",
		"max_occupancy": "r.max_occupancy",
		"created_at":    "r.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "r.room_number"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("%s%s ORDER BY %s %s, r.id LIMIT %d OFFSET %d", roomSelect, where, column, sortOrder, pageSize, (page-1)*pageSize)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	for i := range rooms {
		normaliseStatus(&rooms[i])
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM rooms r
LEFT JOIN (SELECT room_id, COUNT(*) AS active FROM room_assignments WHERE is_active GROUP BY room_id) o ON o.room_id = r.id%s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}

	return rooms, total, nil
}

// FindByID returns a room with its live occupancy.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := roomSelect + ` WHERE r.id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find room by id: %w", err)
	}
	normaliseStatus(&room)
	return &room, nil
}

// ExistsByNumber checks whether another room already uses the number.
func (r *RoomRepository) ExistsByNumber(ctx context.Context, number string, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM rooms WHERE LOWER(room_number) = LOWER($1) AND ($2 = '' OR id <> $2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, number, excludeID); err != nil {
		return false, fmt.Errorf("check room number: %w", err)
	}
	return exists, nil
}

// Occupancy counts active assignments for a room.
func (r *RoomRepository) Occupancy(ctx context.Context, roomID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM room_assignments WHERE room_id = $1 AND is_active`, roomID); err != nil {
		return 0, fmt.Errorf("count room occupancy: %w", err)
	}
	return count, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	const query = `INSERT INTO rooms (id, room_number, floor, room_type, size, max_occupancy, status, condition, created_at, updated_at)
VALUES (:id, :room_number, :floor, :room_type, :size, :max_occupancy, :status, :condition, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room. Capacity is re-checked against live occupancy
// under the room lock so concurrent assignments cannot overfill it. The
// status starts from the locked row; maintenance, when non-nil, sets or
// clears the manual Maintenance status before it is re-derived.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room, maintenance *bool) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin room update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	locked, err := lockRoom(ctx, tx, room.ID)
	if err != nil {
		return err
	}
	var occupancy int
	if err = tx.GetContext(ctx, &occupancy, `SELECT COUNT(*) FROM room_assignments WHERE room_id = $1 AND is_active`, room.ID); err != nil {
		return fmt.Errorf("count room occupancy: %w", err)
	}
	if occupancy > room.MaxOccupancy {
		err = ErrCapacityBelowOccupancy
		return err
	}

	status := locked.Status
	if maintenance != nil {
		switch {
		case *maintenance:
			status = models.RoomStatusMaintenance
		case status == models.RoomStatusMaintenance:
			status = ""
		}
	}
	room.CurrentOccupancy = occupancy
	room.Status = models.DeriveRoomStatus(status, occupancy, room.MaxOccupancy)
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET room_number = :room_number, floor = :floor, room_type = :room_type, size = :size,
max_occupancy = :max_occupancy, status = :status, condition = :condition, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit room update: %w", err)
	}
	return nil
}

// CountByStatus buckets rooms by derived status and sums capacity and occupancy.
func (r *RoomRepository) CountByStatus(ctx context.Context) (models.RoomCounts, int, int, error) {
	query := fmt.Sprintf(`SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE %[1]s = 'Vacant') AS vacant,
COUNT(*) FILTER (WHERE %[1]s = 'Occupied') AS occupied,
COUNT(*) FILTER (WHERE %[1]s = 'Full') AS full,
COUNT(*) FILTER (WHERE %[1]s = 'Maintenance') AS maintenance,
COALESCE(SUM(r.max_occupancy), 0) AS capacity,
COALESCE(SUM(COALESCE(o.active, 0)), 0) AS occupancy
FROM rooms r
LEFT JOIN (SELECT room_id, COUNT(*) AS active FROM room_assignments WHERE is_active GROUP BY room_id) o ON o.room_id = r.id`, derivedStatusExpr)
	var row struct {
		models.RoomCounts
		Capacity  int `db:"capacity"`
		Occupancy int `db:"occupancy"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return models.RoomCounts{}, 0, 0, fmt.Errorf("count rooms by status: %w", err)
	}
	return row.RoomCounts, row.Capacity, row.Occupancy, nil
}

// Occupants lists the students actively assigned to a room.
func (r *RoomRepository) Occupants(ctx context.Context, roomID string) ([]models.RoomOccupant, error) {
	const query = `SELECT ra.id AS assignment_id, ra.student_id, p.full_name, p.email, ra.assigned_at
FROM room_assignments ra
JOIN profiles p ON p.id = ra.student_id
WHERE ra.room_id = $1 AND ra.is_active
ORDER BY ra.assigned_at ASC`
	var occupants []models.RoomOccupant
	if err := r.db.SelectContext(ctx, &occupants, query, roomID); err != nil {
		return nil, fmt.Errorf("list room occupants: %w", err)
	}
	return occupants, nil
}

func normaliseStatus(room *models.Room) {
	room.Status = models.DeriveRoomStatus(room.Status, room.CurrentOccupancy, room.MaxOccupancy)
}

type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type selecter interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// lockRoom takes the row lock that serialises every occupancy change of a room.
func lockRoom(ctx context.Context, tx queryer, roomID string) (*models.Room, error) {
	const query = `SELECT id, room_number, floor, room_type, size, max_occupancy, status, condition, created_at, updated_at
FROM rooms WHERE id = $1 FOR UPDATE`
	var room models.Room
	if err := tx.GetContext(ctx, &room, query, roomID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock room: %w", err)
	}
	return &room, nil
}

// lockRooms locks several rooms in id order, so two transactions touching
// the same rooms always queue instead of deadlocking. Missing ids are absent
// from the result.
func lockRooms(ctx context.Context, tx selecter, roomIDs []string) (map[string]*models.Room, error) {
	const query = `SELECT id, room_number, floor, room_type, size, max_occupancy, status, condition, created_at, updated_at
FROM rooms WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	var rooms []models.Room
	if err := tx.SelectContext(ctx, &rooms, query, pqStringArray(roomIDs)); err != nil {
		return nil, fmt.Errorf("lock rooms: %w", err)
	}
	locked := make(map[string]*models.Room, len(rooms))
	for i := range rooms {
		locked[rooms[i].ID] = &rooms[i]
	}
	return locked, nil
}
