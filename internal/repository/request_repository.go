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

const requestColumns = `id, user_id, type, priority, status, room_number, description, resolution_note, created_at, updated_at`

// RequestRepository persists service requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a request.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	const query = `INSERT INTO requests (id, user_id, type, priority, status, room_number, description, resolution_note, created_at, updated_at)
VALUES (:id, :user_id, :type, :priority, :status, :room_number, :description, :resolution_note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &req, nil
}

// List returns requests matching the filter with total count.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	var p predicates
	if filter.UserID != "" {
		p.add("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		p.add("status = ?", filter.Status)
	}
	if filter.Type != "" {
		p.add("type = ?", filter.Type)
	}
	if filter.Priority != "" {
		p.add("priority = ?", filter.Priority)
	}
	where, args := p.where(), p.args

	sortBy := filter.SortBy
	switch sortBy {
	case "created_at", "updated_at", "priority", "status":
	default:
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page, pageSize := normalisePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s FROM requests%s ORDER BY %s %s, id LIMIT %d OFFSET %d", requestColumns, where, sortBy, sortOrder, pageSize, (page-1)*pageSize)
	var reqs []models.Request
	if err := r.db.SelectContext(ctx, &reqs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM requests"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}
	return reqs, total, nil
}

// UpdateStatus moves a request from one status to the next. It reports false
// when the stored status no longer matches from.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus, note *string) (bool, error) {
	const query = `UPDATE requests SET status = $3, resolution_note = COALESCE($4, resolution_note), updated_at = $5
WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, note, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update request status rows affected: %w", err)
	}
	return affected == 1, nil
}

// CountOpen returns requests that are not yet completed or rejected.
func (r *RequestRepository) CountOpen(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM requests WHERE status IN ('Pending', 'In Progress')`); err != nil {
		return 0, fmt.Errorf("count open requests: %w", err)
	}
	return total, nil
}
