package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-api/internal/models"
)

const announcementColumns = `id, title, message, type, is_active, created_by, created_at, updated_at`

// AnnouncementRepository stores notice board entries. Deleting only hides a row.
type AnnouncementRepository struct {
	db *sqlx.DB
}

func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List pages through announcements newest first. Hidden rows are included
// only when the filter asks for them.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	var p predicates
	if !filter.IncludeInactive {
		p.fixed("is_active")
	}
	if filter.Type != "" {
		p.add("type = ?", filter.Type)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM announcements`+p.where(), p.args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	items := []models.Announcement{}
	if total == 0 {
		return items, 0, nil
	}
	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM announcements%s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		announcementColumns, p.where(), size, (page-1)*size)
	if err := r.db.SelectContext(ctx, &items, query, p.args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	return items, total, nil
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	var a models.Announcement
	err := r.db.GetContext(ctx, &a, `SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement %s: %w", id, err)
	}
	return &a, nil
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO announcements (`+announcementColumns+`)
VALUES (:id, :title, :message, :type, :is_active, :created_by, :created_at, :updated_at)`, a)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update saves every editable field. A missing row yields sql.ErrNoRows.
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `UPDATE announcements
SET title = :title, message = :message, type = :type, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`, a)
	if err != nil {
		return fmt.Errorf("update announcement %s: %w", a.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate hides the announcement. Hiding a hidden one succeeds.
func (r *AnnouncementRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE announcements SET is_active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate announcement %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountActive feeds the dashboard.
func (r *AnnouncementRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM announcements WHERE is_active`); err != nil {
		return 0, fmt.Errorf("count active announcements: %w", err)
	}
	return n, nil
}
