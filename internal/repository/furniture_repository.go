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

// FurnitureRepository persists furniture inventory per room.
type FurnitureRepository struct {
	db *sqlx.DB
}

// NewFurnitureRepository constructs the repository.
func NewFurnitureRepository(db *sqlx.DB) *FurnitureRepository {
	return &FurnitureRepository{db: db}
}

// ListByRoom returns the furniture of a room ordered by name.
func (r *FurnitureRepository) ListByRoom(ctx context.Context, roomID string) ([]models.FurnitureItem, error) {
	const query = `SELECT id, room_id, name, quantity, condition, created_at, updated_at FROM furniture_items WHERE room_id = $1 ORDER BY name ASC`
	var items []models.FurnitureItem
	if err := r.db.SelectContext(ctx, &items, query, roomID); err != nil {
		return nil, fmt.Errorf("list furniture: %w", err)
	}
	return items, nil
}

// FindByID returns a furniture item.
func (r *FurnitureRepository) FindByID(ctx context.Context, id string) (*models.FurnitureItem, error) {
	const query = `SELECT id, room_id, name, quantity, condition, created_at, updated_at FROM furniture_items WHERE id = $1`
	var item models.FurnitureItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find furniture: %w", err)
	}
	return &item, nil
}

// Create inserts a furniture item.
func (r *FurnitureRepository) Create(ctx context.Context, item *models.FurnitureItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	const query = `INSERT INTO furniture_items (id, room_id, name, quantity, condition, created_at, updated_at)
VALUES (:id, :room_id, :name, :quantity, :condition, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create furniture: %w", err)
	}
	return nil
}

// Update modifies a furniture item.
func (r *FurnitureRepository) Update(ctx context.Context, item *models.FurnitureItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE furniture_items SET name = :name, quantity = :quantity, condition = :condition, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update furniture: %w", err)
	}
	return nil
}

// Delete removes a furniture item.
func (r *FurnitureRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM furniture_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete furniture: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
