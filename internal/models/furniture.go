package models

import "time"

// FurnitureItem is an inventory line attached to a room.
type FurnitureItem struct {
	ID        string        `db:"id" json:"id"`
	RoomID    string        `db:"room_id" json:"room_id"`
	Name      string        `db:"name" json:"name"`
	Quantity  int           `db:"quantity" json:"quantity"`
	Condition RoomCondition `db:"condition" json:"condition"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}
