package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem — предмет вишлиста. UserUUID заполнен, если предмет
// забронирован гостем.
type WishlistItem struct {
	UUID      uuid.UUID  `db:"uuid" json:"uuid"`
	WishID    int        `db:"wish_id" json:"wish_id"`
	Item      string     `db:"item" json:"item"`
	Link      *string    `db:"link" json:"link,omitempty"`
	OwnerType string     `db:"owner_type" json:"owner_type"`
	UserUUID  *uuid.UUID `db:"user_uuid" json:"user_uuid,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
