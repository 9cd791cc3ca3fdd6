package models

import (
	"time"

	"github.com/google/uuid"
)

// Guest — приглашённый гость. Список гостей заполняется заранее,
// авторизация возможна только для существующего номера телефона.
type Guest struct {
	UUID       uuid.UUID `db:"uuid" json:"uuid"`
	GuestID    int       `db:"guest_id" json:"guest_id"`
	LastName   string    `db:"last_name" json:"last_name"`
	FirstName  string    `db:"first_name" json:"first_name"`
	Patronomic *string   `db:"patronomic" json:"patronomic,omitempty"`
	Phone      string    `db:"phone" json:"phone"`
	// Friend открывает доступ к вишлисту в меню.
	Friend bool `db:"friend" json:"friend"`
	// RSVP: nil — ещё не отвечал, true/false — подтвердил или отклонил.
	RSVP      *bool     `db:"rsvp" json:"rsvp"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
