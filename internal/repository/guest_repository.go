package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ivanzorin/wedding-backend/internal/models"
)

// ErrGuestNotFound возвращается, когда запись гостя не найдена.
var ErrGuestNotFound = errors.New("guest not found")

// GuestRepository отвечает за работу с таблицей guests.
type GuestRepository struct {
	db *sqlx.DB
}

// NewGuestRepository создаёт экземпляр репозитория.
func NewGuestRepository(db *sqlx.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// GetByPhone возвращает гостя по номеру телефона.
func (r *GuestRepository) GetByPhone(ctx context.Context, phone string) (*models.Guest, error) {
	var guest models.Guest
	query := `
		SELECT uuid, guest_id, last_name, first_name, patronomic, phone, friend, rsvp, created_at
		FROM guests
		WHERE phone = $1
	`
	if err := r.db.GetContext(ctx, &guest, query, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("guest repository: get by phone %w", err)
	}

	return &guest, nil
}

// GetByUUID возвращает гостя по идентификатору.
func (r *GuestRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	var guest models.Guest
	query := `
		SELECT uuid, guest_id, last_name, first_name, patronomic, phone, friend, rsvp, created_at
		FROM guests
		WHERE uuid = $1
	`
	if err := r.db.GetContext(ctx, &guest, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("guest repository: get by uuid %w", err)
	}

	return &guest, nil
}

// UpdateRSVP сохраняет ответ гостя на приглашение.
func (r *GuestRepository) UpdateRSVP(ctx context.Context, id uuid.UUID, rsvp bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE guests SET rsvp = $1 WHERE uuid = $2`, rsvp, id)
	if err != nil {
		return fmt.Errorf("guest repository: update rsvp %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("guest repository: update rsvp %w", err)
	}
	if affected == 0 {
		return ErrGuestNotFound
	}

	return nil
}
