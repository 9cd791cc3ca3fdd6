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

var (
	// ErrWishNotFound возвращается, когда предмет вишлиста не найден.
	ErrWishNotFound = errors.New("wishlist item not found")
	// ErrWishAlreadyReserved возвращается при попытке забронировать занятый предмет.
	ErrWishAlreadyReserved = errors.New("wishlist item already reserved")
	// ErrWishNotReservedByGuest возвращается при попытке снять чужую бронь.
	ErrWishNotReservedByGuest = errors.New("wishlist item reserved by another guest")
)

// WishlistRepository отвечает за работу с таблицей wishlist.
type WishlistRepository struct {
	db *sqlx.DB
}

// NewWishlistRepository создаёт экземпляр репозитория.
func NewWishlistRepository(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// ListAll возвращает все предметы вишлиста.
func (r *WishlistRepository) ListAll(ctx context.Context) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	query := `
		SELECT uuid, wish_id, item, link, owner_type, user_uuid, created_at
		FROM wishlist
		ORDER BY owner_type, wish_id
	`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("wishlist repository: list %w", err)
	}

	return items, nil
}

// GetByUUID возвращает предмет вишлиста по идентификатору.
func (r *WishlistRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	query := `
		SELECT uuid, wish_id, item, link, owner_type, user_uuid, created_at
		FROM wishlist
		WHERE uuid = $1
	`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWishNotFound
		}
		return nil, fmt.Errorf("wishlist repository: get %w", err)
	}

	return &item, nil
}

// Reserve бронирует предмет за гостем. Условие user_uuid IS NULL в запросе
// исключает гонку двух одновременных бронирований.
func (r *WishlistRepository) Reserve(ctx context.Context, itemID, guestID uuid.UUID) (*models.WishlistItem, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wishlist SET user_uuid = $1 WHERE uuid = $2 AND user_uuid IS NULL`,
		guestID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("wishlist repository: reserve %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("wishlist repository: reserve %w", err)
	}
	if affected == 0 {
		// Либо предмета нет, либо он уже забронирован.
		if _, err := r.GetByUUID(ctx, itemID); err != nil {
			return nil, err
		}
		return nil, ErrWishAlreadyReserved
	}

	return r.GetByUUID(ctx, itemID)
}

// Unreserve снимает бронь, только если предмет забронирован этим гостем.
func (r *WishlistRepository) Unreserve(ctx context.Context, itemID, guestID uuid.UUID) error {
	item, err := r.GetByUUID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserUUID == nil || *item.UserUUID != guestID {
		return ErrWishNotReservedByGuest
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE wishlist SET user_uuid = NULL WHERE uuid = $1 AND user_uuid = $2`,
		itemID, guestID,
	); err != nil {
		return fmt.Errorf("wishlist repository: unreserve %w", err)
	}

	return nil
}
