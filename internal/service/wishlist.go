package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ivanzorin/wedding-backend/internal/models"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/repository"
)

// Wishlist — вишлист целиком плюс раздельные списки невесты и жениха.
type Wishlist struct {
	Items      []models.WishlistItem `json:"items"`
	BrideItems []models.WishlistItem `json:"bride_items"`
	GroomItems []models.WishlistItem `json:"groom_items"`
}

// WishlistService — бизнес-логика вишлиста поверх репозитория.
type WishlistService struct {
	repo *repository.WishlistRepository
}

// NewWishlistService создаёт сервис вишлиста.
func NewWishlistService(repo *repository.WishlistRepository) *WishlistService {
	return &WishlistService{repo: repo}
}

// List возвращает весь вишлист, разделённый по владельцам.
func (s *WishlistService) List(ctx context.Context) (*Wishlist, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось получить вишлист")
	}

	w := &Wishlist{
		Items:      items,
		BrideItems: []models.WishlistItem{},
		GroomItems: []models.WishlistItem{},
	}
	for _, item := range items {
		switch item.OwnerType {
		case "bride":
			w.BrideItems = append(w.BrideItems, item)
		case "groom":
			w.GroomItems = append(w.GroomItems, item)
		}
	}

	return w, nil
}

// Reserve бронирует предмет за гостем.
func (s *WishlistService) Reserve(ctx context.Context, itemID, guestID uuid.UUID) (*models.WishlistItem, error) {
	item, err := s.repo.Reserve(ctx, itemID, guestID)
	switch {
	case errors.Is(err, repository.ErrWishNotFound):
		return nil, apperror.New(apperror.ErrCodeNotFound, "Предмет не найден")
	case errors.Is(err, repository.ErrWishAlreadyReserved):
		return nil, apperror.New(apperror.ErrCodeBadRequest, "Предмет уже забронирован")
	case err != nil:
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Ошибка при бронировании")
	}
	return item, nil
}

// Unreserve снимает бронь гостя с предмета.
func (s *WishlistService) Unreserve(ctx context.Context, itemID, guestID uuid.UUID) error {
	err := s.repo.Unreserve(ctx, itemID, guestID)
	switch {
	case errors.Is(err, repository.ErrWishNotFound):
		return apperror.New(apperror.ErrCodeNotFound, "Предмет не найден")
	case errors.Is(err, repository.ErrWishNotReservedByGuest):
		return apperror.New(apperror.ErrCodeBadRequest, "Предмет забронирован другим гостем")
	case err != nil:
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Ошибка при отмене бронирования")
	}
	return nil
}
