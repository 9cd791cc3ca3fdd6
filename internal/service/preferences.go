package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/ivanzorin/wedding-backend/internal/models"
	"github.com/ivanzorin/wedding-backend/internal/pkg/apperror"
	"github.com/ivanzorin/wedding-backend/internal/repository"
)

// Допустимые варианты форм пожеланий.
var (
	FoodChoices = []string{"Мясо", "Рыба", "Веган", "Нет предпочтений"}

	AlcoholChoices = []string{
		"Вино красное",
		"Вино белое",
		"Шампанское",
		"Коньяк",
		"Водка",
		"Виски",
	}
)

// PreferencesService — пожелания гостя: еда, алкоголь, аллергии.
type PreferencesService struct {
	repo *repository.PreferencesRepository
}

// NewPreferencesService создаёт сервис пожеланий.
func NewPreferencesService(repo *repository.PreferencesRepository) *PreferencesService {
	return &PreferencesService{repo: repo}
}

// GetAll возвращает все пожелания гостя.
func (s *PreferencesService) GetAll(ctx context.Context, guestID uuid.UUID) (*models.Preferences, error) {
	food, err := s.repo.GetFoodChoice(ctx, guestID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось получить пожелания")
	}

	alcohol, err := s.repo.GetAlcoholChoices(ctx, guestID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось получить пожелания")
	}
	if alcohol == nil {
		alcohol = []string{}
	}

	allergies, err := s.repo.GetAllergies(ctx, guestID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось получить пожелания")
	}

	return &models.Preferences{
		FoodChoice:     food,
		AlcoholChoices: alcohol,
		Allergies:      allergies,
	}, nil
}

// SetFood сохраняет выбор еды после проверки по списку допустимых.
func (s *PreferencesService) SetFood(ctx context.Context, guestID uuid.UUID, choice string) error {
	if !slices.Contains(FoodChoices, choice) {
		return apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("Недопустимый выбор. Доступные варианты: %s", strings.Join(FoodChoices, ", ")))
	}
	if err := s.repo.SetFoodChoice(ctx, guestID, choice); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось сохранить предпочтение по еде")
	}
	return nil
}

// SetAlcohol сохраняет выбор алкоголя (1-3 вида из списка допустимых).
func (s *PreferencesService) SetAlcohol(ctx context.Context, guestID uuid.UUID, choices []string) error {
	if len(choices) == 0 || len(choices) > 3 {
		return apperror.New(apperror.ErrCodeBadRequest, "Выберите от 1 до 3 вариантов")
	}

	var invalid []string
	for _, choice := range choices {
		if !slices.Contains(AlcoholChoices, choice) {
			invalid = append(invalid, choice)
		}
	}
	if len(invalid) > 0 {
		return apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("Недопустимые варианты: %s", strings.Join(invalid, ", ")))
	}

	if err := s.repo.SetAlcoholChoices(ctx, guestID, choices); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось сохранить предпочтения по алкоголю")
	}
	return nil
}

// AddAllergy добавляет аллергию, если её ещё нет в списке.
func (s *PreferencesService) AddAllergy(ctx context.Context, guestID uuid.UUID, allergen string) error {
	allergen = strings.TrimSpace(allergen)
	if allergen == "" {
		return apperror.New(apperror.ErrCodeBadRequest, "Аллерген не указан")
	}

	existing, err := s.repo.GetAllergies(ctx, guestID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось получить аллергии")
	}
	if slices.Contains(existing, allergen) {
		return apperror.New(apperror.ErrCodeBadRequest, "Такая аллергия уже добавлена")
	}

	if err := s.repo.SetAllergies(ctx, guestID, append(existing, allergen)); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось добавить аллергию")
	}
	return nil
}

// DeleteAllergy удаляет аллергию из списка. Отсутствующая аллергия не ошибка.
func (s *PreferencesService) DeleteAllergy(ctx context.Context, guestID uuid.UUID, allergen string) error {
	existing, err := s.repo.GetAllergies(ctx, guestID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось получить аллергии")
	}

	kept := slices.DeleteFunc(existing, func(a string) bool { return a == allergen })
	if err := s.repo.SetAllergies(ctx, guestID, kept); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Не удалось удалить аллергию")
	}
	return nil
}
