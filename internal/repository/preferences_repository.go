package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PreferencesRepository отвечает за таблицы food_preferences,
// alcohol_preferences и allergies.
type PreferencesRepository struct {
	db *sqlx.DB
}

// NewPreferencesRepository создаёт экземпляр репозитория.
func NewPreferencesRepository(db *sqlx.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetFoodChoice возвращает выбор еды гостя или nil.
func (r *PreferencesRepository) GetFoodChoice(ctx context.Context, guestID uuid.UUID) (*string, error) {
	var choice string
	err := r.db.GetContext(ctx, &choice,
		`SELECT food_choice FROM food_preferences WHERE user_uuid = $1`, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("preferences repository: get food %w", err)
	}
	return &choice, nil
}

// SetFoodChoice сохраняет выбор еды гостя (UPSERT).
func (r *PreferencesRepository) SetFoodChoice(ctx context.Context, guestID uuid.UUID, choice string) error {
	query := `
		INSERT INTO food_preferences (user_uuid, food_choice)
		VALUES ($1, $2)
		ON CONFLICT (user_uuid)
		DO UPDATE SET food_choice = EXCLUDED.food_choice, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, guestID, choice); err != nil {
		return fmt.Errorf("preferences repository: set food %w", err)
	}
	return nil
}

// GetAlcoholChoices возвращает выбор алкоголя гостя.
func (r *PreferencesRepository) GetAlcoholChoices(ctx context.Context, guestID uuid.UUID) ([]string, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw,
		`SELECT alcohol_choice FROM alcohol_preferences WHERE user_uuid = $1`, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("preferences repository: get alcohol %w", err)
	}

	var choices []string
	if err := json.Unmarshal(raw, &choices); err != nil {
		return nil, fmt.Errorf("preferences repository: decode alcohol %w", err)
	}
	return choices, nil
}

// SetAlcoholChoices сохраняет выбор алкоголя гостя (UPSERT, JSONB).
func (r *PreferencesRepository) SetAlcoholChoices(ctx context.Context, guestID uuid.UUID, choices []string) error {
	raw, err := json.Marshal(choices)
	if err != nil {
		return fmt.Errorf("preferences repository: encode alcohol %w", err)
	}

	query := `
		INSERT INTO alcohol_preferences (user_uuid, alcohol_choice)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (user_uuid)
		DO UPDATE SET alcohol_choice = EXCLUDED.alcohol_choice, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, guestID, raw); err != nil {
		return fmt.Errorf("preferences repository: set alcohol %w", err)
	}
	return nil
}

// GetAllergies возвращает список аллергий гостя.
func (r *PreferencesRepository) GetAllergies(ctx context.Context, guestID uuid.UUID) ([]string, error) {
	allergies := []string{}
	query := `SELECT allergy FROM allergies WHERE user_uuid = $1 ORDER BY allergy`
	if err := r.db.SelectContext(ctx, &allergies, query, guestID); err != nil {
		return nil, fmt.Errorf("preferences repository: get allergies %w", err)
	}
	return allergies, nil
}

// SetAllergies заменяет список аллергий гостя.
func (r *PreferencesRepository) SetAllergies(ctx context.Context, guestID uuid.UUID, allergies []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("preferences repository: set allergies %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM allergies WHERE user_uuid = $1`, guestID); err != nil {
		return fmt.Errorf("preferences repository: set allergies %w", err)
	}

	for _, allergy := range allergies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO allergies (user_uuid, allergy) VALUES ($1, $2)`, guestID, allergy); err != nil {
			return fmt.Errorf("preferences repository: set allergies %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("preferences repository: set allergies %w", err)
	}
	return nil
}
