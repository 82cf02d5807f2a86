package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/models"
)

// GetTrialUsage возвращает отметку об использовании пробного периода
// сервиса или nil, если пользователь его ещё не использовал.
func (s *Storage) GetTrialUsage(ctx context.Context, userUID, serviceID uuid.UUID) (*models.TrialUsage, error) {
	const op = "storage.GetTrialUsage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, service_id, start_date, end_date
			  FROM user_trial_usages
			  WHERE user_uid = $1 AND service_id = $2`
	var item models.TrialUsage
	row := s.DB.QueryRowContext(ctx, query, userUID, serviceID)
	if err := row.Scan(&item.ID, &item.UserUID, &item.ServiceID,
		&item.StartDate, &item.EndDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// GetSpecialUsage возвращает отметку об использовании специального условия
// тарифа или nil, если пользователь его ещё не использовал.
func (s *Storage) GetSpecialUsage(ctx context.Context, userUID, tariffID uuid.UUID) (*models.SpecialUsage, error) {
	const op = "storage.GetSpecialUsage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, tariff_id, start_date, end_date
			  FROM user_special_condition_usages
			  WHERE user_uid = $1 AND tariff_id = $2`
	var item models.SpecialUsage
	row := s.DB.QueryRowContext(ctx, query, userUID, tariffID)
	if err := row.Scan(&item.ID, &item.UserUID, &item.TariffID,
		&item.StartDate, &item.EndDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}
