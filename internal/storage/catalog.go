package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/models"
)

// ListServices возвращает каталог сервисов с названием категории.
// Сервисы, на которые у пользователя уже есть активная подписка,
// в список не попадают.
func (s *Storage) ListServices(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Service, error) {
	const op = "storage.ListServices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sv.id, sv.name, sv.full_name, sv.description, sv.cashback,
			      sv.category_id, c.name
			  FROM services sv
			  JOIN categories c ON c.id = sv.category_id
			  WHERE NOT EXISTS (
			      SELECT 1 FROM user_subscriptions us
			      WHERE us.service_id = sv.id
			        AND us.user_uid = $1
			        AND us.is_active = true
			  )
			  ORDER BY sv.name
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := collectServices(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPopularServices возвращает сервисы, упорядоченные по количеству
// активных подписок, самые популярные первыми.
func (s *Storage) ListPopularServices(ctx context.Context, limit, offset int) ([]*models.Service, error) {
	const op = "storage.ListPopularServices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sv.id, sv.name, sv.full_name, sv.description, sv.cashback,
			      sv.category_id, c.name
			  FROM services sv
			  JOIN categories c ON c.id = sv.category_id
			  LEFT JOIN user_subscriptions us
			      ON us.service_id = sv.id AND us.is_active = true
			  GROUP BY sv.id, sv.name, sv.full_name, sv.description, sv.cashback,
			      sv.category_id, c.name
			  ORDER BY COUNT(us.id) DESC, sv.name
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := collectServices(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func collectServices(rows *sql.Rows) ([]*models.Service, error) {
	var result []*models.Service
	for rows.Next() {
		var item models.Service
		var cashback sql.NullInt64
		if err := rows.Scan(&item.ID, &item.Name, &item.FullName, &item.Description,
			&cashback, &item.CategoryID, &item.CategoryName); err != nil {
			return nil, err
		}
		if cashback.Valid {
			v := int(cashback.Int64)
			item.Cashback = &v
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetService возвращает сервис по ID.
func (s *Storage) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	const op = "storage.GetService"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sv.id, sv.name, sv.full_name, sv.description, sv.cashback,
			      sv.category_id, c.name
			  FROM services sv
			  JOIN categories c ON c.id = sv.category_id
			  WHERE sv.id = $1`
	var item models.Service
	var cashback sql.NullInt64
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&item.ID, &item.Name, &item.FullName, &item.Description,
		&cashback, &item.CategoryID, &item.CategoryName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cashback.Valid {
		v := int(cashback.Int64)
		item.Cashback = &v
	}
	return &item, nil
}

const tariffColumns = `t.id, t.service_id, t.name, t.description,
			      tc.count, tc.unit, tc.price,
			      sc.count, sc.unit, sc.price,
			      tp.count, tp.unit, tp.price`

const tariffJoins = `FROM tariffs t
			  LEFT JOIN tariff_conditions tc ON tc.tariff_id = t.id
			  LEFT JOIN tariff_special_conditions sc ON sc.tariff_id = t.id
			  LEFT JOIN tariff_trial_periods tp ON tp.tariff_id = t.id`

func scanTariff(scan func(dest ...any) error) (*models.Tariff, error) {
	var item models.Tariff
	var stdCount, spCount, trCount sql.NullInt64
	var stdUnit, spUnit, trUnit sql.NullString
	var stdPrice, spPrice, trPrice sql.NullInt64

	if err := scan(&item.ID, &item.ServiceID, &item.Name, &item.Description,
		&stdCount, &stdUnit, &stdPrice,
		&spCount, &spUnit, &spPrice,
		&trCount, &trUnit, &trPrice); err != nil {
		return nil, err
	}

	if stdCount.Valid {
		item.Condition = &models.TariffCondition{
			Count: int(stdCount.Int64), Unit: models.Unit(stdUnit.String), Price: int(stdPrice.Int64),
		}
	}
	if spCount.Valid {
		item.SpecialCondition = &models.TariffCondition{
			Count: int(spCount.Int64), Unit: models.Unit(spUnit.String), Price: int(spPrice.Int64),
		}
	}
	if trCount.Valid {
		item.TrialPeriod = &models.TariffCondition{
			Count: int(trCount.Int64), Unit: models.Unit(trUnit.String), Price: int(trPrice.Int64),
		}
	}
	return &item, nil
}

// ListTariffs возвращает тарифы сервиса вместе со всеми ценовыми условиями.
func (s *Storage) ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]*models.Tariff, error) {
	const op = "storage.ListTariffs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tariffColumns + `
			  ` + tariffJoins + `
			  WHERE t.service_id = $1
			  ORDER BY t.name`
	rows, err := s.DB.QueryContext(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Tariff
	for rows.Next() {
		item, err := scanTariff(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTariff возвращает тариф по ID вместе со всеми ценовыми условиями.
func (s *Storage) GetTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error) {
	const op = "storage.GetTariff"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tariffColumns + `
			  ` + tariffJoins + `
			  WHERE t.id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	item, err := scanTariff(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}
