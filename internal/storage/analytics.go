package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/models"
)

// ExpensesByCategory возвращает суммы расходов пользователя по категориям
// сервисов за закрытый период [from, to] по дате начала подписки.
func (s *Storage) ExpensesByCategory(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*models.CategoryExpense, error) {
	const op = "storage.ExpensesByCategory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT c.name, COALESCE(SUM(s.expense), 0)
			  FROM user_subscriptions s
			  JOIN services sv ON sv.id = s.service_id
			  JOIN categories c ON c.id = sv.category_id
			  WHERE s.user_uid = $1
			    AND s.start_date BETWEEN $2 AND $3
			  GROUP BY c.name
			  ORDER BY c.name`
	rows, err := s.DB.QueryContext(ctx, query, userUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.CategoryExpense
	for rows.Next() {
		var item models.CategoryExpense
		if err := rows.Scan(&item.Name, &item.Expenses); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RenewalPricing цены следующего продления активной подписки:
// специальная цена (если у тарифа есть специальное условие), обычная цена
// и флаг, что специальное условие пользователем уже использовано.
type RenewalPricing struct {
	SpecialPrice  *int
	StandardPrice int
	SpecialUsed   bool
}

// ListUpcomingRenewals возвращает цены продления активных подписок
// с автоплатежом, истекающих в период [from, to].
func (s *Storage) ListUpcomingRenewals(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*RenewalPricing, error) {
	const op = "storage.ListUpcomingRenewals"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sc.price, tc.price,
			      EXISTS (
			          SELECT 1 FROM user_special_condition_usages su
			          WHERE su.user_uid = s.user_uid AND su.tariff_id = s.tariff_id
			      )
			  FROM user_subscriptions s
			  JOIN tariff_conditions tc ON tc.tariff_id = s.tariff_id
			  LEFT JOIN tariff_special_conditions sc ON sc.tariff_id = s.tariff_id
			  WHERE s.user_uid = $1
			    AND s.is_active = true AND s.auto_pay = true
			    AND s.end_date BETWEEN $2 AND $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*RenewalPricing
	for rows.Next() {
		var item RenewalPricing
		var specialPrice sql.NullInt64
		if err := rows.Scan(&specialPrice, &item.StandardPrice, &item.SpecialUsed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if specialPrice.Valid {
			v := int(specialPrice.Int64)
			item.SpecialPrice = &v
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CashbackTotal возвращает суммарный кэшбек пользователя,
// опционально ограниченный периодом по дате начала подписки.
func (s *Storage) CashbackTotal(ctx context.Context, userUID uuid.UUID, from, to *time.Time) (int, error) {
	const op = "storage.CashbackTotal"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(SUM(cashback), 0)
			  FROM user_subscriptions
			  WHERE user_uid = $1
			    AND ($2::date IS NULL OR start_date >= $2)
			    AND ($3::date IS NULL OR start_date <= $3)`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, userUID, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
