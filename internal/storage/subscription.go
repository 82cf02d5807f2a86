package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/models"
)

const subscriptionColumns = `id, user_uid, service_id, tariff_id, start_date, end_date,
			      expense, cashback, cashback_credited, is_active, auto_pay, phone_number`

func scanSubscription(scan func(dest ...any) error) (*models.Subscription, error) {
	var item models.Subscription
	if err := scan(&item.ID, &item.UserUID, &item.ServiceID, &item.TariffID,
		&item.StartDate, &item.EndDate, &item.Expense, &item.Cashback,
		&item.CashbackCredited, &item.IsActive, &item.AutoPay, &item.PhoneNumber); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetSubscription возвращает подписку по ID.
func (s *Storage) GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	item, err := scanSubscription(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// ListSubscriptions возвращает подписки пользователя с пагинацией,
// новые периоды первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM user_subscriptions
			  WHERE user_uid = $1
			  ORDER BY start_date DESC, id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		item, err := scanSubscription(rows.Scan)
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

// ExistsSubscription проверяет, оформлял ли пользователь подписку
// на тариф с этим номером телефона. Используется как защита от
// повторного оформления.
func (s *Storage) ExistsSubscription(ctx context.Context, userUID, tariffID uuid.UUID, phoneNumber string) (bool, error) {
	const op = "storage.ExistsSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM user_subscriptions
			      WHERE user_uid = $1 AND tariff_id = $2 AND phone_number = $3 AND is_active = true
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userUID, tariffID, phoneNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ExistsActiveAutoPay проверяет, есть ли у пользователя по тарифу
// активная подписка с включенным автоплатежом. Используется как защита
// от повторного возобновления.
func (s *Storage) ExistsActiveAutoPay(ctx context.Context, userUID, tariffID uuid.UUID) (bool, error) {
	const op = "storage.ExistsActiveAutoPay"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM user_subscriptions
			      WHERE user_uid = $1 AND tariff_id = $2 AND is_active = true AND auto_pay = true
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userUID, tariffID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// SetAutoPay выставляет флаг автоплатежа у подписки и возвращает
// количество изменённых строк.
func (s *Storage) SetAutoPay(ctx context.Context, id uuid.UUID, autoPay bool) (int, error) {
	const op = "storage.SetAutoPay"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions SET auto_pay = $1 WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, autoPay, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeactivateSubscription помечает подписку неактивной и возвращает
// количество изменённых строк.
func (s *Storage) DeactivateSubscription(ctx context.Context, id uuid.UUID) (int, error) {
	const op = "storage.DeactivateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions SET is_active = false WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CreateSubscription атомарно создаёт новый период подписки.
// В одной транзакции: деактивирует заменяемую запись (при продлении),
// вставляет новую запись и отметку об использовании пробного периода
// или специального условия, если период оформлен по скидочному условию.
// Уникальные ограничения usage-таблиц сериализуют одновременные попытки
// двойного списания.
func (s *Storage) CreateSubscription(ctx context.Context, sub *models.Subscription,
	trial *models.TrialUsage, special *models.SpecialUsage, deactivateID *uuid.UUID) (uuid.UUID, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if deactivateID != nil {
		query := `UPDATE user_subscriptions SET is_active = false WHERE id = $1`
		if _, err = tx.ExecContext(ctx, query, *deactivateID); err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `INSERT INTO user_subscriptions (user_uid, service_id, tariff_id, start_date,
			      end_date, expense, cashback, cashback_credited, is_active, auto_pay, phone_number)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id`
	var newID uuid.UUID
	if err = tx.QueryRowContext(ctx, query,
		sub.UserUID, sub.ServiceID, sub.TariffID, sub.StartDate, sub.EndDate,
		sub.Expense, sub.Cashback, sub.CashbackCredited, sub.IsActive, sub.AutoPay,
		sub.PhoneNumber).Scan(&newID); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if trial != nil {
		query := `INSERT INTO user_trial_usages (user_uid, service_id, start_date, end_date)
				  VALUES ($1, $2, $3, $4)`
		if _, err = tx.ExecContext(ctx, query,
			trial.UserUID, trial.ServiceID, trial.StartDate, trial.EndDate); err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if special != nil {
		query := `INSERT INTO user_special_condition_usages (user_uid, tariff_id, start_date, end_date)
				  VALUES ($1, $2, $3, $4)`
		if _, err = tx.ExecContext(ctx, query,
			special.UserUID, special.TariffID, special.StartDate, special.EndDate); err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListExpiredAutoPay возвращает активные подписки с автоплатежом,
// срок действия которых истёк к дате today.
func (s *Storage) ListExpiredAutoPay(ctx context.Context, today time.Time) ([]*models.Subscription, error) {
	const op = "storage.ListExpiredAutoPay"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM user_subscriptions
			  WHERE is_active = true AND auto_pay = true AND end_date < $1`
	rows, err := s.DB.QueryContext(ctx, query, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		item, err := scanSubscription(rows.Scan)
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

// CashbackItem строка для ежемесячного начисления кэшбека:
// подписка прошлого месяца и почта пользователя для вызова банка.
type CashbackItem struct {
	SubscriptionID uuid.UUID
	UserUID        uuid.UUID
	Email          string
	Cashback       int
}

// ListForCashbackAccrual возвращает подписки, начатые в указанном месяце,
// по которым кэшбек ещё не зачислен.
func (s *Storage) ListForCashbackAccrual(ctx context.Context, year int, month time.Month) ([]*CashbackItem, error) {
	const op = "storage.ListForCashbackAccrual"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.user_uid, u.email, s.cashback
			  FROM user_subscriptions s
			  JOIN users u ON u.uid = s.user_uid
			  WHERE EXTRACT(YEAR FROM s.start_date) = $1
			    AND EXTRACT(MONTH FROM s.start_date) = $2
			    AND s.cashback_credited = false
			    AND s.cashback > 0`
	rows, err := s.DB.QueryContext(ctx, query, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*CashbackItem
	for rows.Next() {
		var item CashbackItem
		if err := rows.Scan(&item.SubscriptionID, &item.UserUID, &item.Email, &item.Cashback); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkCashbackCredited отмечает кэшбек по подписке зачисленным.
func (s *Storage) MarkCashbackCredited(ctx context.Context, id uuid.UUID) error {
	const op = "storage.MarkCashbackCredited"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions SET cashback_credited = true WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPaymentHistory возвращает историю платежей пользователя,
// новые платежи первыми.
func (s *Storage) ListPaymentHistory(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.PaymentHistoryItem, error) {
	const op = "storage.ListPaymentHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, sv.name, t.name, s.expense, s.cashback, s.cashback_credited, s.start_date
			  FROM user_subscriptions s
			  JOIN services sv ON sv.id = s.service_id
			  JOIN tariffs t ON t.id = s.tariff_id
			  WHERE s.user_uid = $1
			  ORDER BY s.start_date DESC, s.id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentHistoryItem
	for rows.Next() {
		var item models.PaymentHistoryItem
		if err := rows.Scan(&item.ID, &item.ServiceName, &item.TariffName,
			&item.Price, &item.Cashback, &item.CashbackCredited, &item.Date); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
