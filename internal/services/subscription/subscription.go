// Package subscription содержит бизнес-логику жизненного цикла подписки:
// оформление, отключение автоплатежа, возобновление и продление.
//
// История подписок append-only: продление никогда не изменяет дату
// окончания существующей записи, а создает новую запись и деактивирует
// старую. Ценовое условие периода выбирается в момент оформления или
// продления и после этого не пересчитывается.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/lib/period"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Номер телефона в формате +79XXXXXXXXX.
var phoneRe = regexp.MustCompile(`^\+79[0-9]{9}$`)

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// GetSubscription возвращает подписку по ID.
	GetSubscription(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	// ExistsSubscription проверяет наличие активной подписки (user, tariff, phone).
	ExistsSubscription(ctx context.Context, userUID, tariffID uuid.UUID, phoneNumber string) (bool, error)
	// ExistsActiveAutoPay проверяет наличие активной подписки с автоплатежом по тарифу.
	ExistsActiveAutoPay(ctx context.Context, userUID, tariffID uuid.UUID) (bool, error)
	// SetAutoPay выставляет флаг автоплатежа.
	SetAutoPay(ctx context.Context, id uuid.UUID, autoPay bool) (int, error)
	// DeactivateSubscription помечает подписку неактивной.
	DeactivateSubscription(ctx context.Context, id uuid.UUID) (int, error)
	// CreateSubscription атомарно создает период подписки с отметками об
	// использовании скидок и опциональной деактивацией старой записи.
	CreateSubscription(ctx context.Context, sub *models.Subscription,
		trial *models.TrialUsage, special *models.SpecialUsage, deactivateID *uuid.UUID) (uuid.UUID, error)
	// ListSubscriptions возвращает подписки пользователя с пагинацией.
	ListSubscriptions(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Subscription, error)
	// ListPaymentHistory возвращает историю платежей пользователя.
	ListPaymentHistory(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.PaymentHistoryItem, error)
}

// CatalogRepository определяет методы чтения каталога.
type CatalogRepository interface {
	GetTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// UserRepository определяет методы чтения пользователей.
type UserRepository interface {
	GetUserEmail(ctx context.Context, userUID uuid.UUID) (string, error)
}

// Bank описывает платежного партнера.
type Bank interface {
	// Pay списывает оплату подписки. Возвращает models.ErrPaymentFailed при отказе.
	Pay(ctx context.Context, userEmail string, price int) error
}

// TierResolver выбирает ценовое условие для периода подписки.
type TierResolver interface {
	Resolve(ctx context.Context, userUID uuid.UUID, tariff *models.Tariff) (models.Tier, models.TariffCondition, error)
}

// Service реализует жизненный цикл подписки.
type Service struct {
	repo     Repository
	catalog  CatalogRepository
	users    UserRepository
	bank     Bank
	resolver TierResolver
	log      *slog.Logger
}

// New создает новый Service.
func New(repo Repository, catalog CatalogRepository, users UserRepository,
	bank Bank, resolver TierResolver, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		users:    users,
		bank:     bank,
		resolver: resolver,
		log:      log,
	}
}

// Cashback возвращает размер кэшбека за период: floor(price*percent/100)
// для обычного условия, ноль для пробного периода и специального условия.
func Cashback(tier models.Tier, price int, cashbackPercent *int) int {
	if tier != models.TierStandard || cashbackPercent == nil {
		return 0
	}
	return price * *cashbackPercent / 100
}

// Subscribe оформляет подписку пользователя на тариф.
//
// Валидация выполняется до обращения к банку: формат номера телефона и
// отсутствие активной подписки на тот же тариф с тем же номером. Оплата
// списывается до записи в хранилище: при отказе банка не создается ни
// одной строки.
func (s *Service) Subscribe(ctx context.Context, now time.Time, userUID uuid.UUID, req models.DummySubscription) (*models.Subscription, error) {
	const op = "subscription.Subscribe"

	if !phoneRe.MatchString(req.PhoneNumber) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidPhone)
	}
	tariffID, err := uuid.Parse(req.TariffID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrNotFound, err)
	}

	tariff, err := s.catalog.GetTariff(ctx, tariffID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.repo.ExistsSubscription(ctx, userUID, tariff.ID, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateSubscription)
	}

	sub, trial, special, err := s.buildPeriod(ctx, now, userUID, tariff, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email, err := s.users.GetUserEmail(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.bank.Pay(ctx, email, sub.Expense); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	newID, err := s.repo.CreateSubscription(ctx, sub, trial, special, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = newID

	s.log.Info("created new subscription",
		slog.String("id", newID.String()),
		slog.String("tariff_id", tariff.ID.String()))
	return sub, nil
}

// Cancel отключает автоплатеж подписки. Подписка остается активной
// до естественного окончания периода. Операция идемпотентна и не
// обращается к внешним сервисам.
func (s *Service) Cancel(ctx context.Context, userUID, subID uuid.UUID) (*models.Subscription, error) {
	const op = "subscription.Cancel"

	sub, err := s.repo.GetSubscription(ctx, subID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.UserUID != userUID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotOwner)
	}

	if _, err = s.repo.SetAutoPay(ctx, subID, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.AutoPay = false

	s.log.Info("auto pay disabled", slog.String("id", subID.String()))
	return sub, nil
}

// Resume возобновляет подписку. Если срок действия еще не истек,
// включается автоплатеж существующей записи. Если истек — оформляется
// новый период, как при продлении. Повторное возобновление при уже
// активной подписке с автоплатежом по тому же тарифу отклоняется.
func (s *Service) Resume(ctx context.Context, now time.Time, userUID, subID uuid.UUID) (*models.Subscription, error) {
	const op = "subscription.Resume"

	sub, err := s.repo.GetSubscription(ctx, subID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.UserUID != userUID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotOwner)
	}

	active, err := s.repo.ExistsActiveAutoPay(ctx, userUID, sub.TariffID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if active {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAlreadyResumed)
	}

	today := now.Truncate(24 * time.Hour)
	if !sub.EndDate.Before(today) {
		if _, err = s.repo.SetAutoPay(ctx, subID, true); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub.AutoPay = true
		s.log.Info("auto pay enabled", slog.String("id", subID.String()))
		return sub, nil
	}

	renewed, err := s.Renew(ctx, now, sub)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return renewed, nil
}

// Renew продлевает истекшую подписку: старая запись деактивируется,
// условие выбирается заново (право на скидки могло измениться),
// списывается оплата и создается новая запись с тем же номером телефона.
//
// Старая запись деактивируется до обращения к банку: при отказе в оплате
// новая запись не создается и обслуживание прекращается — долг не
// накапливается.
func (s *Service) Renew(ctx context.Context, now time.Time, sub *models.Subscription) (*models.Subscription, error) {
	const op = "subscription.Renew"

	if _, err := s.repo.DeactivateSubscription(ctx, sub.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tariff, err := s.catalog.GetTariff(ctx, sub.TariffID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next, trial, special, err := s.buildPeriod(ctx, now, sub.UserUID, tariff, sub.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email, err := s.users.GetUserEmail(ctx, sub.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.bank.Pay(ctx, email, next.Expense); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	newID, err := s.repo.CreateSubscription(ctx, next, trial, special, &sub.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	next.ID = newID

	s.log.Info("renewed subscription",
		slog.String("old_id", sub.ID.String()),
		slog.String("new_id", newID.String()))
	return next, nil
}

// buildPeriod выбирает ценовое условие и собирает запись нового периода
// вместе с отметками об использовании скидок.
func (s *Service) buildPeriod(ctx context.Context, now time.Time, userUID uuid.UUID,
	tariff *models.Tariff, phoneNumber string) (*models.Subscription, *models.TrialUsage, *models.SpecialUsage, error) {
	tr, cond, err := s.resolver.Resolve(ctx, userUID, tariff)
	if err != nil {
		return nil, nil, nil, err
	}

	svc, err := s.catalog.GetService(ctx, tariff.ServiceID)
	if err != nil {
		return nil, nil, nil, err
	}

	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endDate := period.EndDate(startDate, cond)

	sub := &models.Subscription{
		UserUID:     userUID,
		ServiceID:   tariff.ServiceID,
		TariffID:    tariff.ID,
		StartDate:   startDate,
		EndDate:     endDate,
		Expense:     cond.Price,
		Cashback:    Cashback(tr, cond.Price, svc.Cashback),
		IsActive:    true,
		AutoPay:     true,
		PhoneNumber: phoneNumber,
	}

	var trial *models.TrialUsage
	var special *models.SpecialUsage
	switch tr {
	case models.TierTrial:
		trial = &models.TrialUsage{
			UserUID:   userUID,
			ServiceID: tariff.ServiceID,
			StartDate: startDate,
			EndDate:   endDate,
		}
	case models.TierSpecial:
		special = &models.SpecialUsage{
			UserUID:   userUID,
			TariffID:  tariff.ID,
			StartDate: startDate,
			EndDate:   endDate,
		}
	}
	return sub, trial, special, nil
}

// List возвращает подписки пользователя с пагинацией.
func (s *Service) List(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	const op = "subscription.List"
	result, err := s.repo.ListSubscriptions(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Read возвращает подписку пользователя по ID.
func (s *Service) Read(ctx context.Context, userUID, subID uuid.UUID) (*models.Subscription, error) {
	const op = "subscription.Read"
	sub, err := s.repo.GetSubscription(ctx, subID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.UserUID != userUID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotOwner)
	}
	return sub, nil
}

// PaymentHistory возвращает историю платежей пользователя.
func (s *Service) PaymentHistory(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.PaymentHistoryItem, error) {
	const op = "subscription.PaymentHistory"
	result, err := s.repo.ListPaymentHistory(ctx, userUID, limit, offset)
	if err != nil {
		s.log.Error("failed to list payment history", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
