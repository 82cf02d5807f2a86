// Package scheduler реализует фоновые задачи биллинга: ежедневное
// продление истекших подписок с автоплатежом и ежемесячное начисление
// кэшбека за прошлый месяц.
//
// Ошибка по одной подписке не прерывает обработку остальных: каждая
// запись пакета обрабатывается независимо.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
	"github.com/smilemedia/subscription-hub/internal/storage"
)

var (
	renewalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_renewals_total",
		Help: "Autopay renewal attempts by result.",
	}, []string{"result"})

	cashbackAccrualsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_cashback_accruals_total",
		Help: "Monthly cashback accrual attempts by result.",
	}, []string{"result"})
)

// Repository определяет методы чтения пакетов для фоновых задач.
type Repository interface {
	// ListExpiredAutoPay возвращает активные подписки с автоплатежом,
	// истекшие к дате today.
	ListExpiredAutoPay(ctx context.Context, today time.Time) ([]*models.Subscription, error)
	// ListForCashbackAccrual возвращает подписки месяца с незачисленным кэшбеком.
	ListForCashbackAccrual(ctx context.Context, year int, month time.Month) ([]*storage.CashbackItem, error)
	// MarkCashbackCredited отмечает кэшбек подписки зачисленным.
	MarkCashbackCredited(ctx context.Context, id uuid.UUID) error
}

// Renewer продлевает подписку на новый период.
type Renewer interface {
	Renew(ctx context.Context, now time.Time, sub *models.Subscription) (*models.Subscription, error)
}

// Bank начисляет кэшбек через банк-партнер.
type Bank interface {
	AccrueCashback(ctx context.Context, userEmail string, price int) error
}

// UserRepository определяет чтение почты пользователя для уведомлений.
type UserRepository interface {
	GetUserEmail(ctx context.Context, userUID uuid.UUID) (string, error)
}

// EventPublisher публикует события биллинга для воркера уведомлений.
type EventPublisher interface {
	Publish(routingKey string, event models.BillingEvent) error
}

// Scheduler выполняет фоновые задачи биллинга.
type Scheduler struct {
	repo      Repository
	renewer   Renewer
	bank      Bank
	users     UserRepository
	publisher EventPublisher
	log       *slog.Logger
}

// New создает новый Scheduler.
func New(repo Repository, renewer Renewer, bank Bank, users UserRepository,
	publisher EventPublisher, log *slog.Logger) *Scheduler {
	return &Scheduler{
		repo:      repo,
		renewer:   renewer,
		bank:      bank,
		users:     users,
		publisher: publisher,
		log:       log,
	}
}

// RunAutopay продлевает все активные подписки с автоплатежом, истекшие
// к моменту now. Возвращает количество успешных продлений и количество
// отказов. Ошибка возвращается только если пакет не удалось прочитать.
func (s *Scheduler) RunAutopay(ctx context.Context, now time.Time) (renewed, failed int, err error) {
	const op = "scheduler.RunAutopay"

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	items, err := s.repo.ListExpiredAutoPay(ctx, today)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("autopay batch started", slog.Int("count", len(items)))

	for _, sub := range items {
		email, err := s.users.GetUserEmail(ctx, sub.UserUID)
		if err != nil {
			s.log.Warn("failed to get user email", sl.UID(sub.UserUID), sl.Err(err))
		}

		next, err := s.renewer.Renew(ctx, now, sub)
		if err != nil {
			failed++
			renewalsTotal.WithLabelValues("failed").Inc()
			s.log.Error("renewal failed", sl.UID(sub.UserUID),
				slog.String("subscription_id", sub.ID.String()), sl.Err(err))
			s.publishEvent("renewal", models.BillingEvent{
				Kind:   "renewal.failed",
				Email:  email,
				Amount: sub.Expense,
				Date:   today,
			}, sub.UserUID)
			continue
		}

		renewed++
		renewalsTotal.WithLabelValues("success").Inc()
		s.publishEvent("renewal", models.BillingEvent{
			Kind:   "renewal.success",
			Email:  email,
			Amount: next.Expense,
			Date:   today,
		}, sub.UserUID)
	}

	s.log.Info("autopay batch finished",
		slog.Int("renewed", renewed), slog.Int("failed", failed))
	return renewed, failed, nil
}

// RunCashbackAccrual начисляет кэшбек по подпискам, начатым в прошлом
// календарном месяце относительно now. Отметка о зачислении ставится
// только после успешного ответа банка: при сбое строка попадет в
// следующий запуск.
func (s *Scheduler) RunCashbackAccrual(ctx context.Context, now time.Time) (credited, failed int, err error) {
	const op = "scheduler.RunCashbackAccrual"

	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	items, err := s.repo.ListForCashbackAccrual(ctx, prev.Year(), prev.Month())
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("cashback batch started",
		slog.Int("count", len(items)), slog.String("month", prev.Format("2006-01")))

	for _, item := range items {
		if err := s.bank.AccrueCashback(ctx, item.Email, item.Cashback); err != nil {
			failed++
			cashbackAccrualsTotal.WithLabelValues("failed").Inc()
			s.log.Error("cashback accrual failed", sl.UID(item.UserUID),
				slog.String("subscription_id", item.SubscriptionID.String()), sl.Err(err))
			continue
		}
		if err := s.repo.MarkCashbackCredited(ctx, item.SubscriptionID); err != nil {
			failed++
			cashbackAccrualsTotal.WithLabelValues("failed").Inc()
			s.log.Error("failed to mark cashback credited",
				slog.String("subscription_id", item.SubscriptionID.String()), sl.Err(err))
			continue
		}

		credited++
		cashbackAccrualsTotal.WithLabelValues("success").Inc()
		s.publishEvent("cashback", models.BillingEvent{
			Kind:   "cashback.credited",
			Email:  item.Email,
			Amount: item.Cashback,
			Date:   prev,
		}, item.UserUID)
	}

	s.log.Info("cashback batch finished",
		slog.Int("credited", credited), slog.Int("failed", failed))
	return credited, failed, nil
}

// publishEvent публикует событие биллинга. Очередь уведомлений не
// участвует в биллинге: ошибка публикации только логируется.
func (s *Scheduler) publishEvent(routingKey string, event models.BillingEvent, userUID uuid.UUID) {
	if err := s.publisher.Publish(routingKey, event); err != nil {
		s.log.Warn("failed to publish billing event",
			slog.String("kind", event.Kind), sl.UID(userUID), sl.Err(err))
	}
}
