// Package analytics реализует аналитику расходов пользователя:
// суммы по категориям, общая сумма за период, прогноз будущих
// списаний и накопленный кэшбек.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/models"
	"github.com/smilemedia/subscription-hub/internal/storage"
)

// Repository определяет методы чтения аналитических срезов из хранилища.
type Repository interface {
	// ExpensesByCategory возвращает расходы пользователя по категориям за период.
	ExpensesByCategory(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*models.CategoryExpense, error)
	// ListUpcomingRenewals возвращает цены продления активных подписок
	// с автоплатежом, истекающих в период [from, to].
	ListUpcomingRenewals(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*storage.RenewalPricing, error)
	// CashbackTotal возвращает суммарный кэшбек пользователя.
	CashbackTotal(ctx context.Context, userUID uuid.UUID, from, to *time.Time) (int, error)
}

// Service реализует аналитику расходов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ExpensesByCategory возвращает расходы пользователя по категориям
// за период [from, to] по дате начала подписки.
func (s *Service) ExpensesByCategory(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*models.CategoryExpense, error) {
	const op = "analytics.ExpensesByCategory"
	result, err := s.repo.ExpensesByCategory(ctx, userUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ExpensesTotal возвращает общую сумму расходов пользователя за период.
func (s *Service) ExpensesTotal(ctx context.Context, userUID uuid.UUID, from, to time.Time) (int, error) {
	const op = "analytics.ExpensesTotal"
	items, err := s.repo.ExpensesByCategory(ctx, userUID, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var total int
	for _, item := range items {
		total += item.Expenses
	}
	return total, nil
}

// FutureExpenses возвращает прогноз списаний по подпискам с автоплатежом,
// истекающим с сегодняшнего дня до конца текущего календарного месяца.
//
// Для каждой подписки берется цена, по которой пройдет продление:
// специальная, если у тарифа есть специальное условие и пользователь его
// еще не использовал, иначе обычная. Пробный период в прогнозе не
// участвует — активная подписка означает, что он уже израсходован.
func (s *Service) FutureExpenses(ctx context.Context, now time.Time, userUID uuid.UUID) (int, error) {
	const op = "analytics.FutureExpenses"

	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	items, err := s.repo.ListUpcomingRenewals(ctx, userUID, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	for _, item := range items {
		if item.SpecialPrice != nil && !item.SpecialUsed {
			total += *item.SpecialPrice
			continue
		}
		total += item.StandardPrice
	}
	return total, nil
}

// CashbackTotal возвращает суммарный кэшбек пользователя, опционально
// ограниченный периодом по дате начала подписки.
func (s *Service) CashbackTotal(ctx context.Context, userUID uuid.UUID, from, to *time.Time) (int, error) {
	const op = "analytics.CashbackTotal"
	total, err := s.repo.CashbackTotal(ctx, userUID, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
