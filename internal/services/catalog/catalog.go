// Package catalog реализует чтение каталога: сервисы, их тарифы и
// ценовые условия. Карточки сервисов и тарифов кешируются в Redis,
// списки всегда читаются из хранилища.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// cacheTTL время жизни карточки в кеше.
const cacheTTL = 10 * time.Minute

// Repository определяет методы чтения каталога из хранилища.
type Repository interface {
	// ListServices возвращает сервисы каталога с пагинацией, исключая
	// сервисы с активной подпиской пользователя.
	ListServices(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Service, error)
	// ListPopularServices возвращает сервисы по убыванию числа активных подписок.
	ListPopularServices(ctx context.Context, limit, offset int) ([]*models.Service, error)
	// GetService возвращает сервис по ID.
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	// ListTariffs возвращает тарифы сервиса со всеми условиями.
	ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]*models.Tariff, error)
	// GetTariff возвращает тариф по ID со всеми условиями.
	GetTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error)
}

// CacheProvider определяет методы кеша карточек каталога.
type CacheProvider interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service реализует операции чтения каталога.
type Service struct {
	repo  Repository
	cache CacheProvider
	log   *slog.Logger
}

// New создает новый Service.
func New(repo Repository, cache CacheProvider, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// ListServices возвращает сервисы каталога с пагинацией. Сервисы,
// на которые пользователь уже активно подписан, не показываются:
// каталог предлагает только то, что еще можно оформить.
func (s *Service) ListServices(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Service, error) {
	const op = "catalog.ListServices"
	result, err := s.repo.ListServices(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPopularServices возвращает сервисы, упорядоченные по числу
// активных подписок. Рейтинг общий и не зависит от пользователя,
// поэтому список не фильтруется по его подпискам.
func (s *Service) ListPopularServices(ctx context.Context, limit, offset int) ([]*models.Service, error) {
	const op = "catalog.ListPopularServices"
	result, err := s.repo.ListPopularServices(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetService возвращает карточку сервиса, при возможности из кеша.
// Ошибки кеша не прерывают запрос: каталог читается из хранилища.
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	const op = "catalog.GetService"

	key := "service:" + id.String()
	var cached models.Service
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	item, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, key, item, cacheTTL); err != nil {
		s.log.Warn("cache store failed", sl.Err(err))
	}
	return item, nil
}

// ListTariffs возвращает тарифы сервиса. Сначала проверяется, что сервис
// существует, чтобы пустой список не маскировал неизвестный ID.
func (s *Service) ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]*models.Tariff, error) {
	const op = "catalog.ListTariffs"

	if _, err := s.GetService(ctx, serviceID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.repo.ListTariffs(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTariff возвращает карточку тарифа, при возможности из кеша.
func (s *Service) GetTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error) {
	const op = "catalog.GetTariff"

	key := "tariff:" + id.String()
	var cached models.Tariff
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	item, err := s.repo.GetTariff(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, key, item, cacheTTL); err != nil {
		s.log.Warn("cache store failed", sl.Err(err))
	}
	return item, nil
}
