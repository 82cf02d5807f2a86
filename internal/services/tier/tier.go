// Package tier реализует выбор ценового условия для периода подписки.
//
// При оформлении и продлении условия проверяются в строгом порядке:
// пробный период (если не использован для сервиса), специальное условие
// (если не использовано для тарифа), обычное условие. Выбранное условие
// фиксируется в записи подписки и после создания не пересчитывается.
package tier

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/models"
)

// UsageRepository определяет методы чтения отметок об использовании
// скидочных условий.
type UsageRepository interface {
	// GetTrialUsage возвращает отметку о пробном периоде или nil.
	GetTrialUsage(ctx context.Context, userUID, serviceID uuid.UUID) (*models.TrialUsage, error)
	// GetSpecialUsage возвращает отметку о специальном условии или nil.
	GetSpecialUsage(ctx context.Context, userUID, tariffID uuid.UUID) (*models.SpecialUsage, error)
}

// Resolver выбирает ценовое условие тарифа для пользователя.
type Resolver struct {
	usage UsageRepository
}

// NewResolver создает новый Resolver.
func NewResolver(usage UsageRepository) *Resolver {
	return &Resolver{usage: usage}
}

// Resolve возвращает тип условия и само условие, по которому будет
// оформлен очередной период подписки пользователя на тариф.
//
// Порядок строгий: пробный период имеет приоритет над специальным
// условием, специальное — над обычным. Каждая скидка одноразовая:
// пробный период — на сервис, специальное условие — на тариф.
func (r *Resolver) Resolve(ctx context.Context, userUID uuid.UUID, tariff *models.Tariff) (models.Tier, models.TariffCondition, error) {
	const op = "tier.Resolve"

	if tariff.TrialPeriod != nil {
		used, err := r.usage.GetTrialUsage(ctx, userUID, tariff.ServiceID)
		if err != nil {
			return "", models.TariffCondition{}, fmt.Errorf("%s: %w", op, err)
		}
		if used == nil {
			return models.TierTrial, *tariff.TrialPeriod, nil
		}
	}

	if tariff.SpecialCondition != nil {
		used, err := r.usage.GetSpecialUsage(ctx, userUID, tariff.ID)
		if err != nil {
			return "", models.TariffCondition{}, fmt.Errorf("%s: %w", op, err)
		}
		if used == nil {
			return models.TierSpecial, *tariff.SpecialCondition, nil
		}
	}

	if tariff.Condition == nil {
		return "", models.TariffCondition{}, fmt.Errorf("%s: %w", op, models.ErrNoStandardCondition)
	}
	return models.TierStandard, *tariff.Condition, nil
}

// Identify определяет, по какому условию был оформлен уже существующий
// период подписки. Это проверка идентичности по дате окончания, а не
// повторный прогон алгоритма выбора: исходный выбор — неизменяемая
// история. Период считается пробным или специальным, только если дата
// окончания подписки совпадает с датой окончания соответствующей отметки.
func (r *Resolver) Identify(ctx context.Context, sub *models.Subscription) (models.Tier, error) {
	const op = "tier.Identify"

	trial, err := r.usage.GetTrialUsage(ctx, sub.UserUID, sub.ServiceID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if trial != nil && trial.EndDate.Equal(sub.EndDate) {
		return models.TierTrial, nil
	}

	special, err := r.usage.GetSpecialUsage(ctx, sub.UserUID, sub.TariffID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if special != nil && special.EndDate.Equal(sub.EndDate) {
		return models.TierSpecial, nil
	}

	return models.TierStandard, nil
}
