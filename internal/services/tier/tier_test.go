package tier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smilemedia/subscription-hub/internal/models"
)

type UsageRepoMock struct{ mock.Mock }

func (m *UsageRepoMock) GetTrialUsage(ctx context.Context, userUID, serviceID uuid.UUID) (*models.TrialUsage, error) {
	args := m.Called(ctx, userUID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrialUsage), args.Error(1)
}

func (m *UsageRepoMock) GetSpecialUsage(ctx context.Context, userUID, tariffID uuid.UUID) (*models.SpecialUsage, error) {
	args := m.Called(ctx, userUID, tariffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SpecialUsage), args.Error(1)
}

func newTariff(trial, special, standard *models.TariffCondition) *models.Tariff {
	return &models.Tariff{
		ID:               uuid.New(),
		ServiceID:        uuid.New(),
		Name:             "Премиум",
		Condition:        standard,
		SpecialCondition: special,
		TrialPeriod:      trial,
	}
}

func TestResolver_Resolve(t *testing.T) {
	userUID := uuid.New()
	trial := &models.TariffCondition{Count: 7, Unit: models.UnitDay, Price: 1}
	special := &models.TariffCondition{Count: 1, Unit: models.UnitMonth, Price: 99}
	standard := &models.TariffCondition{Count: 1, Unit: models.UnitMonth, Price: 299}

	tests := []struct {
		name       string
		tariff     *models.Tariff
		setupMocks func(m *UsageRepoMock, tariff *models.Tariff)
		wantTier   models.Tier
		wantPrice  int
	}{
		{
			name:   "пробный период не использован",
			tariff: newTariff(trial, special, standard),
			setupMocks: func(m *UsageRepoMock, tariff *models.Tariff) {
				m.On("GetTrialUsage", mock.Anything, userUID, tariff.ServiceID).Return(nil, nil).Once()
			},
			wantTier:  models.TierTrial,
			wantPrice: 1,
		},
		{
			name:   "пробный использован, специальное свободно",
			tariff: newTariff(trial, special, standard),
			setupMocks: func(m *UsageRepoMock, tariff *models.Tariff) {
				m.On("GetTrialUsage", mock.Anything, userUID, tariff.ServiceID).
					Return(&models.TrialUsage{}, nil).Once()
				m.On("GetSpecialUsage", mock.Anything, userUID, tariff.ID).Return(nil, nil).Once()
			},
			wantTier:  models.TierSpecial,
			wantPrice: 99,
		},
		{
			name:   "обе скидки использованы",
			tariff: newTariff(trial, special, standard),
			setupMocks: func(m *UsageRepoMock, tariff *models.Tariff) {
				m.On("GetTrialUsage", mock.Anything, userUID, tariff.ServiceID).
					Return(&models.TrialUsage{}, nil).Once()
				m.On("GetSpecialUsage", mock.Anything, userUID, tariff.ID).
					Return(&models.SpecialUsage{}, nil).Once()
			},
			wantTier:  models.TierStandard,
			wantPrice: 299,
		},
		{
			name:   "у тарифа нет скидочных условий",
			tariff: newTariff(nil, nil, standard),
			setupMocks: func(_ *UsageRepoMock, _ *models.Tariff) {
			},
			wantTier:  models.TierStandard,
			wantPrice: 299,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UsageRepoMock)
			tt.setupMocks(repo, tt.tariff)
			resolver := NewResolver(repo)

			tier, cond, err := resolver.Resolve(context.Background(), userUID, tt.tariff)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, tier)
			assert.Equal(t, tt.wantPrice, cond.Price)

			repo.AssertExpectations(t)
		})
	}
}

func TestResolver_ResolveNoStandardCondition(t *testing.T) {
	repo := new(UsageRepoMock)
	resolver := NewResolver(repo)

	_, _, err := resolver.Resolve(context.Background(), uuid.New(), newTariff(nil, nil, nil))
	assert.ErrorIs(t, err, models.ErrNoStandardCondition)
}

func TestResolver_Identify(t *testing.T) {
	userUID := uuid.New()
	serviceID := uuid.New()
	tariffID := uuid.New()
	end := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	sub := &models.Subscription{
		UserUID:   userUID,
		ServiceID: serviceID,
		TariffID:  tariffID,
		EndDate:   end,
	}

	tests := []struct {
		name       string
		setupMocks func(m *UsageRepoMock)
		wantTier   models.Tier
	}{
		{
			name: "дата окончания совпадает с пробным периодом",
			setupMocks: func(m *UsageRepoMock) {
				m.On("GetTrialUsage", mock.Anything, userUID, serviceID).
					Return(&models.TrialUsage{EndDate: end}, nil).Once()
			},
			wantTier: models.TierTrial,
		},
		{
			name: "пробный период от другого тарифа сервиса",
			setupMocks: func(m *UsageRepoMock) {
				m.On("GetTrialUsage", mock.Anything, userUID, serviceID).
					Return(&models.TrialUsage{EndDate: end.AddDate(0, 0, -15)}, nil).Once()
				m.On("GetSpecialUsage", mock.Anything, userUID, tariffID).
					Return(&models.SpecialUsage{EndDate: end}, nil).Once()
			},
			wantTier: models.TierSpecial,
		},
		{
			name: "нет совпадений — обычное условие",
			setupMocks: func(m *UsageRepoMock) {
				m.On("GetTrialUsage", mock.Anything, userUID, serviceID).Return(nil, nil).Once()
				m.On("GetSpecialUsage", mock.Anything, userUID, tariffID).Return(nil, nil).Once()
			},
			wantTier: models.TierStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UsageRepoMock)
			tt.setupMocks(repo)
			resolver := NewResolver(repo)

			tier, err := resolver.Identify(context.Background(), sub)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, tier)

			repo.AssertExpectations(t)
		})
	}
}
