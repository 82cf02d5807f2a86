package analytics

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smilemedia/subscription-hub/internal/models"
	"github.com/smilemedia/subscription-hub/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ExpensesByCategory(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*models.CategoryExpense, error) {
	args := m.Called(ctx, userUID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CategoryExpense), args.Error(1)
}
func (m *RepoMock) ListUpcomingRenewals(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*storage.RenewalPricing, error) {
	args := m.Called(ctx, userUID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.RenewalPricing), args.Error(1)
}
func (m *RepoMock) CashbackTotal(ctx context.Context, userUID uuid.UUID, from, to *time.Time) (int, error) {
	args := m.Called(ctx, userUID, from, to)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_ExpensesTotal(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, newNoopLogger())

	userUID := uuid.New()
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	repo.On("ExpensesByCategory", mock.Anything, userUID, from, to).
		Return([]*models.CategoryExpense{
			{Name: "Кино", Expenses: 599},
			{Name: "Музыка", Expenses: 299},
		}, nil).Once()

	total, err := svc.ExpensesTotal(context.Background(), userUID, from, to)
	require.NoError(t, err)
	assert.Equal(t, 898, total)

	repo.AssertExpectations(t)
}

func TestService_FutureExpenses(t *testing.T) {
	specialPrice := 99
	tests := []struct {
		name  string
		items []*storage.RenewalPricing
		want  int
	}{
		{
			name: "специальное условие еще не использовано",
			items: []*storage.RenewalPricing{
				{SpecialPrice: &specialPrice, StandardPrice: 299, SpecialUsed: false},
			},
			want: 99,
		},
		{
			name: "специальное условие уже использовано",
			items: []*storage.RenewalPricing{
				{SpecialPrice: &specialPrice, StandardPrice: 299, SpecialUsed: true},
			},
			want: 299,
		},
		{
			name: "у тарифа нет специального условия",
			items: []*storage.RenewalPricing{
				{SpecialPrice: nil, StandardPrice: 299, SpecialUsed: false},
			},
			want: 299,
		},
		{
			name: "смешанный набор подписок",
			items: []*storage.RenewalPricing{
				{SpecialPrice: &specialPrice, StandardPrice: 299, SpecialUsed: false},
				{SpecialPrice: nil, StandardPrice: 500, SpecialUsed: false},
			},
			want: 599,
		},
		{
			name:  "нет истекающих подписок",
			items: []*storage.RenewalPricing{},
			want:  0,
		},
	}

	now := time.Date(2025, 4, 15, 13, 45, 0, 0, time.UTC)
	from := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := New(repo, newNoopLogger())

			userUID := uuid.New()
			repo.On("ListUpcomingRenewals", mock.Anything, userUID, from, to).
				Return(tt.items, nil).Once()

			total, err := svc.FutureExpenses(context.Background(), now, userUID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)

			repo.AssertExpectations(t)
		})
	}

	t.Run("окно прогноза ограничено концом месяца", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		userUID := uuid.New()
		dec := time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)
		repo.On("ListUpcomingRenewals", mock.Anything, userUID,
			time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)).
			Return([]*storage.RenewalPricing{}, nil).Once()

		_, err := svc.FutureExpenses(context.Background(), dec, userUID)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_CashbackTotal(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, newNoopLogger())

	userUID := uuid.New()
	repo.On("CashbackTotal", mock.Anything, userUID, (*time.Time)(nil), (*time.Time)(nil)).
		Return(42, nil).Once()

	total, err := svc.CashbackTotal(context.Background(), userUID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, total)

	repo.AssertExpectations(t)
}
