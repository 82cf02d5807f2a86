package scheduler

import (
	"context"
	"errors"
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

func (m *RepoMock) ListExpiredAutoPay(ctx context.Context, today time.Time) ([]*models.Subscription, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}
func (m *RepoMock) ListForCashbackAccrual(ctx context.Context, year int, month time.Month) ([]*storage.CashbackItem, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.CashbackItem), args.Error(1)
}
func (m *RepoMock) MarkCashbackCredited(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type RenewerMock struct{ mock.Mock }

func (m *RenewerMock) Renew(ctx context.Context, now time.Time, sub *models.Subscription) (*models.Subscription, error) {
	args := m.Called(ctx, now, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type BankMock struct{ mock.Mock }

func (m *BankMock) AccrueCashback(ctx context.Context, userEmail string, price int) error {
	return m.Called(ctx, userEmail, price).Error(0)
}

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUserEmail(ctx context.Context, userUID uuid.UUID) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, event models.BillingEvent) error {
	return m.Called(routingKey, event).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var now = time.Date(2025, 4, 15, 3, 0, 0, 0, time.UTC)
var today = time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

func TestScheduler_RunAutopay(t *testing.T) {
	t.Run("отказ по одной подписке не прерывает пакет", func(t *testing.T) {
		repo := new(RepoMock)
		renewer := new(RenewerMock)
		users := new(UsersMock)
		publisher := new(PublisherMock)
		sched := New(repo, renewer, new(BankMock), users, publisher, newNoopLogger())

		good := &models.Subscription{ID: uuid.New(), UserUID: uuid.New(), Expense: 200}
		bad := &models.Subscription{ID: uuid.New(), UserUID: uuid.New(), Expense: 300}
		repo.On("ListExpiredAutoPay", mock.Anything, today).
			Return([]*models.Subscription{bad, good}, nil).Once()

		users.On("GetUserEmail", mock.Anything, bad.UserUID).Return("bad@example.com", nil).Once()
		users.On("GetUserEmail", mock.Anything, good.UserUID).Return("good@example.com", nil).Once()

		renewer.On("Renew", mock.Anything, now, bad).
			Return(nil, models.ErrPaymentFailed).Once()
		renewer.On("Renew", mock.Anything, now, good).
			Return(&models.Subscription{ID: uuid.New(), Expense: 200}, nil).Once()

		publisher.On("Publish", "renewal", mock.MatchedBy(func(e models.BillingEvent) bool {
			return e.Kind == "renewal.failed" && e.Email == "bad@example.com" && e.Amount == 300
		})).Return(nil).Once()
		publisher.On("Publish", "renewal", mock.MatchedBy(func(e models.BillingEvent) bool {
			return e.Kind == "renewal.success" && e.Email == "good@example.com" && e.Amount == 200
		})).Return(nil).Once()

		renewed, failed, err := sched.RunAutopay(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, renewed)
		assert.Equal(t, 1, failed)

		repo.AssertExpectations(t)
		renewer.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("пустой пакет", func(t *testing.T) {
		repo := new(RepoMock)
		renewer := new(RenewerMock)
		sched := New(repo, renewer, new(BankMock), new(UsersMock), new(PublisherMock), newNoopLogger())

		repo.On("ListExpiredAutoPay", mock.Anything, today).
			Return([]*models.Subscription{}, nil).Once()

		renewed, failed, err := sched.RunAutopay(context.Background(), now)
		require.NoError(t, err)
		assert.Zero(t, renewed)
		assert.Zero(t, failed)
		renewer.AssertNotCalled(t, "Renew", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ошибка чтения пакета", func(t *testing.T) {
		repo := new(RepoMock)
		sched := New(repo, new(RenewerMock), new(BankMock), new(UsersMock), new(PublisherMock), newNoopLogger())

		repo.On("ListExpiredAutoPay", mock.Anything, today).
			Return(nil, errors.New("connection refused")).Once()

		_, _, err := sched.RunAutopay(context.Background(), now)
		assert.Error(t, err)
	})
}

func TestScheduler_RunCashbackAccrual(t *testing.T) {
	t.Run("начисление за прошлый месяц", func(t *testing.T) {
		repo := new(RepoMock)
		bank := new(BankMock)
		publisher := new(PublisherMock)
		sched := New(repo, new(RenewerMock), bank, new(UsersMock), publisher, newNoopLogger())

		item := &storage.CashbackItem{
			SubscriptionID: uuid.New(),
			UserUID:        uuid.New(),
			Email:          "user@example.com",
			Cashback:       10,
		}
		// запуск в апреле обрабатывает март
		repo.On("ListForCashbackAccrual", mock.Anything, 2025, time.March).
			Return([]*storage.CashbackItem{item}, nil).Once()
		bank.On("AccrueCashback", mock.Anything, item.Email, 10).Return(nil).Once()
		repo.On("MarkCashbackCredited", mock.Anything, item.SubscriptionID).Return(nil).Once()
		publisher.On("Publish", "cashback", mock.MatchedBy(func(e models.BillingEvent) bool {
			return e.Kind == "cashback.credited" && e.Email == item.Email && e.Amount == 10
		})).Return(nil).Once()

		credited, failed, err := sched.RunCashbackAccrual(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, credited)
		assert.Zero(t, failed)

		repo.AssertExpectations(t)
		bank.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("январский запуск обрабатывает декабрь", func(t *testing.T) {
		repo := new(RepoMock)
		sched := New(repo, new(RenewerMock), new(BankMock), new(UsersMock), new(PublisherMock), newNoopLogger())

		repo.On("ListForCashbackAccrual", mock.Anything, 2024, time.December).
			Return([]*storage.CashbackItem{}, nil).Once()

		january := time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)
		_, _, err := sched.RunCashbackAccrual(context.Background(), january)
		require.NoError(t, err)

		repo.AssertExpectations(t)
	})

	t.Run("отказ банка не ставит отметку о зачислении", func(t *testing.T) {
		repo := new(RepoMock)
		bank := new(BankMock)
		sched := New(repo, new(RenewerMock), bank, new(UsersMock), new(PublisherMock), newNoopLogger())

		item := &storage.CashbackItem{
			SubscriptionID: uuid.New(),
			UserUID:        uuid.New(),
			Email:          "user@example.com",
			Cashback:       25,
		}
		repo.On("ListForCashbackAccrual", mock.Anything, 2025, time.March).
			Return([]*storage.CashbackItem{item}, nil).Once()
		bank.On("AccrueCashback", mock.Anything, item.Email, 25).
			Return(models.ErrCashbackFailed).Once()

		credited, failed, err := sched.RunCashbackAccrual(context.Background(), now)
		require.NoError(t, err)
		assert.Zero(t, credited)
		assert.Equal(t, 1, failed)
		repo.AssertNotCalled(t, "MarkCashbackCredited", mock.Anything, mock.Anything)
	})
}
