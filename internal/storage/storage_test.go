package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemedia/subscription-hub/internal/models"
)

func TestStorage_CreateSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	fixture := factory.SeedCatalog(t)

	startDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 0, 14)

	sub := &models.Subscription{
		UserUID:     fixture.UserUID,
		ServiceID:   fixture.ServiceID,
		TariffID:    fixture.TariffID,
		StartDate:   startDate,
		EndDate:     endDate,
		Expense:     0,
		Cashback:    0,
		IsActive:    true,
		AutoPay:     true,
		PhoneNumber: "+79991234567",
	}
	trial := &models.TrialUsage{
		UserUID:   fixture.UserUID,
		ServiceID: fixture.ServiceID,
		StartDate: startDate,
		EndDate:   endDate,
	}

	t.Run("успешное создание периода с отметкой пробного периода", func(t *testing.T) {
		id, err := storage.CreateSubscription(context.Background(), sub, trial, nil, nil)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)

		got, err := storage.GetSubscription(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, fixture.UserUID, got.UserUID)
		assert.True(t, got.IsActive)
		assert.True(t, startDate.Equal(got.StartDate))
		assert.True(t, endDate.Equal(got.EndDate))

		usage, err := storage.GetTrialUsage(context.Background(), fixture.UserUID, fixture.ServiceID)
		require.NoError(t, err)
		require.NotNil(t, usage)
	})

	t.Run("повторный пробный период нарушает уникальность и откатывает вставку", func(t *testing.T) {
		var before int
		err := storage.DB.QueryRow("SELECT COUNT(*) FROM user_subscriptions").Scan(&before)
		require.NoError(t, err)

		_, err = storage.CreateSubscription(context.Background(), sub, trial, nil, nil)
		require.Error(t, err)

		var after int
		err = storage.DB.QueryRow("SELECT COUNT(*) FROM user_subscriptions").Scan(&after)
		require.NoError(t, err)
		assert.Equal(t, before, after, "транзакция должна откатиться целиком")
	})

	t.Run("продление деактивирует старый период в той же транзакции", func(t *testing.T) {
		oldID := factory.CreateSubscriptionRow(t, models.Subscription{
			UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
			StartDate: startDate, EndDate: endDate,
			Expense: 300, IsActive: true, AutoPay: true, PhoneNumber: "+79991234568",
		})

		renewal := *sub
		renewal.PhoneNumber = "+79991234568"
		renewal.StartDate = endDate
		renewal.EndDate = endDate.AddDate(0, 0, 30)
		renewal.Expense = 300
		renewal.Cashback = 15

		newID, err := storage.CreateSubscription(context.Background(), &renewal, nil, nil, &oldID)
		require.NoError(t, err)

		old, err := storage.GetSubscription(context.Background(), oldID)
		require.NoError(t, err)
		assert.False(t, old.IsActive)

		got, err := storage.GetSubscription(context.Background(), newID)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		assert.Equal(t, 15, got.Cashback)
	})
}

func TestStorage_ListExpiredAutoPay(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	fixture := factory.SeedCatalog(t)

	today := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	expiredID := factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: today.AddDate(0, -1, 0), EndDate: today.AddDate(0, 0, -1),
		Expense: 300, IsActive: true, AutoPay: true, PhoneNumber: "+79991234567",
	})
	// Активная подписка, срок ещё не вышел
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: today, EndDate: today.AddDate(0, 1, 0),
		Expense: 300, IsActive: true, AutoPay: true, PhoneNumber: "+79991234568",
	})
	// Истекла, но автоплатеж отключен
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: today.AddDate(0, -2, 0), EndDate: today.AddDate(0, 0, -5),
		Expense: 300, IsActive: true, AutoPay: false, PhoneNumber: "+79991234569",
	})

	got, err := storage.ListExpiredAutoPay(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expiredID, got[0].ID)
}

func TestStorage_ListForCashbackAccrual(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	fixture := factory.SeedCatalog(t)

	march := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	subID := factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: march, EndDate: march.AddDate(0, 1, 0),
		Expense: 300, Cashback: 15, IsActive: true, AutoPay: true, PhoneNumber: "+79991234567",
	})
	// Подписка без кэшбека не попадает в начисление
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: march, EndDate: march.AddDate(0, 1, 0),
		Expense: 0, Cashback: 0, IsActive: true, AutoPay: true, PhoneNumber: "+79991234568",
	})
	// Подписка другого месяца
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: march.AddDate(0, 1, 0), EndDate: march.AddDate(0, 2, 0),
		Expense: 300, Cashback: 15, IsActive: true, AutoPay: true, PhoneNumber: "+79991234569",
	})

	got, err := storage.ListForCashbackAccrual(context.Background(), 2025, time.March)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, subID, got[0].SubscriptionID)
	assert.Equal(t, "test@example.com", got[0].Email)
	assert.Equal(t, 15, got[0].Cashback)

	require.NoError(t, storage.MarkCashbackCredited(context.Background(), subID))

	got, err = storage.ListForCashbackAccrual(context.Background(), 2025, time.March)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_ExpensesByCategory(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	fixture := factory.SeedCatalog(t)

	videoCategoryID := factory.CreateCategory(t, "Видео")
	videoServiceID := factory.CreateService(t, "Cinema", nil, videoCategoryID)
	videoTariffID := factory.CreateTariff(t, videoServiceID, "Базовый",
		models.TariffCondition{Count: 1, Unit: models.UnitMonth, Price: 500}, nil, nil)

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: from.AddDate(0, 0, 2), EndDate: from.AddDate(1, 0, 0),
		Expense: 300, IsActive: true, AutoPay: true, PhoneNumber: "+79991234567",
	})
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: videoServiceID, TariffID: videoTariffID,
		StartDate: from.AddDate(0, 0, 5), EndDate: from.AddDate(1, 0, 0),
		Expense: 500, IsActive: true, AutoPay: true, PhoneNumber: "+79991234567",
	})
	// Вне периода
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: videoServiceID, TariffID: videoTariffID,
		StartDate: from.AddDate(0, -1, 0), EndDate: from,
		Expense: 500, IsActive: false, AutoPay: false, PhoneNumber: "+79991234567",
	})

	got, err := storage.ExpensesByCategory(context.Background(), fixture.UserUID, from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Видео", got[0].Name)
	assert.Equal(t, 500, got[0].Expenses)
	assert.Equal(t, "Музыка", got[1].Name)
	assert.Equal(t, 300, got[1].Expenses)
}

func TestStorage_GetTariff(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	fixture := factory.SeedCatalog(t)

	t.Run("тариф со всеми условиями", func(t *testing.T) {
		got, err := storage.GetTariff(context.Background(), fixture.TariffID)
		require.NoError(t, err)

		require.NotNil(t, got.Condition)
		assert.Equal(t, 300, got.Condition.Price)
		assert.Equal(t, models.UnitMonth, got.Condition.Unit)

		require.NotNil(t, got.SpecialCondition)
		assert.Equal(t, 600, got.SpecialCondition.Price)
		assert.Equal(t, 3, got.SpecialCondition.Count)

		require.NotNil(t, got.TrialPeriod)
		assert.Equal(t, 0, got.TrialPeriod.Price)
		assert.Equal(t, models.UnitDay, got.TrialPeriod.Unit)
	})

	t.Run("несуществующий тариф", func(t *testing.T) {
		_, err := storage.GetTariff(context.Background(), uuid.New())
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestStorage_RegisterUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	user := models.User{
		Email:        "new@example.com",
		Username:     "newuser",
		PasswordHash: "hashedpassword",
		Role:         "user",
	}

	uid, err := storage.RegisterUser(context.Background(), user)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, uid)

	got, err := storage.GetUserByUsername(context.Background(), "newuser")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, "new@example.com", got.Email)

	// Дубликат username
	user.Email = "other@example.com"
	_, err = storage.RegisterUser(context.Background(), user)
	require.Error(t, err)

	_, err = storage.GetUserByUsername(context.Background(), "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}
