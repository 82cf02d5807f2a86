package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemedia/subscription-hub/internal/models"
)

func TestStorage_ListServices(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	fixture := factory.SeedCatalog(t)

	categoryID := factory.CreateCategory(t, "Видео")
	otherServiceID := factory.CreateService(t, "CinemaGo", nil, categoryID)

	startDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("без подписок виден весь каталог", func(t *testing.T) {
		items, err := storage.ListServices(context.Background(), fixture.UserUID, 20, 0)
		require.NoError(t, err)
		require.Len(t, items, 2)
	})

	t.Run("сервис с активной подпиской пользователя скрывается", func(t *testing.T) {
		subID := factory.CreateSubscriptionRow(t, models.Subscription{
			UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
			StartDate: startDate, EndDate: startDate.AddDate(0, 1, 0),
			Expense: 300, IsActive: true, AutoPay: true, PhoneNumber: "+79991234567",
		})

		items, err := storage.ListServices(context.Background(), fixture.UserUID, 20, 0)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, otherServiceID, items[0].ID)

		// Для другого пользователя каталог остается полным
		otherUID := factory.CreateUser(t, "seconduser", "second@example.com")
		items, err = storage.ListServices(context.Background(), otherUID, 20, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		// После отмены подписки сервис возвращается в каталог
		_, err = storage.DB.Exec("UPDATE user_subscriptions SET is_active = false WHERE id = $1", subID)
		require.NoError(t, err)

		items, err = storage.ListServices(context.Background(), fixture.UserUID, 20, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestStorage_ListPopularServices(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	fixture := factory.SeedCatalog(t)

	categoryID := factory.CreateCategory(t, "Видео")
	popularID := factory.CreateService(t, "CinemaGo", nil, categoryID)
	popularTariffID := factory.CreateTariff(t, popularID, "Базовый",
		models.TariffCondition{Count: 1, Unit: models.UnitMonth, Price: 500}, nil, nil)

	startDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, 0)

	// Две активные подписки на CinemaGo, одна на Melody и одна неактивная,
	// которая не должна влиять на рейтинг
	for _, username := range []string{"first", "second"} {
		uid := factory.CreateUser(t, username, username+"@example.com")
		factory.CreateSubscriptionRow(t, models.Subscription{
			UserUID: uid, ServiceID: popularID, TariffID: popularTariffID,
			StartDate: startDate, EndDate: endDate,
			Expense: 500, IsActive: true, PhoneNumber: "+79991234567",
		})
	}
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: fixture.UserUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: startDate, EndDate: endDate,
		Expense: 300, IsActive: true, PhoneNumber: "+79991234567",
	})
	inactiveUID := factory.CreateUser(t, "third", "third@example.com")
	factory.CreateSubscriptionRow(t, models.Subscription{
		UserUID: inactiveUID, ServiceID: fixture.ServiceID, TariffID: fixture.TariffID,
		StartDate: startDate.AddDate(0, -2, 0), EndDate: startDate.AddDate(0, -1, 0),
		Expense: 300, IsActive: false, PhoneNumber: "+79991234567",
	})

	items, err := storage.ListPopularServices(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, popularID, items[0].ID, "первым идет сервис с наибольшим числом активных подписок")
	assert.Equal(t, fixture.ServiceID, items[1].ID)
}
