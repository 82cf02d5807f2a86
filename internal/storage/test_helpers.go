package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/smilemedia/subscription-hub/internal/migrations"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
// и применяет к ней миграции проекта.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			).WithDeadline(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	require.NoError(t, migrations.Run(storage.DB, "../../migrations"), "failed to run migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, username, email string) uuid.UUID {
	var uid uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, username, password_hash, role)
		VALUES ($1, $2, $3, $4) RETURNING uid`,
		email, username, "hashedpassword", "user").Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateCategory создает категорию сервисов
func (f *TestDataFactory) CreateCategory(t *testing.T, name string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO categories (name) VALUES ($1) RETURNING id`,
		name).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateService создает сервис каталога
func (f *TestDataFactory) CreateService(t *testing.T, name string, cashback *int, categoryID int) uuid.UUID {
	var id uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO services (name, full_name, description, cashback, category_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		name, name+" Full", "", cashback, categoryID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTariff создает тариф с обычным условием и, опционально,
// со специальным условием и пробным периодом
func (f *TestDataFactory) CreateTariff(t *testing.T, serviceID uuid.UUID, name string,
	condition models.TariffCondition, special, trial *models.TariffCondition) uuid.UUID {
	var id uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO tariffs (service_id, name, description)
		VALUES ($1, $2, $3) RETURNING id`,
		serviceID, name, "").Scan(&id)
	require.NoError(t, err)

	_, err = f.storage.DB.Exec(`INSERT INTO tariff_conditions (tariff_id, count, unit, price)
		VALUES ($1, $2, $3, $4)`,
		id, condition.Count, string(condition.Unit), condition.Price)
	require.NoError(t, err)

	if special != nil {
		_, err = f.storage.DB.Exec(`INSERT INTO tariff_special_conditions (tariff_id, count, unit, price)
			VALUES ($1, $2, $3, $4)`,
			id, special.Count, string(special.Unit), special.Price)
		require.NoError(t, err)
	}
	if trial != nil {
		_, err = f.storage.DB.Exec(`INSERT INTO tariff_trial_periods (tariff_id, count, unit, price)
			VALUES ($1, $2, $3, $4)`,
			id, trial.Count, string(trial.Unit), trial.Price)
		require.NoError(t, err)
	}
	return id
}

// CreateSubscriptionRow вставляет период подписки напрямую, минуя
// транзакционное создание
func (f *TestDataFactory) CreateSubscriptionRow(t *testing.T, sub models.Subscription) uuid.UUID {
	var id uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO user_subscriptions
		(user_uid, service_id, tariff_id, start_date, end_date, expense, cashback,
		 cashback_credited, is_active, auto_pay, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		sub.UserUID, sub.ServiceID, sub.TariffID, sub.StartDate, sub.EndDate,
		sub.Expense, sub.Cashback, sub.CashbackCredited, sub.IsActive, sub.AutoPay,
		sub.PhoneNumber).Scan(&id)
	require.NoError(t, err)
	return id
}

// CatalogFixture стандартный набор каталога для тестов: пользователь,
// категория, сервис с кэшбеком и тариф с полным набором условий
type CatalogFixture struct {
	UserUID   uuid.UUID
	ServiceID uuid.UUID
	TariffID  uuid.UUID
}

// SeedCatalog наполняет БД стандартным набором каталога
func (f *TestDataFactory) SeedCatalog(t *testing.T) CatalogFixture {
	cashback := 5
	categoryID := f.CreateCategory(t, "Музыка")
	serviceID := f.CreateService(t, "Melody", &cashback, categoryID)
	tariffID := f.CreateTariff(t, serviceID, "Премиум",
		models.TariffCondition{Count: 1, Unit: models.UnitMonth, Price: 300},
		&models.TariffCondition{Count: 3, Unit: models.UnitMonth, Price: 600},
		&models.TariffCondition{Count: 14, Unit: models.UnitDay, Price: 0})

	return CatalogFixture{
		UserUID:   f.CreateUser(t, "testuser", "test@example.com"),
		ServiceID: serviceID,
		TariffID:  tariffID,
	}
}
