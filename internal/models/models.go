// Package models содержит доменные структуры каталога сервисов,
// тарифов и подписок пользователя, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit единица измерения периода тарифа: день, месяц или год.
type Unit string

const (
	// UnitDay день
	UnitDay Unit = "D"
	// UnitMonth месяц
	UnitMonth Unit = "M"
	// UnitYear год
	UnitYear Unit = "Y"
)

// Tier тип ценового условия, по которому оформлен период подписки.
type Tier string

const (
	// TierTrial пробный период, списывается один раз на сервис
	TierTrial Tier = "trial"
	// TierSpecial специальное условие, списывается один раз на тариф
	TierSpecial Tier = "special"
	// TierStandard обычное условие тарифа
	TierStandard Tier = "standard"
)

// Category категория сервисов (кино, музыка, книги и т.д.).
type Category struct {
	ID   int
	Name string
}

// Service подписочный сервис из каталога.
// Cashback — процент кэшбека (0–100), может отсутствовать.
type Service struct {
	ID           uuid.UUID
	Name         string
	FullName     string
	Description  string
	Cashback     *int
	CategoryID   int
	CategoryName string
}

// TariffCondition значение ценового условия тарифа:
// длительность (count единиц unit) и цена за период.
type TariffCondition struct {
	Count int  `json:"count"`
	Unit  Unit `json:"unit"`
	Price int  `json:"price"`
}

// Tariff тарифный план сервиса. У тарифа всегда есть обычное условие,
// опционально — специальное условие и пробный период.
type Tariff struct {
	ID               uuid.UUID
	ServiceID        uuid.UUID
	Name             string
	Description      string
	Condition        *TariffCondition
	SpecialCondition *TariffCondition
	TrialPeriod      *TariffCondition
}

// Subscription запись об одном периоде подписки пользователя.
// История append-only: продление не изменяет EndDate существующей
// записи, а создаёт новую и деактивирует старую.
type Subscription struct {
	ID               uuid.UUID
	UserUID          uuid.UUID
	ServiceID        uuid.UUID
	TariffID         uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	Expense          int  // списанная за период сумма
	Cashback         int  // начисленный за период кэшбек
	CashbackCredited bool // кэшбек зачислен ежемесячной задачей
	IsActive         bool
	AutoPay          bool
	PhoneNumber      string
}

// TrialUsage отметка об использовании пробного периода сервиса.
// Уникальна по паре (пользователь, сервис).
type TrialUsage struct {
	ID        uuid.UUID
	UserUID   uuid.UUID
	ServiceID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// SpecialUsage отметка об использовании специального условия тарифа.
// Уникальна по паре (пользователь, тариф).
type SpecialUsage struct {
	ID        uuid.UUID
	UserUID   uuid.UUID
	TariffID  uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// DummySubscription используется для приёма данных запроса на оформление
// подписки, прежде чем конвертировать их в Subscription.
type DummySubscription struct {
	TariffID    string `json:"tariff_id" validate:"required,uuid"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// DummyUpdate используется для приёма запроса на отключение или
// возобновление подписки.
type DummyUpdate struct {
	AutoPay *bool `json:"auto_pay" validate:"required"`
}

// CategoryExpense сумма расходов пользователя по одной категории.
type CategoryExpense struct {
	Name     string `json:"name"`
	Expenses int    `json:"expenses"`
}

// PaymentHistoryItem строка истории платежей пользователя.
type PaymentHistoryItem struct {
	ID               uuid.UUID `json:"id"`
	ServiceName      string    `json:"service_name"`
	TariffName       string    `json:"tariff_name"`
	Price            int       `json:"price"`
	Cashback         int       `json:"cashback"`
	CashbackCredited bool      `json:"cashback_credited"`
	Date             time.Time `json:"date"`
}

// BillingEvent событие биллинга, публикуемое планировщиком в очередь
// для отправки уведомлений пользователю.
type BillingEvent struct {
	Kind        string    `json:"kind"` // renewal.success | renewal.failed | cashback.credited
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	ServiceName string    `json:"service_name"`
	Amount      int       `json:"amount"`
	Date        time.Time `json:"date"`
}
