// Package period содержит календарные правила пересчёта условий тарифа
// в дни. Правило фиксированное: месяц считается за 30 дней, год — за 360,
// чтобы даты окончания подписки вычислялись одинаково во всех сценариях.
package period

import (
	"time"

	"github.com/smilemedia/subscription-hub/internal/models"
)

// Days возвращает длительность ценового условия тарифа в днях.
func Days(cond models.TariffCondition) int {
	switch cond.Unit {
	case models.UnitMonth:
		return cond.Count * 30
	case models.UnitYear:
		return cond.Count * 360
	default:
		return cond.Count
	}
}

// EndDate возвращает дату окончания периода, начавшегося в start.
func EndDate(start time.Time, cond models.TariffCondition) time.Time {
	return start.AddDate(0, 0, Days(cond))
}

// FullName возвращает название периода с учётом склонения:
// "1 месяц", "2 месяца", "5 месяцев" и т.д.
func FullName(cond models.TariffCondition) string {
	forms, ok := unitForms[cond.Unit]
	if !ok {
		return ""
	}
	n := cond.Count
	switch {
	case n%10 == 1 && n%100 != 11:
		return forms[0]
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return forms[1]
	default:
		return forms[2]
	}
}

var unitForms = map[models.Unit][3]string{
	models.UnitDay:   {"День", "Дня", "Дней"},
	models.UnitMonth: {"Месяц", "Месяца", "Месяцев"},
	models.UnitYear:  {"Год", "Года", "Лет"},
}
