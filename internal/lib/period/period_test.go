package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smilemedia/subscription-hub/internal/models"
)

func TestDays(t *testing.T) {
	tests := []struct {
		name string
		cond models.TariffCondition
		want int
	}{
		{"один месяц", models.TariffCondition{Count: 1, Unit: models.UnitMonth}, 30},
		{"три месяца", models.TariffCondition{Count: 3, Unit: models.UnitMonth}, 90},
		{"один год", models.TariffCondition{Count: 1, Unit: models.UnitYear}, 360},
		{"пять дней", models.TariffCondition{Count: 5, Unit: models.UnitDay}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Days(tt.cond))
		})
	}
}

func TestEndDate(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := EndDate(start, models.TariffCondition{Count: 1, Unit: models.UnitMonth})
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), end)
	assert.False(t, end.Before(start))
}

func TestFullName(t *testing.T) {
	tests := []struct {
		count int
		unit  models.Unit
		want  string
	}{
		{1, models.UnitMonth, "Месяц"},
		{2, models.UnitMonth, "Месяца"},
		{5, models.UnitMonth, "Месяцев"},
		{11, models.UnitMonth, "Месяцев"},
		{21, models.UnitDay, "День"},
		{1, models.UnitYear, "Год"},
		{3, models.UnitYear, "Года"},
	}
	for _, tt := range tests {
		got := FullName(models.TariffCondition{Count: tt.count, Unit: tt.unit})
		assert.Equal(t, tt.want, got)
	}
}
