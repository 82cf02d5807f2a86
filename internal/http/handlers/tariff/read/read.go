// Package read реализует HTTP-обработчик для получения карточки тарифа.
package read

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/period"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Handler обрабатывает запросы на получение тарифа по ID.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	GetTariff(ctx context.Context, id uuid.UUID) (*models.Tariff, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func conditionView(cond *models.TariffCondition) map[string]any {
	if cond == nil {
		return nil
	}
	return map[string]any{
		"count":    cond.Count,
		"unit":     string(cond.Unit),
		"price":    cond.Price,
		"duration": fmt.Sprintf("%d %s", cond.Count, period.FullName(*cond)),
	}
}

// ServeHTTP godoc
// @Summary Получить карточку тарифа
// @Description Возвращает тариф по его ID со всеми ценовыми условиями.
// @Tags Catalog
// @Produce json
// @Param id path string true "ID тарифа"
// @Success 200 {object} response.Response "Карточка тарифа"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /tariffs/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tariff.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid tariff id"))
		return
	}

	item, err := h.service.GetTariff(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Error("tariff not found", slog.String("id", id.String()))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("tariff not found"))
			return
		}
		log.Error("failed to read tariff", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read tariff"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tariff": map[string]any{
			"id":                item.ID.String(),
			"service_id":        item.ServiceID.String(),
			"name":              item.Name,
			"description":       item.Description,
			"condition":         conditionView(item.Condition),
			"special_condition": conditionView(item.SpecialCondition),
			"trial_period":      conditionView(item.TrialPeriod),
		},
	}))
}
