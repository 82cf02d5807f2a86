// Package list реализует HTTP-обработчик для получения тарифов сервиса.
//
// Каждый тариф возвращается со всеми ценовыми условиями: обычным,
// специальным и пробным периодом, если они заданы. Длительность условия
// дополняется человеко-читаемой подписью ("1 Месяц", "7 Дней").
package list

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

// Handler обрабатывает запросы на получение тарифов сервиса.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	ListTariffs(ctx context.Context, serviceID uuid.UUID) ([]*models.Tariff, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type conditionView struct {
	Count    int    `json:"count"`
	Unit     string `json:"unit"`
	Price    int    `json:"price"`
	Duration string `json:"duration"`
}

type tariffView struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Condition        *conditionView `json:"condition,omitempty"`
	SpecialCondition *conditionView `json:"special_condition,omitempty"`
	TrialPeriod      *conditionView `json:"trial_period,omitempty"`
}

func newConditionView(cond *models.TariffCondition) *conditionView {
	if cond == nil {
		return nil
	}
	return &conditionView{
		Count:    cond.Count,
		Unit:     string(cond.Unit),
		Price:    cond.Price,
		Duration: fmt.Sprintf("%d %s", cond.Count, period.FullName(*cond)),
	}
}

func newTariffView(item *models.Tariff) tariffView {
	return tariffView{
		ID:               item.ID.String(),
		Name:             item.Name,
		Description:      item.Description,
		Condition:        newConditionView(item.Condition),
		SpecialCondition: newConditionView(item.SpecialCondition),
		TrialPeriod:      newConditionView(item.TrialPeriod),
	}
}

// ServeHTTP godoc
// @Summary Получить тарифы сервиса
// @Description Возвращает тарифы сервиса со всеми ценовыми условиями.
// @Tags Catalog
// @Produce json
// @Param id path string true "ID сервиса"
// @Success 200 {object} response.Response "Список тарифов"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Сервис не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /services/{id}/tariffs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tariff.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	serviceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid service id"))
		return
	}

	items, err := h.service.ListTariffs(r.Context(), serviceID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Error("service not found", slog.String("id", serviceID.String()))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("service not found"))
			return
		}
		log.Error("failed to list tariffs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tariffs"))
		return
	}

	views := make([]tariffView, 0, len(items))
	for _, item := range items {
		views = append(views, newTariffView(item))
	}

	log.Info("tariffs listed",
		slog.String("service_id", serviceID.String()), slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tariffs": views,
	}))
}
