// Package read реализует HTTP-обработчик для получения подписки по ID.
//
// В ответ включается тип ценового условия, по которому был оформлен
// период: он определяется по совпадению даты окончания с отметками об
// использовании скидок, а не повторным прогоном алгоритма выбора.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/http/middlewarectx"
	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Handler обрабатывает запросы на получение подписки по ID.
type Handler struct {
	log      *slog.Logger // Логгер для записи информации и ошибок
	service  Service      // Сервис бизнес-логики подписок
	resolver Resolver     // Определение типа условия существующего периода
}

// Service описывает интерфейс бизнес-логики чтения подписки.
type Service interface {
	Read(ctx context.Context, userUID, subID uuid.UUID) (*models.Subscription, error)
}

// Resolver определяет тип условия, по которому оформлен период.
type Resolver interface {
	Identify(ctx context.Context, sub *models.Subscription) (models.Tier, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, resolver Resolver) *Handler {
	return &Handler{log: log, service: service, resolver: resolver}
}

// ServeHTTP godoc
// @Summary Получить подписку
// @Description Возвращает подписку текущего пользователя по ID вместе с типом ценового условия периода.
// @Tags Subscriptions
// @Produce json
// @Param id path string true "ID подписки"
// @Success 200 {object} response.Response "Данные подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужая подписка"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uidStr, ok := r.Context().Value(middlewarectx.UserUID).(string)
	userUID, parseErr := uuid.Parse(uidStr)
	if !ok || parseErr != nil {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	subID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid subscription id"))
		return
	}

	sub, err := h.service.Read(r.Context(), userUID, subID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			log.Error("subscription not found", slog.String("id", subID.String()))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription not found"))
		case errors.Is(err, models.ErrNotOwner):
			log.Error("subscription belongs to another user", slog.String("id", subID.String()))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		default:
			log.Error("failed to read subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read subscription"))
		}
		return
	}

	tier, err := h.resolver.Identify(r.Context(), sub)
	if err != nil {
		log.Error("failed to identify tier", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscription"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": map[string]any{
			"id":           sub.ID.String(),
			"service_id":   sub.ServiceID.String(),
			"tariff_id":    sub.TariffID.String(),
			"start_date":   sub.StartDate.Format("2006-01-02"),
			"end_date":     sub.EndDate.Format("2006-01-02"),
			"expense":      sub.Expense,
			"cashback":     sub.Cashback,
			"is_active":    sub.IsActive,
			"auto_pay":     sub.AutoPay,
			"phone_number": sub.PhoneNumber,
			"tier":         string(tier),
		},
	}))
}
