// Package expenses реализует HTTP-обработчик общей суммы расходов за период.
package expenses

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/http/handlers/analytics/categories"
	"github.com/smilemedia/subscription-hub/internal/http/middlewarectx"
	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
)

// Handler обрабатывает запросы на общую сумму расходов пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис аналитики расходов
}

// Service описывает интерфейс аналитики общей суммы расходов.
type Service interface {
	ExpensesTotal(ctx context.Context, userUID uuid.UUID, from, to time.Time) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сумма расходов за период
// @Description Возвращает общую сумму расходов текущего пользователя за период. По умолчанию — текущий месяц.
// @Tags Analytics
// @Produce json
// @Param from query string false "Начало периода (2006-01-02)"
// @Param to query string false "Конец периода (2006-01-02)"
// @Success 200 {object} response.Response "Сумма расходов"
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /analytics/expenses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.expenses"
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

	from, to, err := categories.ParsePeriod(r)
	if err != nil {
		log.Error("failed to parse period", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid period, use format 2006-01-02"))
		return
	}

	total, err := h.service.ExpensesTotal(r.Context(), userUID, from, to)
	if err != nil {
		log.Error("failed to get expenses total", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get expenses"))
		return
	}

	log.Info("expenses total", sl.UID(userUID), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"total": total,
	}))
}
