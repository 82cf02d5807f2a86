// Package categories реализует HTTP-обработчик расходов по категориям.
package categories

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/http/middlewarectx"
	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Handler обрабатывает запросы на расходы пользователя по категориям.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис аналитики расходов
}

// Service описывает интерфейс аналитики расходов по категориям.
type Service interface {
	ExpensesByCategory(ctx context.Context, userUID uuid.UUID, from, to time.Time) ([]*models.CategoryExpense, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ParsePeriod читает границы периода из query-параметров from и to
// в формате 2006-01-02. По умолчанию — текущий календарный месяц.
func ParsePeriod(r *http.Request) (from, to time.Time, err error) {
	now := time.Now().UTC()
	from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			return from, to, err
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

// ServeHTTP godoc
// @Summary Расходы по категориям
// @Description Возвращает суммы расходов текущего пользователя по категориям сервисов за период. По умолчанию — текущий месяц.
// @Tags Analytics
// @Produce json
// @Param from query string false "Начало периода (2006-01-02)"
// @Param to query string false "Конец периода (2006-01-02)"
// @Success 200 {object} response.Response "Расходы по категориям"
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /analytics/categories [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.categories"
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

	from, to, err := ParsePeriod(r)
	if err != nil {
		log.Error("failed to parse period", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid period, use format 2006-01-02"))
		return
	}

	items, err := h.service.ExpensesByCategory(r.Context(), userUID, from, to)
	if err != nil {
		log.Error("failed to get expenses by category", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get expenses"))
		return
	}

	log.Info("expenses by category", sl.UID(userUID), slog.Int("count", len(items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"from":       from.Format("2006-01-02"),
		"to":         to.Format("2006-01-02"),
		"categories": items,
	}))
}
