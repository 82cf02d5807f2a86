// Package cashback реализует HTTP-обработчик накопленного кэшбека.
package cashback

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
)

// Handler обрабатывает запросы на сумму накопленного кэшбека.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис аналитики расходов
}

// Service описывает интерфейс аналитики кэшбека.
type Service interface {
	CashbackTotal(ctx context.Context, userUID uuid.UUID, from, to *time.Time) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сумма кэшбека
// @Description Возвращает суммарный кэшбек текущего пользователя, опционально за период.
// @Tags Analytics
// @Produce json
// @Param from query string false "Начало периода (2006-01-02)"
// @Param to query string false "Конец периода (2006-01-02)"
// @Success 200 {object} response.Response "Сумма кэшбека"
// @Failure 400 {object} response.ErrorResponse "Некорректный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /analytics/cashback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.cashback"
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

	// без параметров считается кэшбек за все время
	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			log.Error("failed to parse period", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid period, use format 2006-01-02"))
			return
		}
		from = &parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			log.Error("failed to parse period", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid period, use format 2006-01-02"))
			return
		}
		to = &parsed
	}

	total, err := h.service.CashbackTotal(r.Context(), userUID, from, to)
	if err != nil {
		log.Error("failed to get cashback total", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get cashback total"))
		return
	}

	log.Info("cashback total", sl.UID(userUID), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"total": total,
	}))
}
