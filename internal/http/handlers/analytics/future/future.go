// Package future реализует HTTP-обработчик прогноза будущих списаний.
//
// Прогноз считается по подпискам с автоплатежом, истекающим до конца
// текущего календарного месяца: для каждой берется цена предстоящего
// продления с учетом неиспользованных специальных условий.
package future

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

// Handler обрабатывает запросы на прогноз будущих списаний.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис аналитики расходов
}

// Service описывает интерфейс аналитики будущих списаний.
type Service interface {
	FutureExpenses(ctx context.Context, now time.Time, userUID uuid.UUID) (int, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прогноз будущих списаний
// @Description Возвращает сумму предстоящих списаний по подпискам с автоплатежом до конца текущего месяца.
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Response "Сумма будущих списаний"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /analytics/future [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.future"
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

	total, err := h.service.FutureExpenses(r.Context(), time.Now().UTC(), userUID)
	if err != nil {
		log.Error("failed to get future expenses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get future expenses"))
		return
	}

	log.Info("future expenses", sl.UID(userUID), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"total": total,
	}))
}
