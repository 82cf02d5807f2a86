// Package update реализует HTTP-обработчик управления автоплатежом.
//
// Запрос с auto_pay=false отключает автоплатеж (подписка доживает до
// конца оплаченного периода), auto_pay=true возобновляет подписку:
// для неистекшей записи включается автоплатеж, для истекшей оформляется
// новый период с оплатой.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/http/middlewarectx"
	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Handler обрабатывает запросы на отключение и возобновление подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики подписок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс управления жизненным циклом подписки.
type Service interface {
	Cancel(ctx context.Context, userUID, subID uuid.UUID) (*models.Subscription, error)
	Resume(ctx context.Context, now time.Time, userUID, subID uuid.UUID) (*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отключить или возобновить подписку
// @Description Переключает автоплатеж подписки. auto_pay=false — отключение, auto_pay=true — возобновление (для истекшей подписки оформляется новый оплаченный период).
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "ID подписки"
// @Param request body models.DummyUpdate true "Новое состояние автоплатежа"
// @Success 200 {object} response.Response "Подписка обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или отказ банка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужая подписка"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Подписка уже возобновлена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"
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

	var req models.DummyUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	var sub *models.Subscription
	if *req.AutoPay {
		sub, err = h.service.Resume(r.Context(), time.Now().UTC(), userUID, subID)
	} else {
		sub, err = h.service.Cancel(r.Context(), userUID, subID)
	}
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
		case errors.Is(err, models.ErrAlreadyResumed):
			log.Error("subscription already resumed", slog.String("id", subID.String()))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("subscription already resumed"))
		case errors.Is(err, models.ErrPaymentFailed):
			log.Error("payment failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment failed"))
		default:
			log.Error("failed to update subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update subscription"))
		}
		return
	}

	log.Info("subscription updated",
		slog.String("id", sub.ID.String()), slog.Bool("auto_pay", sub.AutoPay))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":       sub.ID.String(),
		"end_date": sub.EndDate.Format("2006-01-02"),
		"auto_pay": sub.AutoPay,
	}))
}
