// Package list реализует HTTP-обработчик для получения подписок пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/http/middlewarectx"
	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Handler обрабатывает запросы на получение списка подписок пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подписок
}

// Service описывает интерфейс бизнес-логики списка подписок.
type Service interface {
	List(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type subscriptionView struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	TariffID  string `json:"tariff_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Expense   int    `json:"expense"`
	Cashback  int    `json:"cashback"`
	IsActive  bool   `json:"is_active"`
	AutoPay   bool   `json:"auto_pay"`
	Phone     string `json:"phone_number"`
}

func newSubscriptionView(sub *models.Subscription) subscriptionView {
	return subscriptionView{
		ID:        sub.ID.String(),
		ServiceID: sub.ServiceID.String(),
		TariffID:  sub.TariffID.String(),
		StartDate: sub.StartDate.Format("2006-01-02"),
		EndDate:   sub.EndDate.Format("2006-01-02"),
		Expense:   sub.Expense,
		Cashback:  sub.Cashback,
		IsActive:  sub.IsActive,
		AutoPay:   sub.AutoPay,
		Phone:     sub.PhoneNumber,
	}
}

// ServeHTTP godoc
// @Summary Получить подписки пользователя
// @Description Возвращает все периоды подписок текущего пользователя, новые первыми.
// @Tags Subscriptions
// @Produce json
// @Param limit query int false "Максимум записей" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} response.Response "Список подписок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"
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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	items, err := h.service.List(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	views := make([]subscriptionView, 0, len(items))
	for _, item := range items {
		views = append(views, newSubscriptionView(item))
	}

	log.Info("subscriptions listed", sl.UID(userUID), slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscriptions": views,
	}))
}
