// Package list реализует HTTP-обработчик для получения каталога сервисов.
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

// Handler обрабатывает запросы на получение каталога сервисов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	ListServices(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]*models.Service, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

type serviceView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Cashback    *int   `json:"cashback,omitempty"`
	Category    string `json:"category"`
}

// ServeHTTP godoc
// @Summary Получить каталог сервисов
// @Description Возвращает список сервисов с категорией и процентом кэшбека. Сервисы с активной подпиской пользователя не показываются.
// @Tags Catalog
// @Produce json
// @Param limit query int false "Максимум записей" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} response.Response "Список сервисов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /services [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.list"
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

	items, err := h.service.ListServices(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to list services", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list services"))
		return
	}

	views := make([]serviceView, 0, len(items))
	for _, item := range items {
		views = append(views, serviceView{
			ID:          item.ID.String(),
			Name:        item.Name,
			FullName:    item.FullName,
			Description: item.Description,
			Cashback:    item.Cashback,
			Category:    item.CategoryName,
		})
	}

	log.Info("services listed", sl.UID(userUID), slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"services": views,
	}))
}
