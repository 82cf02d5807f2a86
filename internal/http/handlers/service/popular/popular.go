// Package popular реализует HTTP-обработчик рейтинга сервисов по популярности.
package popular

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Handler обрабатывает запросы на получение популярных сервисов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики рейтинга сервисов.
type Service interface {
	ListPopularServices(ctx context.Context, limit, offset int) ([]*models.Service, error)
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
// @Summary Получить популярные сервисы
// @Description Возвращает сервисы по убыванию числа активных подписок.
// @Tags Catalog
// @Produce json
// @Param limit query int false "Максимум записей" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} response.Response "Список сервисов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /services/popular [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.popular"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	items, err := h.service.ListPopularServices(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list popular services", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list popular services"))
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

	log.Info("popular services listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"services": views,
	}))
}
