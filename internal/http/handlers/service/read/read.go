// Package read реализует HTTP-обработчик для получения карточки сервиса.
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

	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Handler обрабатывает запросы на получение сервиса по ID.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить карточку сервиса
// @Description Возвращает сервис каталога по его ID.
// @Tags Catalog
// @Produce json
// @Param id path string true "ID сервиса"
// @Success 200 {object} response.Response "Карточка сервиса"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Сервис не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /services/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.service.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid service id"))
		return
	}

	item, err := h.service.GetService(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Error("service not found", slog.String("id", id.String()))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("service not found"))
			return
		}
		log.Error("failed to read service", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read service"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"service": map[string]any{
			"id":          item.ID.String(),
			"name":        item.Name,
			"full_name":   item.FullName,
			"description": item.Description,
			"cashback":    item.Cashback,
			"category":    item.CategoryName,
		},
	}))
}
