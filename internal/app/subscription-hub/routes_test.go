package subscriptionhub

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"

	"github.com/smilemedia/subscription-hub/internal/lib/jwtoken"
)

// TestRegisterRoutes_RequireAuth проверяет, что конечные точки каталога,
// подписок и аналитики закрыты JWT-аутентификацией: без токена запрос
// получает 401 и не доходит до обработчика.
func TestRegisterRoutes_RequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		TokenParser: jwtoken.NewMaker("test-secret", time.Hour),
	})

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/services"},
		{http.MethodGet, "/api/v1/services/popular"},
		{http.MethodGet, "/api/v1/services/00000000-0000-0000-0000-000000000001"},
		{http.MethodGet, "/api/v1/services/00000000-0000-0000-0000-000000000001/tariffs"},
		{http.MethodGet, "/api/v1/tariffs/00000000-0000-0000-0000-000000000001"},
		{http.MethodGet, "/api/v1/subscriptions"},
		{http.MethodPost, "/api/v1/subscriptions"},
		{http.MethodGet, "/api/v1/payments"},
		{http.MethodGet, "/api/v1/analytics/categories"},
		{http.MethodGet, "/api/v1/analytics/expenses"},
		{http.MethodGet, "/api/v1/analytics/future"},
		{http.MethodGet, "/api/v1/analytics/cashback"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

// TestRegisterRoutes_InvalidToken проверяет, что искаженный токен
// отклоняется до вызова обработчика.
func TestRegisterRoutes_InvalidToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		TokenParser: jwtoken.NewMaker("test-secret", time.Hour),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
