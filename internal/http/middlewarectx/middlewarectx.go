// Package middlewarectx содержит HTTP middleware: проверку JWT токена
// из заголовка Authorization с добавлением данных пользователя в контекст
// запроса и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/smilemedia/subscription-hub/internal/http/response"
	"github.com/smilemedia/subscription-hub/internal/lib/jwtoken"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User — ключ для имени пользователя в контексте
	User Key = "username"
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
)

// TokenParser проверяет JWT токен и возвращает его данные.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwtoken.Claims, error)
}

// JWTMiddleware проверяет токен из заголовка Authorization и добавляет
// в контекст запроса имя, идентификатор и роль пользователя.
// При ошибке проверки возвращает 401 Unauthorized.
func JWTMiddleware(log *slog.Logger, parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Error("authorization header is missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authorization header is missing"))
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				log.Error("invalid authorization header format")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid authorization header format"))
				return
			}

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), User, claims.Username)
			ctx = context.WithValue(ctx, UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
