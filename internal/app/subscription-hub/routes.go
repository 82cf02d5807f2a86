package subscriptionhub

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	analyticscashback "github.com/smilemedia/subscription-hub/internal/http/handlers/analytics/cashback"
	analyticscategories "github.com/smilemedia/subscription-hub/internal/http/handlers/analytics/categories"
	analyticsexpenses "github.com/smilemedia/subscription-hub/internal/http/handlers/analytics/expenses"
	analyticsfuture "github.com/smilemedia/subscription-hub/internal/http/handlers/analytics/future"
	"github.com/smilemedia/subscription-hub/internal/http/handlers/auth/login"
	"github.com/smilemedia/subscription-hub/internal/http/handlers/auth/register"
	"github.com/smilemedia/subscription-hub/internal/http/handlers/health"
	paymentlist "github.com/smilemedia/subscription-hub/internal/http/handlers/payment/list"
	servicelist "github.com/smilemedia/subscription-hub/internal/http/handlers/service/list"
	servicepopular "github.com/smilemedia/subscription-hub/internal/http/handlers/service/popular"
	serviceread "github.com/smilemedia/subscription-hub/internal/http/handlers/service/read"
	"github.com/smilemedia/subscription-hub/internal/http/handlers/subscription/create"
	sublist "github.com/smilemedia/subscription-hub/internal/http/handlers/subscription/list"
	subread "github.com/smilemedia/subscription-hub/internal/http/handlers/subscription/read"
	subupdate "github.com/smilemedia/subscription-hub/internal/http/handlers/subscription/update"
	tarifflist "github.com/smilemedia/subscription-hub/internal/http/handlers/tariff/list"
	tariffread "github.com/smilemedia/subscription-hub/internal/http/handlers/tariff/read"
	"github.com/smilemedia/subscription-hub/internal/http/middlewarectx"
	analyticsservice "github.com/smilemedia/subscription-hub/internal/services/analytics"
	authservice "github.com/smilemedia/subscription-hub/internal/services/auth"
	catalogservice "github.com/smilemedia/subscription-hub/internal/services/catalog"
	subservice "github.com/smilemedia/subscription-hub/internal/services/subscription"
	"github.com/smilemedia/subscription-hub/internal/services/tier"
	"github.com/smilemedia/subscription-hub/internal/storage"
)

// Services содержит сервисы, используемые HTTP-обработчиками.
type Services struct {
	Auth         *authservice.Service
	Catalog      *catalogservice.Service
	Subscription *subservice.Service
	Analytics    *analyticsservice.Service
	Resolver     *tier.Resolver
	TokenParser  middlewarectx.TokenParser
	Health       *storage.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки: регистрация и вход
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, s.Health).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(logger, s.TokenParser))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/services", servicelist.New(logger, s.Catalog).ServeHTTP)
			r.Get("/services/popular", servicepopular.New(logger, s.Catalog).ServeHTTP)
			r.Get("/services/{id}", serviceread.New(logger, s.Catalog).ServeHTTP)
			r.Get("/services/{id}/tariffs", tarifflist.New(logger, s.Catalog).ServeHTTP)
			r.Get("/tariffs/{id}", tariffread.New(logger, s.Catalog).ServeHTTP)
			r.Post("/subscriptions", create.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscriptions", sublist.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscriptions/{id}", subread.New(logger, s.Subscription, s.Resolver).ServeHTTP)
			r.Patch("/subscriptions/{id}", subupdate.New(logger, s.Subscription).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, s.Subscription).ServeHTTP)
			r.Get("/analytics/categories", analyticscategories.New(logger, s.Analytics).ServeHTTP)
			r.Get("/analytics/expenses", analyticsexpenses.New(logger, s.Analytics).ServeHTTP)
			r.Get("/analytics/future", analyticsfuture.New(logger, s.Analytics).ServeHTTP)
			r.Get("/analytics/cashback", analyticscashback.New(logger, s.Analytics).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
