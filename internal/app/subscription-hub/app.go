// Package subscriptionhub собирает и запускает HTTP API агрегатора
// подписок: хранилище, кеш каталога, клиент банка и все сервисы
// бизнес-логики.
package subscriptionhub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/smilemedia/subscription-hub/internal/bankclient"
	"github.com/smilemedia/subscription-hub/internal/cache"
	"github.com/smilemedia/subscription-hub/internal/config"
	"github.com/smilemedia/subscription-hub/internal/lib/jwtoken"
	"github.com/smilemedia/subscription-hub/internal/migrations"
	analyticsservice "github.com/smilemedia/subscription-hub/internal/services/analytics"
	authservice "github.com/smilemedia/subscription-hub/internal/services/auth"
	catalogservice "github.com/smilemedia/subscription-hub/internal/services/catalog"
	subservice "github.com/smilemedia/subscription-hub/internal/services/subscription"
	"github.com/smilemedia/subscription-hub/internal/services/tier"
	"github.com/smilemedia/subscription-hub/internal/storage"
)

// App представляет HTTP API приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New создает приложение: подключает хранилище, применяет миграции,
// инициализирует кеш и собирает все сервисы с маршрутами.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	bank := bankclient.NewClient(cfg.BankURL, cfg.BankTimeout)
	maker := jwtoken.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	resolver := tier.NewResolver(db)

	catalogService := catalogservice.New(db, cacheRedis, logger)
	subscriptionService := subservice.New(db, catalogService, db, bank, resolver, logger)
	authService := authservice.New(db, maker, logger)
	analyticsService := analyticsservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Catalog:      catalogService,
		Subscription: subscriptionService,
		Analytics:    analyticsService,
		Resolver:     resolver,
		TokenParser:  maker,
		Health:       db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
