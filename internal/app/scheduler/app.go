// Package scheduler собирает и запускает воркер фоновых задач биллинга:
// ежедневное продление подписок с автоплатежом и ежемесячное начисление
// кэшбека по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/smilemedia/subscription-hub/internal/bankclient"
	"github.com/smilemedia/subscription-hub/internal/config"
	"github.com/smilemedia/subscription-hub/internal/lib/rabbitmq"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	schedulerservice "github.com/smilemedia/subscription-hub/internal/services/scheduler"
	subservice "github.com/smilemedia/subscription-hub/internal/services/subscription"
	"github.com/smilemedia/subscription-hub/internal/services/tier"
	"github.com/smilemedia/subscription-hub/internal/storage"
)

// Расписание фоновых задач: продления каждый день ночью, кэшбек —
// первого числа месяца за предыдущий месяц.
const (
	autopaySchedule  = "0 3 * * *"
	cashbackSchedule = "0 4 1 * *"
)

// App представляет приложение планировщика биллинга.
type App struct {
	scheduler *schedulerservice.Scheduler
	cron      *cron.Cron
	db        *storage.Storage
	conn      *amqp.Connection
	ch        *amqp.Channel
	logger    *slog.Logger
}

func waitForDB(ctx context.Context, db *storage.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает приложение планировщика: хранилище, клиент банка,
// очередь событий и сервис фоновых задач.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBillingQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	bank := bankclient.NewClient(cfg.BankURL, cfg.BankTimeout)
	resolver := tier.NewResolver(db)
	subscriptionService := subservice.New(db, db, db, bank, resolver, logger)
	publisher := rabbitmq.NewBillingPublisher(ch)

	schedulerService := schedulerservice.New(db, subscriptionService, bank, db, publisher, logger)

	return &App{
		scheduler: schedulerService,
		cron:      cron.New(),
		db:        db,
		conn:      conn,
		ch:        ch,
		logger:    logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run регистрирует задачи в cron и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.cron.AddFunc(autopaySchedule, func() {
		if _, _, err := a.scheduler.RunAutopay(ctx, time.Now().UTC()); err != nil {
			a.logger.Error("autopay run failed", sl.Err(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule autopay job: %w", err)
	}

	if _, err := a.cron.AddFunc(cashbackSchedule, func() {
		if _, _, err := a.scheduler.RunCashbackAccrual(ctx, time.Now().UTC()); err != nil {
			a.logger.Error("cashback run failed", sl.Err(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule cashback job: %w", err)
	}

	a.cron.Start()
	a.logger.Info("billing scheduler started",
		slog.String("autopay", autopaySchedule),
		slog.String("cashback", cashbackSchedule))

	<-ctx.Done()

	a.logger.Info("shutting down billing scheduler")
	<-a.cron.Stop().Done()

	closeResources(a.ch, a.conn, a.logger)
	_ = a.db.DB.Close()
	return nil
}
