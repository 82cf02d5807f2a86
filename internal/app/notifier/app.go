// Package notifier собирает и запускает воркер почтовых уведомлений:
// читает события биллинга из очередей и отправляет письма по SMTP.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/smilemedia/subscription-hub/internal/config"
	"github.com/smilemedia/subscription-hub/internal/lib/rabbitmq"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/lib/smtp"
	notifierservice "github.com/smilemedia/subscription-hub/internal/services/notifier"
)

// App представляет приложение воркера уведомлений.
type App struct {
	notifier *notifierservice.Service
	conn     *amqp.Connection
	ch       *amqp.Channel
	logger   *slog.Logger
}

// New создает приложение воркера уведомлений.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBillingQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP)
	notifierService := notifierservice.New(transport, logger)

	return &App{
		notifier: notifierService,
		conn:     conn,
		ch:       ch,
		logger:   logger,
	}, nil
}

// Run подписывается на очереди событий биллинга и блокируется
// до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	for _, q := range rabbitmq.GetBillingQueues() {
		if err := rabbitmq.ConsumeMessages(a.ch, q.QueueName, a.notifier.HandleEvent); err != nil {
			return fmt.Errorf("failed to consume queue %s: %w", q.QueueName, err)
		}
		a.logger.Info("consuming billing events", slog.String("queue", q.QueueName))
	}

	<-ctx.Done()

	a.logger.Info("shutting down notifier")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
