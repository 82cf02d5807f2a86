package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/smilemedia/subscription-hub/internal/models"
)

// BillingPublisher публикует события биллинга в обменник billing.
type BillingPublisher struct {
	ch *amqp.Channel
}

// NewBillingPublisher создает новый BillingPublisher.
func NewBillingPublisher(ch *amqp.Channel) *BillingPublisher {
	return &BillingPublisher{ch: ch}
}

// Publish публикует событие с заданным ключом маршрутизации.
func (p *BillingPublisher) Publish(routingKey string, event models.BillingEvent) error {
	return PublishMessage(p.ch, BillingExchange, routingKey, event)
}
