package rabbit

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"

	"roadside-assist-service/internal/service"
)

const StatusChangedExchange = "order_status_changed"

// AMQPChannel es el subconjunto de *amqp091.Channel que usa el publisher.
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type StatusPublisher struct {
	ch AMQPChannel
}

// NewStatusPublisher declara el exchange fanout donde salen los cambios de estado.
func NewStatusPublisher(ch AMQPChannel) (*StatusPublisher, error) {
	if err := ch.ExchangeDeclare(StatusChangedExchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &StatusPublisher{ch: ch}, nil
}

func (p *StatusPublisher) PublishStatusChanged(ctx context.Context, evt service.StatusChangedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, StatusChangedExchange, "", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    evt.OrderID,
		Timestamp:    evt.At,
		Type:         "order_status_changed",
		Body:         body,
	})
}
