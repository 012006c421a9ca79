// setup.go
package rabbit

import (
	"context"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	OrderRequestedExchange = "order_requested"
	OrderRequestsQueue     = "roadside_order_requests"
)

// SetupConsumers declara la cola, la bindea al exchange fanout y consume en background
// hasta que se cancele ctx o se cierre el canal.
func SetupConsumers(ctx context.Context, ch *amqp091.Channel, orders OrderCreator, log logrus.FieldLogger) error {
	consumer := NewOrderRequestedConsumer(orders, log)

	if err := ch.ExchangeDeclare(OrderRequestedExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}

	// 1. Declarar la queue
	q, err := ch.QueueDeclare(OrderRequestsQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	// 2. Bindear al exchange fanout
	if err := ch.QueueBind(q.Name, "", OrderRequestedExchange, false, nil); err != nil {
		return err
	}

	// 3. Consumir con ack manual: los mensajes inválidos se descartan sin requeue
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					log.Warn("order_requested delivery channel closed")
					return
				}
				if err := consumer.Handle(ctx, m.Body); err != nil {
					log.WithError(err).Warn("order_requested message rejected")
					_ = m.Nack(false, false)
					continue
				}
				_ = m.Ack(false)
			}
		}
	}()

	log.WithField("exchange", OrderRequestedExchange).Info("subscribed to order requests")
	return nil
}
