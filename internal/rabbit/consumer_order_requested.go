package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"roadside-assist-service/internal/dto"
	"roadside-assist-service/internal/model"
)

// OrderCreator es lo que el consumer necesita del OrderService.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error)
}

type OrderRequestedConsumer struct {
	Orders OrderCreator
	Log    logrus.FieldLogger
}

func NewOrderRequestedConsumer(orders OrderCreator, log logrus.FieldLogger) *OrderRequestedConsumer {
	return &OrderRequestedConsumer{Orders: orders, Log: log}
}

// Mensaje publicado por la app cuando se pide asistencia sin pasar por la API HTTP.
type OrderRequestedMessage struct {
	CorrelationID string                 `json:"correlation_id"`
	Exchange      string                 `json:"exchange"`
	RoutingKey    string                 `json:"routing_key"`
	Message       dto.CreateOrderRequest `json:"message"`
}

func (c *OrderRequestedConsumer) Handle(ctx context.Context, body []byte) error {
	var event OrderRequestedMessage
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("parse order_requested: %w", err)
	}

	log := c.Log.WithFields(logrus.Fields{
		"correlation_id": event.CorrelationID,
		"user_id":        event.Message.UserID,
	})

	if event.Message.UserID == "" || event.Message.GarageID == "" {
		log.Warn("order_requested without userId or garageId, discarded")
		return fmt.Errorf("order_requested: userId and garageId are required")
	}

	o, err := c.Orders.CreateOrder(ctx, event.Message)
	if err != nil {
		log.WithError(err).Error("could not create order from message")
		return err
	}

	log.WithField("order_id", o.ID).Info("order created from order_requested")
	return nil
}
