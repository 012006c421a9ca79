package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"roadside-assist-service/internal/model"
	"roadside-assist-service/internal/repository"
)

// Interfaz que deben implementar los repositorios de órdenes (Mongo y memoria)
type OrderRepository interface {
	Get(ctx context.Context, id string) (*model.Order, error)
	Create(ctx context.Context, o *model.Order) error
	Put(ctx context.Context, o *model.Order) error
	List(ctx context.Context, f repository.OrderFilter) ([]*model.Order, error)
	Persistent() bool
}

type GarageRepository interface {
	Get(ctx context.Context, id string) (*model.Garage, error)
	Nearby(ctx context.Context, center model.Coordinate, radiusKm float64, limit int) ([]model.Garage, error)
	ReplaceAll(ctx context.Context, garages []model.Garage) error
	Persistent() bool
}

type NearbyCache interface {
	Get(ctx context.Context, cell string) ([]model.Garage, bool, error)
	Set(ctx context.Context, cell string, garages []model.Garage) error
	Invalidate(ctx context.Context) error
}

type StatusChangedEvent struct {
	OrderID          string           `json:"orderId"`
	UserID           string           `json:"userId"`
	From             model.Status     `json:"from"`
	To               model.Status     `json:"to"`
	Reason           string           `json:"reason,omitempty"`
	MechanicLocation model.Coordinate `json:"mechanicLocation"`
	At               time.Time        `json:"at"`
}

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, evt StatusChangedEvent) error
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrGarageNotFound     = errors.New("garage not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrFinalState         = errors.New("order is in a final state")
	ErrMissingCoordinates = errors.New("please provide latitude and longitude")
	ErrUnknownCategory    = errors.New("unknown service category")
	ErrInvalidDistance    = errors.New("distance must not be negative")
)

// Options comparte la configuración transversal entre servicios.
type Options struct {
	StrictMode bool
	Logger     logrus.FieldLogger
	Events     EventPublisher
	Locks      *KeyedLocker
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.Events == nil {
		o.Events = NopPublisher{}
	}
	if o.Locks == nil {
		o.Locks = NewKeyedLocker()
	}
	return o
}

type NopPublisher struct{}

func (NopPublisher) PublishStatusChanged(context.Context, StatusChangedEvent) error { return nil }

type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]model.Garage, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, string, []model.Garage) error      { return nil }
func (NopCache) Invalidate(context.Context) error                        { return nil }

func publish(ctx context.Context, opts Options, o *model.Order, from model.Status) {
	last := model.StatusRecord{}
	if n := len(o.History); n > 0 {
		last = o.History[n-1]
	}
	evt := StatusChangedEvent{
		OrderID:          o.ID,
		UserID:           o.UserID,
		From:             from,
		To:               o.Status,
		Reason:           last.Reason,
		MechanicLocation: o.MechanicLocation,
		At:               o.UpdatedAt,
	}
	if err := opts.Events.PublishStatusChanged(ctx, evt); err != nil {
		opts.Logger.WithError(err).WithField("order_id", o.ID).Warn("could not publish status change")
	}
}
