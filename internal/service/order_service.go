package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"roadside-assist-service/internal/dto"
	"roadside-assist-service/internal/metrics"
	"roadside-assist-service/internal/model"
	"roadside-assist-service/internal/repository"
)

// maxConflictRetries acota los reintentos ante ErrConflict.
const maxConflictRetries = 3

// Transiciones manuales (usuario / mecánico). El resto las hace el simulador.
var manualTransitions = map[model.Status][]model.Status{
	model.StatusPending:  {model.StatusAccepted, model.StatusCancelled},
	model.StatusAccepted: {model.StatusCancelled},
	model.StatusOnTheWay: {model.StatusCancelled},
	model.StatusArrived:  {model.StatusCompleted, model.StatusCancelled},
}

type OrderService struct {
	orders  OrderRepository
	garages GarageRepository
	opts    Options
	now     func() time.Time
}

func NewOrderService(orders OrderRepository, garages GarageRepository, opts Options) *OrderService {
	return &OrderService{
		orders:  orders,
		garages: garages,
		opts:    opts.withDefaults(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder crea la orden en PENDING con el mecánico ubicado en el taller.
// Si el taller no existe y no hay store persistente (ni modo estricto), el mecánico
// arranca desplazado 0.01 grados del usuario, como en el modo demo.
func (s *OrderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error) {
	loc := DefaultUserLocation
	if req.UserLocation != nil {
		loc = *req.UserLocation
	}

	log := s.opts.Logger.WithFields(logrus.Fields{"user_id": req.UserID, "garage_id": req.GarageID})

	var (
		mechanic model.Coordinate
		summary  model.GarageSummary
	)
	g, err := s.garages.Get(ctx, req.GarageID)
	switch {
	case err == nil:
		mechanic = g.Location.Coordinate()
		summary = model.GarageSummary{Name: g.Name, Phone: g.Phone}
	case s.opts.StrictMode:
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGarageNotFound
		}
		return nil, fmt.Errorf("lookup garage: %w", err)
	case errors.Is(err, repository.ErrNotFound) && s.garages.Persistent():
		return nil, ErrGarageNotFound
	default:
		log.WithError(err).Warn("garage unavailable, using demo mechanic location")
		mechanic = model.Coordinate{Lat: loc.Lat - mockMechanicOffset, Lng: loc.Lng - mockMechanicOffset}
		summary = placeholderGarage
	}

	now := s.now()
	o := &model.Order{
		ID:               s.newID(),
		UserID:           req.UserID,
		GarageID:         req.GarageID,
		Garage:           summary,
		UserLocation:     loc,
		MechanicLocation: mechanic,
		VehicleDetails:   req.VehicleDetails,
		CreatedAt:        now,
	}
	o.SetStatus(model.StatusPending, "Order created", now)

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	log.WithField("order_id", o.ID).Info("order created")
	return o, nil
}

func (s *OrderService) newID() string {
	if s.orders.Persistent() {
		return primitive.NewObjectID().Hex()
	}
	return "mock_order_" + uuid.NewString()
}

// GetOrder devuelve la orden sin avanzar la simulación.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, f repository.OrderFilter) ([]*model.Order, error) {
	return s.orders.List(ctx, f)
}

// UpdateStatus valida y aplica una transición manual (aceptar, completar, cancelar).
func (s *OrderService) UpdateStatus(ctx context.Context, id string, newStatus model.Status, reason string) (*model.Order, error) {
	unlock := s.opts.Locks.Lock(id)
	defer unlock()

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		o, err := s.orders.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		current := o.Status
		// Si el estado nuevo es el mismo que ya está, no hacemos nada
		if current == newStatus {
			return o, nil
		}
		if current.Terminal() {
			return nil, ErrFinalState
		}
		if !newStatus.Valid() || !contains(manualTransitions[current], newStatus) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
		}

		o.SetStatus(newStatus, reason, s.now())
		err = s.orders.Put(ctx, o)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.StatusTransitionsTotal.WithLabelValues(string(current), string(newStatus)).Inc()
		publish(ctx, s.opts, o, current)
		s.opts.Logger.WithFields(logrus.Fields{"order_id": id, "from": current, "to": newStatus}).Info("order status updated")
		return o, nil
	}
	return nil, repository.ErrConflict
}

func contains(arr []model.Status, s model.Status) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
