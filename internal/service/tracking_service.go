package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"roadside-assist-service/internal/metrics"
	"roadside-assist-service/internal/model"
	"roadside-assist-service/internal/repository"
	"roadside-assist-service/internal/simulator"
)

// TrackingService es el único lugar donde se mueve al mecánico y cambia el estado
// de forma automática: el estado solo avanza cuando alguien consulta la orden.
type TrackingService struct {
	orders   OrderRepository
	fallback OrderRepository
	sim      *simulator.Simulator
	opts     Options
	now      func() time.Time
}

// NewTrackingService: fallback puede ser nil; se usa cuando el store principal falla
// y no estamos en modo estricto.
func NewTrackingService(orders, fallback OrderRepository, sim *simulator.Simulator, opts Options) *TrackingService {
	return &TrackingService{
		orders:   orders,
		fallback: fallback,
		sim:      sim,
		opts:     opts.withDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Track lee la orden, aplica un paso de simulación, la guarda y la devuelve.
func (s *TrackingService) Track(ctx context.Context, id string) (*model.Order, error) {
	allowPlaceholder := !s.opts.StrictMode && !s.orders.Persistent()

	o, err := s.advance(ctx, s.orders, id, allowPlaceholder)
	if err == nil {
		return o, nil
	}
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConflict) ||
		s.opts.StrictMode || s.fallback == nil {
		return nil, err
	}

	// Store caído: degradamos a memoria para no dejar al cliente sin respuesta
	s.opts.Logger.WithError(err).WithField("order_id", id).Warn("order store unavailable, tracking in memory")
	return s.advance(ctx, s.fallback, id, true)
}

func (s *TrackingService) advance(ctx context.Context, repo OrderRepository, id string, allowPlaceholder bool) (*model.Order, error) {
	unlock := s.opts.Locks.Lock(id)
	defer unlock()

	log := s.opts.Logger.WithField("order_id", id)

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		o, err := repo.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) && allowPlaceholder {
			o = s.placeholder(id)
			err = repo.Create(ctx, o)
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			if err == nil {
				// El primer poll devuelve el placeholder en PENDING; los siguientes lo mueven.
				metrics.PlaceholderOrdersTotal.Inc()
				metrics.TrackingPollsTotal.WithLabelValues(string(o.Status)).Inc()
				log.Info("unknown order, synthesized placeholder")
				return o, nil
			}
		}
		if err != nil {
			return nil, err
		}

		tr := s.sim.Advance(o)
		if tr.Moved {
			err = repo.Put(ctx, o)
			if errors.Is(err, repository.ErrConflict) {
				log.Debug("version conflict while tracking, retrying")
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("save tracked order: %w", err)
			}
		}

		metrics.TrackingPollsTotal.WithLabelValues(string(o.Status)).Inc()
		if tr.StatusChanged() {
			metrics.StatusTransitionsTotal.WithLabelValues(string(tr.From), string(tr.To)).Inc()
			publish(ctx, s.opts, o, tr.From)
			log.WithFields(logrus.Fields{"from": tr.From, "to": tr.To}).Info("order status advanced")
		}
		return o, nil
	}
	return nil, repository.ErrConflict
}

func (s *TrackingService) placeholder(id string) *model.Order {
	now := s.now()
	o := &model.Order{
		ID:               id,
		Garage:           placeholderGarage,
		UserLocation:     placeholderUserLocation,
		MechanicLocation: placeholderMechanicLocation,
		VehicleDetails:   placeholderVehicle,
		CreatedAt:        now,
	}
	o.SetStatus(model.StatusPending, "Placeholder order", now)
	return o
}
