// Package simulator mueve al mecánico simulado hacia el usuario y deriva el estado de la orden.
package simulator

import (
	"errors"
	"fmt"
	"time"

	"roadside-assist-service/internal/geo"
	"roadside-assist-service/internal/model"
)

const (
	DefaultStepFraction     = 0.1
	DefaultArrivalThreshold = 0.001
)

var ErrInvalidConfig = errors.New("invalid simulator config")

type Config struct {
	StepFraction     float64
	ArrivalThreshold float64
}

func DefaultConfig() Config {
	return Config{StepFraction: DefaultStepFraction, ArrivalThreshold: DefaultArrivalThreshold}
}

func (c Config) Validate() error {
	if c.StepFraction <= 0 || c.StepFraction >= 1 {
		return fmt.Errorf("%w: step fraction %v must be in (0,1)", ErrInvalidConfig, c.StepFraction)
	}
	if c.ArrivalThreshold <= 0 {
		return fmt.Errorf("%w: arrival threshold %v must be positive", ErrInvalidConfig, c.ArrivalThreshold)
	}
	return nil
}

// Transition describe el efecto de un Advance.
type Transition struct {
	From  model.Status
	To    model.Status
	Moved bool
}

func (t Transition) StatusChanged() bool {
	return t.From != t.To
}

type Simulator struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg, now: time.Now}, nil
}

func (s *Simulator) Config() Config {
	return s.cfg
}

// Step acerca al mecánico una fracción fija de la distancia restante, igual en ambos ejes.
func (s *Simulator) Step(o *model.Order) {
	dLat, dLng := geo.Delta(o.MechanicLocation, o.UserLocation)
	o.MechanicLocation.Lat += dLat * s.cfg.StepFraction
	o.MechanicLocation.Lng += dLng * s.cfg.StepFraction
}

// Arrived evalúa el umbral de llegada contra la posición actual.
func (s *Simulator) Arrived(o *model.Order) bool {
	return geo.IsNear(o.MechanicLocation, o.UserLocation, s.cfg.ArrivalThreshold)
}

// Advance aplica una evaluación de la máquina de estados:
//   - COMPLETED/CANCELLED: sin cambios.
//   - ARRIVED: posición congelada.
//   - resto: Step, luego ARRIVED si cruzó el umbral, o ON_THE_WAY si seguía pendiente/aceptada.
func (s *Simulator) Advance(o *model.Order) Transition {
	t := Transition{From: o.Status, To: o.Status}

	if o.Status.Terminal() || o.Status == model.StatusArrived {
		return t
	}

	s.Step(o)
	t.Moved = true

	switch {
	case s.Arrived(o):
		t.To = model.StatusArrived
	case o.Status == model.StatusPending || o.Status == model.StatusAccepted:
		t.To = model.StatusOnTheWay
	}

	now := s.now()
	if t.StatusChanged() {
		o.SetStatus(t.To, reasonFor(t.To), now)
	} else {
		o.UpdatedAt = now
	}
	return t
}

func reasonFor(s model.Status) string {
	switch s {
	case model.StatusOnTheWay:
		return "Mechanic dispatched"
	case model.StatusArrived:
		return "Mechanic arrived"
	default:
		return ""
	}
}
