package service

import (
	"context"
	"errors"
	"sync"

	"roadside-assist-service/internal/model"
	"roadside-assist-service/internal/repository"
	"roadside-assist-service/internal/simulator"
)

var errStoreDown = errors.New("connection refused")

// persistentOrders se comporta como un store persistente (Mongo) sobre memoria.
type persistentOrders struct {
	*repository.MemoryOrderRepository
}

func (persistentOrders) Persistent() bool { return true }

type persistentGarages struct {
	*repository.MemoryGarageRepository
}

func (persistentGarages) Persistent() bool { return true }

type brokenOrders struct{}

func (brokenOrders) Get(context.Context, string) (*model.Order, error) { return nil, errStoreDown }
func (brokenOrders) Create(context.Context, *model.Order) error        { return errStoreDown }
func (brokenOrders) Put(context.Context, *model.Order) error           { return errStoreDown }
func (brokenOrders) List(context.Context, repository.OrderFilter) ([]*model.Order, error) {
	return nil, errStoreDown
}
func (brokenOrders) Persistent() bool { return true }

type brokenGarages struct{}

func (brokenGarages) Get(context.Context, string) (*model.Garage, error) { return nil, errStoreDown }
func (brokenGarages) Nearby(context.Context, model.Coordinate, float64, int) ([]model.Garage, error) {
	return nil, errStoreDown
}
func (brokenGarages) ReplaceAll(context.Context, []model.Garage) error { return errStoreDown }
func (brokenGarages) Persistent() bool                                  { return true }

type recordingPublisher struct {
	mu     sync.Mutex
	events []StatusChangedEvent
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, evt StatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) transitions() [][2]model.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][2]model.Status, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, [2]model.Status{e.From, e.To})
	}
	return out
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]model.Garage
}

func newMapCache() *mapCache { return &mapCache{items: map[string][]model.Garage{}} }

func (c *mapCache) Get(_ context.Context, cell string) ([]model.Garage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.items[cell]
	return g, ok, nil
}

func (c *mapCache) Set(_ context.Context, cell string, garages []model.Garage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cell] = garages
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string][]model.Garage{}
	return nil
}

func newSimulator() *simulator.Simulator {
	s, err := simulator.New(simulator.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}

func demoOrder(id string) *model.Order {
	return &model.Order{
		ID:               id,
		UserID:           "user123",
		Status:           model.StatusPending,
		UserLocation:     model.Coordinate{Lat: 37.78825, Lng: -122.4324},
		MechanicLocation: model.Coordinate{Lat: 37.77825, Lng: -122.4224},
	}
}
