package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"roadside-assist-service/internal/geo"
	"roadside-assist-service/internal/model"
)

// In-memory implementation. Guarda copias: nadie fuera del repo ve un estado a medio escribir.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*model.Order)}
}

func (m *MemoryOrderRepository) Persistent() bool { return false }

func (m *MemoryOrderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (m *MemoryOrderRepository) Create(ctx context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[o.ID]; ok {
		return ErrAlreadyExists
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	o.Version = 1
	m.orders[o.ID] = o.Clone()
	return nil
}

// Put reemplaza la orden si la versión coincide con la guardada y la incrementa.
func (m *MemoryOrderRepository) Put(ctx context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != o.Version {
		return ErrConflict
	}
	o.Version++
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *MemoryOrderRepository) List(ctx context.Context, f OrderFilter) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if f.matches(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type MemoryGarageRepository struct {
	index *geo.Index
}

func NewMemoryGarageRepository(seed ...model.Garage) *MemoryGarageRepository {
	r := &MemoryGarageRepository{index: geo.NewIndex()}
	for _, g := range seed {
		r.index.Upsert(g)
	}
	return r
}

func (m *MemoryGarageRepository) Persistent() bool { return false }

func (m *MemoryGarageRepository) Get(ctx context.Context, id string) (*model.Garage, error) {
	g, ok := m.index.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (m *MemoryGarageRepository) Nearby(ctx context.Context, center model.Coordinate, radiusKm float64, limit int) ([]model.Garage, error) {
	return m.index.Nearby(center, radiusKm, limit), nil
}

func (m *MemoryGarageRepository) ReplaceAll(ctx context.Context, garages []model.Garage) error {
	m.index.Reset()
	for _, g := range garages {
		m.index.Upsert(g)
	}
	return nil
}
