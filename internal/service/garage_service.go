package service

import (
	"context"
	"fmt"

	"roadside-assist-service/internal/geo"
	"roadside-assist-service/internal/metrics"
	"roadside-assist-service/internal/model"
)

// nearbyLimit acota la cantidad de talleres devueltos por búsqueda.
const nearbyLimit = 50

// cellDiagonalKm es la diagonal máxima de una celda geohash de precisión 7 (en el ecuador).
// La cache guarda radio + diagonal para que sirva a cualquier punto de la celda.
const cellDiagonalKm = 0.25

type GarageService struct {
	garages  GarageRepository
	cache    NearbyCache
	radiusKm float64
	opts     Options
}

func NewGarageService(garages GarageRepository, cache NearbyCache, radiusKm float64, opts Options) *GarageService {
	if cache == nil {
		cache = NopCache{}
	}
	return &GarageService{garages: garages, cache: cache, radiusKm: radiusKm, opts: opts.withDefaults()}
}

type NearbyResult struct {
	Garages  []model.Garage
	Fallback bool
	Cached   bool
}

// Nearby busca talleres dentro del radio, ordenados por distancia.
// Sin coordenadas o con el store caído devuelve la lista fija, salvo en modo estricto.
func (s *GarageService) Nearby(ctx context.Context, lat, lng *float64) (NearbyResult, error) {
	if lat == nil || lng == nil {
		if s.opts.StrictMode {
			return NearbyResult{}, ErrMissingCoordinates
		}
		return s.fallbackResult("missing_params"), nil
	}

	center := model.Coordinate{Lat: *lat, Lng: *lng}
	cell := geo.Cell(center, geo.CellPrecision)
	log := s.opts.Logger.WithField("cell", cell)

	cached, ok, err := s.cache.Get(ctx, cell)
	if err != nil {
		log.WithError(err).Warn("nearby cache read failed")
	}
	if ok {
		metrics.NearbyCacheTotal.WithLabelValues("hit").Inc()
		return NearbyResult{Garages: geo.Rank(center, cached, s.radiusKm, nearbyLimit), Cached: true}, nil
	}
	metrics.NearbyCacheTotal.WithLabelValues("miss").Inc()

	candidates, err := s.garages.Nearby(ctx, center, s.radiusKm+cellDiagonalKm, 0)
	if err != nil {
		if s.opts.StrictMode {
			return NearbyResult{}, fmt.Errorf("nearby garages: %w", err)
		}
		log.WithError(err).Warn("garage store unavailable, serving fallback garages")
		return s.fallbackResult("store_error"), nil
	}

	if err := s.cache.Set(ctx, cell, candidates); err != nil {
		log.WithError(err).Warn("nearby cache write failed")
	}
	return NearbyResult{Garages: geo.Rank(center, candidates, s.radiusKm, nearbyLimit)}, nil
}

func (s *GarageService) fallbackResult(reason string) NearbyResult {
	metrics.NearbyFallbacksTotal.WithLabelValues(reason).Inc()
	s.opts.Logger.WithField("reason", reason).Info("serving fallback garages")
	return NearbyResult{Garages: FallbackGarages(), Fallback: true}
}

// Seed reemplaza los talleres por el set inicial e invalida la cache.
func (s *GarageService) Seed(ctx context.Context) (int, error) {
	garages := SeedGarages()
	if err := s.garages.ReplaceAll(ctx, garages); err != nil {
		return 0, fmt.Errorf("seed garages: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.opts.Logger.WithError(err).Warn("could not invalidate nearby cache")
	}
	s.opts.Logger.WithField("count", len(garages)).Info("garages seeded")
	return len(garages), nil
}
