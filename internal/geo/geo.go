// Package geo contiene las operaciones de distancia y proximidad sobre coordenadas.
package geo

import (
	"math"
	"sort"

	"github.com/mmcloughlin/geohash"

	"roadside-assist-service/internal/model"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32

	// CellPrecision ~ 150m x 150m.
	CellPrecision uint = 7
)

// Delta devuelve b - a en cada eje.
func Delta(a, b model.Coordinate) (dLat, dLng float64) {
	return b.Lat - a.Lat, b.Lng - a.Lng
}

// IsNear compara la diferencia en grados por eje, sin corrección geodésica.
func IsNear(a, b model.Coordinate, threshold float64) bool {
	dLat, dLng := Delta(a, b)
	return math.Abs(dLat) < threshold && math.Abs(dLng) < threshold
}

// HaversineKm calcula la distancia de círculo máximo en kilómetros.
func HaversineKm(a, b model.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Cell devuelve la celda geohash de la coordenada.
func Cell(c model.Coordinate, precision uint) string {
	return geohash.EncodeWithPrecision(c.Lat, c.Lng, precision)
}

// Box es un rectángulo lat/lng.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox cubre un radio alrededor del centro. Las longitudes se recortan a
// [-180, 180]; para el tramo que cruza el antimeridiano usar SearchBoxes.
func BoundingBox(center model.Coordinate, radiusKm float64) Box {
	dLat := radiusKm / kmPerDegree
	dLng := lngSpan(center, radiusKm)

	return Box{
		MinLat: math.Max(center.Lat-dLat, -90),
		MaxLat: math.Min(center.Lat+dLat, 90),
		MinLng: math.Max(center.Lng-dLng, -180),
		MaxLng: math.Min(center.Lng+dLng, 180),
	}
}

func lngSpan(center model.Coordinate, radiusKm float64) float64 {
	if cos := math.Cos(center.Lat * math.Pi / 180.0); cos > 1e-9 {
		return math.Min(radiusKm/(kmPerDegree*cos), 180.0)
	}
	return 180.0
}

// SearchBoxes devuelve el bounding box y, si el radio cruza el antimeridiano,
// un segundo box con la parte que queda del otro lado.
func SearchBoxes(center model.Coordinate, radiusKm float64) []Box {
	primary := BoundingBox(center, radiusKm)
	boxes := []Box{primary}

	dLng := lngSpan(center, radiusKm)
	if dLng >= 180 {
		return boxes
	}
	wrapped := Box{MinLat: primary.MinLat, MaxLat: primary.MaxLat}
	switch {
	case center.Lng-dLng < -180:
		wrapped.MinLng, wrapped.MaxLng = center.Lng-dLng+360, 180
	case center.Lng+dLng > 180:
		wrapped.MinLng, wrapped.MaxLng = -180, center.Lng+dLng-360
	default:
		return boxes
	}
	return append(boxes, wrapped)
}

// Rank filtra los talleres a radiusKm de center y los ordena por distancia
// creciente. limit <= 0 significa sin límite.
func Rank(center model.Coordinate, garages []model.Garage, radiusKm float64, limit int) []model.Garage {
	type hit struct {
		garage model.Garage
		dist   float64
	}
	hits := make([]hit, 0, len(garages))
	for _, g := range garages {
		d := HaversineKm(center, g.Location.Coordinate())
		if d > radiusKm {
			continue
		}
		hits = append(hits, hit{garage: g, dist: d})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]model.Garage, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.garage)
	}
	return out
}

func (b Box) Contains(c model.Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}
