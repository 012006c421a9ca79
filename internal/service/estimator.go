package service

import (
	"math"

	"roadside-assist-service/internal/dto"
	"roadside-assist-service/internal/geo"
	"roadside-assist-service/internal/model"
)

// pricePerKm se suma al precio base por cada km de distancia.
const pricePerKm = 2.0

var serviceCategories = []model.ServiceCategory{
	{ID: "engine", Title: "Engine Issue", BasePrice: 50},
	{ID: "tyre", Title: "Tyre Puncture", BasePrice: 15},
	{ID: "battery", Title: "Battery Issue", BasePrice: 30},
	{ID: "fuel", Title: "Fuel Problem", BasePrice: 20},
}

var towingServices = []model.TowingService{
	{ID: "1", Type: "Flatbed Tow Truck", CostPerKm: "$2.50", Availability: "Available", Phone: "+15551111"},
	{ID: "2", Type: "Wheel-Lift Truck", CostPerKm: "$1.80", Availability: "15 mins", Phone: "+15552222"},
	{ID: "3", Type: "Heavy Duty Tow", CostPerKm: "$5.00", Availability: "Available", Phone: "+15553333"},
}

// Estimator calcula precios orientativos: base + distancia * 2.
type Estimator struct{}

func NewEstimator() *Estimator { return &Estimator{} }

func (e *Estimator) Categories() []model.ServiceCategory {
	return append([]model.ServiceCategory(nil), serviceCategories...)
}

func (e *Estimator) Towing() []model.TowingService {
	return append([]model.TowingService(nil), towingServices...)
}

func (e *Estimator) Estimate(req dto.EstimateRequest) (dto.EstimateResponse, error) {
	var cat *model.ServiceCategory
	for i := range serviceCategories {
		if serviceCategories[i].ID == req.CategoryID {
			cat = &serviceCategories[i]
			break
		}
	}
	if cat == nil {
		return dto.EstimateResponse{}, ErrUnknownCategory
	}

	var dist float64
	switch {
	case req.DistanceKm != nil:
		dist = *req.DistanceKm
	case req.From != nil && req.To != nil:
		dist = geo.HaversineKm(*req.From, *req.To)
	}
	if dist < 0 {
		return dto.EstimateResponse{}, ErrInvalidDistance
	}

	return dto.EstimateResponse{
		CategoryID: cat.ID,
		BasePrice:  cat.BasePrice,
		DistanceKm: roundCents(dist),
		Total:      roundCents(cat.BasePrice + dist*pricePerKm),
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
